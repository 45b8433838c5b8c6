package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
)

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Level    int             `json:"level"`
	IsHeader bool            `json:"isHeader"`
	Opening  decimal.Decimal `json:"opening"`
	Debit    decimal.Decimal `json:"debit"`
	Credit   decimal.Decimal `json:"credit"`
	Closing  decimal.Decimal `json:"closing"`
}

// TrialBalanceGroup aggregates the accounts of one root segment.
type TrialBalanceGroup struct {
	Key      string                `json:"key"`
	Accounts []TrialBalanceAccount `json:"accounts"`
	Opening  decimal.Decimal       `json:"opening"`
	Debit    decimal.Decimal       `json:"debit"`
	Credit   decimal.Decimal       `json:"credit"`
	Closing  decimal.Decimal       `json:"closing"`
}

// TrialBalance is the trial balance response.
type TrialBalance struct {
	Groups       []TrialBalanceGroup `json:"groups"`
	TotalOpening decimal.Decimal     `json:"totalOpening"`
	TotalDebit   decimal.Decimal     `json:"totalDebit"`
	TotalCredit  decimal.Decimal     `json:"totalCredit"`
	TotalClosing decimal.Decimal     `json:"totalClosing"`
	StartDate    string              `json:"startDate"`
	EndDate      string              `json:"endDate"`
	Level        ledger.Level        `json:"level"`
}

// BuildTrialBalance groups aggregated rows by root segment. Group totals come
// from the root aggregates so nested rows are never counted twice. All roots
// are debit-normal, so closing is opening plus debit minus credit.
func BuildTrialBalance(res ledger.Result) TrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	for _, root := range res.Roots {
		if root.Debit.IsZero() && root.Credit.IsZero() && root.Opening.IsZero() {
			continue
		}
		groups[root.Prefix] = &TrialBalanceGroup{
			Key:     root.Prefix,
			Opening: root.Opening,
			Debit:   root.Debit,
			Credit:  root.Credit,
			Closing: root.Opening.Add(root.Total),
		}
		keys = append(keys, root.Prefix)
	}
	for _, row := range res.Rows {
		if row.Synthetic {
			continue
		}
		grp, ok := groups[accounts.Root(row.Code)]
		if !ok {
			continue
		}
		grp.Accounts = append(grp.Accounts, TrialBalanceAccount{
			Code:     row.Code,
			Name:     row.Name,
			Level:    row.Level,
			IsHeader: row.IsHeader,
			Opening:  row.Opening,
			Debit:    row.Debit,
			Credit:   row.Credit,
			Closing:  row.Opening.Add(row.Total),
		})
	}

	sort.Slice(keys, func(i, j int) bool { return accounts.CompareHierarchical(keys[i], keys[j]) < 0 })
	result := TrialBalance{}
	for _, key := range keys {
		grp := groups[key]
		result.Groups = append(result.Groups, *grp)
		result.TotalOpening = result.TotalOpening.Add(grp.Opening)
		result.TotalDebit = result.TotalDebit.Add(grp.Debit)
		result.TotalCredit = result.TotalCredit.Add(grp.Credit)
		result.TotalClosing = result.TotalClosing.Add(grp.Closing)
	}
	return result
}
