package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
)

// Normal is the side on which an account's balance grows.
type Normal int

const (
	DebitNormal Normal = iota
	CreditNormal
)

const (
	SectionIncome      = "income"
	SectionExpense     = "expense"
	SectionAssets      = "assets"
	SectionLiabilities = "liabilities"
	SectionEquity      = "equity"
	SectionNet         = "net"
)

// Root configures one top-level chart segment taking part in a statement.
type Root struct {
	Prefix  string
	Normal  Normal
	Section string
	// Weight is this root's contribution to the synthetic net row.
	Weight int64
}

func (r Root) net(debit, credit decimal.Decimal) decimal.Decimal {
	if r.Normal == CreditNormal {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// Posting is one line item flattened with its entry's issue date.
type Posting struct {
	AccountCode string
	IssueDate   time.Time
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Source loads the company-scoped inputs of an aggregation.
type Source interface {
	Accounts(ctx context.Context, companyID int64, roots []string) ([]accounts.Account, error)
	// Postings returns line items dated within [from, to]; a zero from is
	// unbounded.
	Postings(ctx context.Context, companyID int64, roots []string, from, to time.Time) ([]Posting, error)
}

// Request describes one aggregation. From and To are calendar days and both
// inclusive.
type Request struct {
	CompanyID int64
	Roots     []Root
	NetLabel  string
	From      time.Time
	To        time.Time
	// PointInTime sums everything dated on or before To and ignores From.
	PointInTime bool
	// Opening buckets postings dated before From into Row.Opening.
	Opening bool
	Level   Level
}

// Row is one line of a leveled report.
type Row struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Level     int             `json:"level"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Opening   decimal.Decimal `json:"opening,omitzero"`
	Monthly   decimal.Decimal `json:"monthly"`
	Total     decimal.Decimal `json:"total"`
	IsHeader  bool            `json:"isHeader"`
	IsIncome  bool            `json:"isIncome,omitempty"`
	IsExpense bool            `json:"isExpense,omitempty"`
	Section   string          `json:"section,omitempty"`
	Synthetic bool            `json:"synthetic,omitempty"`
}

// RootTotal is the rolled-up value of everything under one root.
type RootTotal struct {
	Prefix  string          `json:"prefix"`
	Section string          `json:"section"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Opening decimal.Decimal `json:"opening"`
	Monthly decimal.Decimal `json:"monthly"`
	Total   decimal.Decimal `json:"total"`
}

// Result holds the sorted rows, synthetic net row last.
type Result struct {
	Rows  []Row       `json:"rows"`
	Roots []RootTotal `json:"roots"`
}

type Aggregator struct {
	source Source
}

func NewAggregator(source Source) *Aggregator {
	return &Aggregator{source: source}
}

// Aggregate loads the chart and postings for the request and computes the
// leveled report.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (Result, error) {
	prefixes := make([]string, 0, len(req.Roots))
	for _, r := range req.Roots {
		prefixes = append(prefixes, r.Prefix)
	}
	chart, err := a.source.Accounts(ctx, req.CompanyID, prefixes)
	if err != nil {
		return Result{}, err
	}
	from := req.From
	if req.PointInTime || req.Opening {
		from = time.Time{}
	}
	postings, err := a.source.Postings(ctx, req.CompanyID, prefixes, from, req.To)
	if err != nil {
		return Result{}, err
	}
	return Compute(req, chart, postings), nil
}

type bucket struct {
	debit, credit           decimal.Decimal
	openDebit, openCredit   decimal.Decimal
	monthDebit, monthCredit decimal.Decimal
}

func (b bucket) add(o bucket) bucket {
	return bucket{
		debit:       b.debit.Add(o.debit),
		credit:      b.credit.Add(o.credit),
		openDebit:   b.openDebit.Add(o.openDebit),
		openCredit:  b.openCredit.Add(o.openCredit),
		monthDebit:  b.monthDebit.Add(o.monthDebit),
		monthCredit: b.monthCredit.Add(o.monthCredit),
	}
}

// Compute is the pure part of Aggregate. Inputs are never mutated, so equal
// inputs give equal results.
func Compute(req Request, chart []accounts.Account, postings []Posting) Result {
	t := buildTree(chart, req.Roots)
	direct := accumulate(req, t, postings)

	memo := make(map[string]bucket, len(t.nodes))
	var balance func(code string) bucket
	balance = func(code string) bucket {
		if b, ok := memo[code]; ok {
			return b
		}
		n := t.nodes[code]
		b := direct[code]
		if n.header {
			for _, child := range n.children {
				b = b.add(balance(child))
			}
		}
		memo[code] = b
		return b
	}

	var rows []Row
	totals := make([]RootTotal, 0, len(req.Roots))
	netTotal, netMonthly := decimal.Zero, decimal.Zero
	for _, root := range req.Roots {
		var sum bucket
		for _, code := range t.tops[root.Prefix] {
			sum = sum.add(balance(code))
			rows = appendRows(rows, t, root, req.Level, code, balance)
		}
		rt := RootTotal{
			Prefix:  root.Prefix,
			Section: root.Section,
			Debit:   sum.debit,
			Credit:  sum.credit,
			Opening: root.net(sum.openDebit, sum.openCredit),
			Monthly: root.net(sum.monthDebit, sum.monthCredit),
			Total:   root.net(sum.debit, sum.credit),
		}
		totals = append(totals, rt)
		weight := decimal.NewFromInt(root.Weight)
		netTotal = netTotal.Add(rt.Total.Mul(weight))
		netMonthly = netMonthly.Add(rt.Monthly.Mul(weight))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return accounts.CompareHierarchical(rows[i].Code, rows[j].Code) < 0
	})
	rows = append(rows, Row{
		Name:      req.NetLabel,
		Debit:     decimal.Zero,
		Credit:    decimal.Zero,
		Monthly:   netMonthly,
		Total:     netTotal,
		Section:   SectionNet,
		Synthetic: true,
	})
	return Result{Rows: rows, Roots: totals}
}

// appendRows walks from code downward while the level allows it.
func appendRows(rows []Row, t *tree, root Root, level Level, code string, balance func(string) bucket) []Row {
	n := t.nodes[code]
	if !level.Includes(n.level) {
		return rows
	}
	b := balance(code)
	rows = append(rows, Row{
		Code:      n.code,
		Name:      n.name,
		Level:     n.level,
		Debit:     b.debit,
		Credit:    b.credit,
		Opening:   root.net(b.openDebit, b.openCredit),
		Monthly:   root.net(b.monthDebit, b.monthCredit),
		Total:     root.net(b.debit, b.credit),
		IsHeader:  n.header && level.Descends(n.level),
		IsIncome:  root.Section == SectionIncome,
		IsExpense: root.Section == SectionExpense,
		Section:   root.Section,
	})
	if !level.Descends(n.level) {
		return rows
	}
	for _, child := range n.children {
		rows = appendRows(rows, t, root, level, child, balance)
	}
	return rows
}

// accumulate sums postings per account code into period, opening and month
// buckets. Postings for codes outside the tree are dropped.
func accumulate(req Request, t *tree, postings []Posting) map[string]bucket {
	to := day(req.To)
	from := day(req.From)
	monthStart := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !req.PointInTime && from.After(monthStart) {
		monthStart = from
	}

	direct := make(map[string]bucket, len(t.nodes))
	for _, p := range postings {
		if _, ok := t.nodes[p.AccountCode]; !ok {
			continue
		}
		d := day(p.IssueDate)
		if d.After(to) {
			continue
		}
		var b bucket
		switch {
		case req.PointInTime || !d.Before(from):
			b.debit, b.credit = p.Debit, p.Credit
			if !d.Before(monthStart) {
				b.monthDebit, b.monthCredit = p.Debit, p.Credit
			}
		case req.Opening:
			b.openDebit, b.openCredit = p.Debit, p.Credit
		default:
			continue
		}
		direct[p.AccountCode] = direct[p.AccountCode].add(b)
	}
	return direct
}

// day truncates t to its UTC calendar day.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
