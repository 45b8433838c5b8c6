package journals

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is one posted double-entry transaction. Its line items are
// joined on (CompanyID, TransactionTypeCode, EntryNumber).
type JournalEntry struct {
	ID                  int64           `json:"id"`
	CompanyID           int64           `json:"companyId"`
	TransactionTypeCode string          `json:"transactionTypeCode"`
	EntryNumber         string          `json:"entryNumber"`
	IssueDate           time.Time       `json:"issueDate"`
	Status              string          `json:"status"`
	Comment             *string         `json:"comment,omitempty"`
	ReferenceNumber     *string         `json:"referenceNumber,omitempty"`
	CostCenterCode      string          `json:"costCenterCode"`
	TotalDebit          decimal.Decimal `json:"totalDebit"`
	TotalCredit         decimal.Decimal `json:"totalCredit"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	LineItems           []LineItem      `json:"lineItems"`
}

// LineItem stores one leg of an entry. A leg may carry debit, credit or both.
type LineItem struct {
	ID             int64           `json:"id"`
	Position       int             `json:"position"`
	AccountCode    string          `json:"accountCode"`
	CostCenterCode string          `json:"costCenterCode"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Note           *string         `json:"note,omitempty"`
}

// SumLines totals the debit and credit sides of items.
func SumLines(items []LineItem) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, item := range items {
		debit = debit.Add(item.Debit)
		credit = credit.Add(item.Credit)
	}
	return debit, credit
}
