package journals

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

var validate = validator.New()

// LineItemInput describes a journal line for a posting request.
type LineItemInput struct {
	AccountCode    string          `json:"accountCode" validate:"required,max=64"`
	CostCenterCode string          `json:"costCenterCode" validate:"max=64"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Note           *string         `json:"note,omitempty"`
}

// CreateInput groups fields required to post a journal entry.
type CreateInput struct {
	IssueDate           *time.Time      `json:"issueDate,omitempty"`
	TransactionTypeCode string          `json:"transactionTypeCode" validate:"required,max=64"`
	Comment             *string         `json:"comment,omitempty"`
	Status              string          `json:"status" validate:"required,max=32"`
	ReferenceNumber     *string         `json:"referenceNumber,omitempty" validate:"omitempty,max=64"`
	CostCenterCode      string          `json:"costCenterCode" validate:"max=64"`
	CompanyID           int64           `json:"companyId" validate:"required,gt=0"`
	TotalDebit          decimal.Decimal `json:"totalDebit"`
	TotalCredit         decimal.Decimal `json:"totalCredit"`
	LineItems           []LineItemInput `json:"lineItems" validate:"dive"`
}

// UpdateInput patches an entry. A nil LineItems leaves the existing items in
// place; a non-nil one replaces them all.
type UpdateInput struct {
	IssueDate       *time.Time       `json:"issueDate,omitempty"`
	Status          *string          `json:"status,omitempty" validate:"omitempty,min=1,max=32"`
	Comment         *string          `json:"comment,omitempty"`
	ReferenceNumber *string          `json:"referenceNumber,omitempty" validate:"omitempty,max=64"`
	CostCenterCode  *string          `json:"costCenterCode,omitempty" validate:"omitempty,max=64"`
	TotalDebit      *decimal.Decimal `json:"totalDebit,omitempty"`
	TotalCredit     *decimal.Decimal `json:"totalCredit,omitempty"`
	LineItems       []LineItemInput  `json:"lineItems,omitempty" validate:"dive"`
}

// Validate checks structure and amounts. Balance is checked separately.
func (in CreateInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if len(in.LineItems) == 0 {
		return shared.ErrNoLineItems
	}
	if in.TotalDebit.IsNegative() || in.TotalCredit.IsNegative() {
		return fmt.Errorf("%w: negative total", shared.ErrInvalidInput)
	}
	return validateLines(in.LineItems)
}

// Validate checks structure and amounts of the patch.
func (in UpdateInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if in.LineItems != nil && len(in.LineItems) == 0 {
		return shared.ErrNoLineItems
	}
	if (in.TotalDebit != nil && in.TotalDebit.IsNegative()) || (in.TotalCredit != nil && in.TotalCredit.IsNegative()) {
		return fmt.Errorf("%w: negative total", shared.ErrInvalidInput)
	}
	return validateLines(in.LineItems)
}

func validateLines(lines []LineItemInput) error {
	for idx, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrInvalidInput, idx)
		}
	}
	return nil
}

// CheckBalance enforces totalDebit == totalCredit and that line sums match
// the totals, at two fraction digits.
func CheckBalance(totalDebit, totalCredit decimal.Decimal, items []LineItem) error {
	if !totalDebit.Round(2).Equal(totalCredit.Round(2)) {
		return fmt.Errorf("%w: total debit %s != total credit %s", shared.ErrUnbalanced, totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	debit, credit := SumLines(items)
	if !debit.Round(2).Equal(totalDebit.Round(2)) || !credit.Round(2).Equal(totalCredit.Round(2)) {
		return fmt.Errorf("%w: lines sum to %s/%s, totals are %s/%s", shared.ErrUnbalanced,
			debit.StringFixed(2), credit.StringFixed(2), totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return nil
}

func toLineItems(lines []LineItemInput) []LineItem {
	out := make([]LineItem, 0, len(lines))
	for idx, line := range lines {
		out = append(out, LineItem{
			Position:       idx + 1,
			AccountCode:    line.AccountCode,
			CostCenterCode: line.CostCenterCode,
			Debit:          line.Debit.Round(2),
			Credit:         line.Credit.Round(2),
			Note:           line.Note,
		})
	}
	return out
}
