package reports

import (
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
)

// Kind names a statement and doubles as its cache and metrics label.
type Kind string

const (
	KindProfitAndLoss Kind = "pl"
	KindBalanceSheet  Kind = "bs"
	KindTrialBalance  Kind = "tb"
)

type statement struct {
	roots       []ledger.Root
	netLabel    string
	pointInTime bool
	opening     bool
}

var statements = map[Kind]statement{
	KindProfitAndLoss: {
		roots: []ledger.Root{
			{Prefix: "4", Normal: ledger.CreditNormal, Section: ledger.SectionIncome, Weight: 1},
			{Prefix: "5", Normal: ledger.DebitNormal, Section: ledger.SectionExpense, Weight: -1},
		},
		netLabel: "Net income",
	},
	KindBalanceSheet: {
		roots: []ledger.Root{
			{Prefix: "1", Normal: ledger.DebitNormal, Section: ledger.SectionAssets},
			{Prefix: "2", Normal: ledger.CreditNormal, Section: ledger.SectionLiabilities, Weight: 1},
			{Prefix: "3", Normal: ledger.CreditNormal, Section: ledger.SectionEquity, Weight: 1},
		},
		netLabel:    "Total liabilities and equity",
		pointInTime: true,
	},
	KindTrialBalance: {
		roots: []ledger.Root{
			{Prefix: "1", Normal: ledger.DebitNormal, Section: ledger.SectionAssets},
			{Prefix: "2", Normal: ledger.DebitNormal, Section: ledger.SectionLiabilities},
			{Prefix: "3", Normal: ledger.DebitNormal, Section: ledger.SectionEquity},
			{Prefix: "4", Normal: ledger.DebitNormal, Section: ledger.SectionIncome},
			{Prefix: "5", Normal: ledger.DebitNormal, Section: ledger.SectionExpense},
		},
		opening: true,
	},
}

// Report is the response of the leveled statements.
type Report struct {
	Report    []ledger.Row `json:"report"`
	StartDate string       `json:"startDate,omitempty"`
	EndDate   string       `json:"endDate"`
	Level     ledger.Level `json:"level"`
}
