package perf

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
)

// memorySource serves a generated chart and posting set for one company.
type memorySource struct {
	chart    []accounts.Account
	postings []ledger.Posting
}

func (s *memorySource) Accounts(ctx context.Context, companyID int64, roots []string) ([]accounts.Account, error) {
	want := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		want[r] = struct{}{}
	}
	out := make([]accounts.Account, 0, len(s.chart))
	for _, acc := range s.chart {
		if _, ok := want[accounts.Root(acc.Code)]; ok {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (s *memorySource) Postings(ctx context.Context, companyID int64, roots []string, from, to time.Time) ([]ledger.Posting, error) {
	want := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		want[r] = struct{}{}
	}
	out := make([]ledger.Posting, 0, len(s.postings))
	for _, p := range s.postings {
		if _, ok := want[accounts.Root(p.AccountCode)]; !ok {
			continue
		}
		if !from.IsZero() && p.IssueDate.Before(from) {
			continue
		}
		if p.IssueDate.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// generate builds five roots with groups headers and leaves beneath each, and
// postings spread over the year to date.
func generate(groups, leaves, postingsPerLeaf int) *memorySource {
	src := &memorySource{}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for root := 1; root <= 5; root++ {
		src.chart = append(src.chart, accounts.Account{Code: fmt.Sprintf("%d.", root), Name: fmt.Sprintf("Root %d", root)})
		for g := 1; g <= groups; g++ {
			src.chart = append(src.chart, accounts.Account{Code: fmt.Sprintf("%d.%d.", root, g)})
			for l := 1; l <= leaves; l++ {
				code := fmt.Sprintf("%d.%d.%d", root, g, l)
				src.chart = append(src.chart, accounts.Account{Code: code})
				for p := 0; p < postingsPerLeaf; p++ {
					amount := decimal.New(int64(100+p), -2)
					posting := ledger.Posting{AccountCode: code, IssueDate: base.AddDate(0, 0, (g*l+p)%300)}
					if p%2 == 0 {
						posting.Debit = amount
					} else {
						posting.Credit = amount
					}
					src.postings = append(src.postings, posting)
				}
			}
		}
	}
	return src
}
