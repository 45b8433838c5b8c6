package accounts

import (
	"context"
	"sort"

	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the company's chart ordered hierarchically.
func (s *Service) List(ctx context.Context, companyID int64) ([]Account, error) {
	accounts, err := s.repo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	SortHierarchical(accounts)
	return accounts, nil
}

// Page returns one page of the hierarchically ordered chart.
func (s *Service) Page(ctx context.Context, companyID int64, page, perPage int) ([]Account, shared.Pagination, error) {
	accounts, err := s.List(ctx, companyID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	p := shared.NewPagination(page, perPage, len(accounts))
	start, end := p.Bounds()
	return accounts[start:end], p, nil
}

// SortHierarchical orders accounts in place by CompareHierarchical.
func SortHierarchical(accounts []Account) {
	sort.SliceStable(accounts, func(i, j int) bool {
		return CompareHierarchical(accounts[i].Code, accounts[j].Code) < 0
	})
}
