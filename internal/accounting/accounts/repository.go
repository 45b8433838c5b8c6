package accounts

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads chart of accounts rows scoped to a company.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Account, error)
	ListByRoots(ctx context.Context, companyID int64, roots []string) ([]Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectAccounts = `SELECT id, company_id, code, name, created_at, updated_at FROM accounts`

func (r *repository) List(ctx context.Context, companyID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, selectAccounts+` WHERE company_id=$1`, companyID)
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

// ListByRoots returns accounts whose first code segment is one of roots.
func (r *repository) ListByRoots(ctx context.Context, companyID int64, roots []string) ([]Account, error) {
	rows, err := r.db.Query(ctx, selectAccounts+` WHERE company_id=$1 AND split_part(code, '.', 1) = ANY($2)`, companyID, roots)
	if err != nil {
		return nil, err
	}
	return scanAccounts(rows)
}

func scanAccounts(rows pgx.Rows) ([]Account, error) {
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
