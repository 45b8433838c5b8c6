package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
)

type repository struct {
	db       *pgxpool.Pool
	accounts accounts.Repository
}

// NewRepository returns the PostgreSQL backed Source.
func NewRepository(db *pgxpool.Pool) Source {
	return &repository{db: db, accounts: accounts.NewRepository(db)}
}

func (r *repository) Accounts(ctx context.Context, companyID int64, roots []string) ([]accounts.Account, error) {
	return r.accounts.ListByRoots(ctx, companyID, roots)
}

// postingsQuery joins line items to their entries on the business key. Both
// sides are filtered on company_id so equal numbers in other companies never
// match.
const postingsQuery = `SELECT li.account_code, je.issue_date, li.debit::text, li.credit::text
FROM journal_line_items li
JOIN journal_entries je
  ON je.company_id = li.company_id
 AND je.transaction_type_code = li.transaction_type_code
 AND je.entry_number = li.entry_number
WHERE li.company_id = $1 AND je.company_id = $1
  AND split_part(li.account_code, '.', 1) = ANY($2)
  AND ($3::timestamptz IS NULL OR je.issue_date >= $3)
  AND je.issue_date < $4`

func (r *repository) Postings(ctx context.Context, companyID int64, roots []string, from, to time.Time) ([]Posting, error) {
	var lower *time.Time
	if !from.IsZero() {
		f := day(from)
		lower = &f
	}
	upper := day(to).AddDate(0, 0, 1)
	rows, err := r.db.Query(ctx, postingsQuery, companyID, roots, lower, upper)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Posting, error) {
		var p Posting
		var debit, credit string
		if err := row.Scan(&p.AccountCode, &p.IssueDate, &debit, &credit); err != nil {
			return Posting{}, err
		}
		var err error
		if p.Debit, err = decimal.NewFromString(debit); err != nil {
			return Posting{}, fmt.Errorf("ledger: debit: %w", err)
		}
		if p.Credit, err = decimal.NewFromString(credit); err != nil {
			return Posting{}, fmt.Errorf("ledger: credit: %w", err)
		}
		return p, nil
	})
}
