package sequences

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Store) error) error {
	return db.WithTx(ctx, r.pool, db.WriteTxOptions, func(tx pgx.Tx) error {
		return fn(ctx, NewTxStore(tx))
	})
}

type txStore struct {
	tx pgx.Tx
}

// NewTxStore binds a Store to an open transaction.
func NewTxStore(tx pgx.Tx) Store {
	return &txStore{tx: tx}
}

func (s *txStore) LockTransactionType(ctx context.Context, companyID int64, code string) (TransactionType, error) {
	var tt TransactionType
	err := s.tx.QueryRow(ctx, `SELECT id, company_id, code, name, sequence, active, read_only, created_at, updated_at
FROM transaction_types WHERE company_id=$1 AND code=$2 FOR UPDATE`, companyID, code).
		Scan(&tt.ID, &tt.CompanyID, &tt.Code, &tt.Name, &tt.Sequence, &tt.Active, &tt.ReadOnly, &tt.CreatedAt, &tt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TransactionType{}, shared.ErrNotFound
		}
		return TransactionType{}, err
	}
	return tt, nil
}

func (s *txStore) SetSequence(ctx context.Context, companyID int64, code, sequence string) error {
	cmd, err := s.tx.Exec(ctx, `UPDATE transaction_types SET sequence=$3, updated_at=NOW() WHERE company_id=$1 AND code=$2`, companyID, code, sequence)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
