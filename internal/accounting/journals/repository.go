package journals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/sequences"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]JournalEntry, error)
	Get(ctx context.Context, id, companyID int64) (JournalEntry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction. It embeds the
// sequence store so allocation shares the posting transaction.
type TxRepository interface {
	sequences.Store
	InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	InsertLineItems(ctx context.Context, entry JournalEntry, items []LineItem) ([]LineItem, error)
	GetEntryForUpdate(ctx context.Context, id, companyID int64) (JournalEntry, error)
	UpdateEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	DeleteLineItems(ctx context.Context, entry JournalEntry) error
	DeleteEntry(ctx context.Context, id, companyID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, company_id, transaction_type_code, entry_number, issue_date, status, comment, reference_number,
cost_center_code, total_debit::text, total_credit::text, created_at, updated_at`

const lineColumns = `transaction_type_code, entry_number, id, position, account_code, cost_center_code, debit::text, credit::text, note`

type entryKey struct {
	typeCode string
	number   string
}

// List returns the company's entries newest first with line items attached.
func (r *repository) List(ctx context.Context, companyID int64) ([]JournalEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE company_id=$1 ORDER BY id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, err
	}
	lineRows, err := r.db.Query(ctx, `SELECT `+lineColumns+` FROM journal_line_items WHERE company_id=$1 ORDER BY position`, companyID)
	if err != nil {
		return nil, err
	}
	lines, err := collectLines(lineRows)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].LineItems = lines[entryKey{entries[i].TransactionTypeCode, entries[i].EntryNumber}]
	}
	return entries, nil
}

func (r *repository) Get(ctx context.Context, id, companyID int64) (JournalEntry, error) {
	return getEntry(ctx, r.db, id, companyID, "")
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, db.WriteTxOptions, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{Store: sequences.NewTxStore(tx), tx: tx})
	})
}

type txRepository struct {
	sequences.Store
	tx pgx.Tx
}

func (r *txRepository) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (company_id, transaction_type_code, entry_number, issue_date, status,
comment, reference_number, cost_center_code, total_debit, total_credit)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id, created_at, updated_at`,
		entry.CompanyID, entry.TransactionTypeCode, entry.EntryNumber, entry.IssueDate, entry.Status,
		entry.Comment, entry.ReferenceNumber, entry.CostCenterCode, toNumeric(entry.TotalDebit), toNumeric(entry.TotalCredit))
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return JournalEntry{}, translate(err)
	}
	return entry, nil
}

// InsertLineItems stores items in order and returns them with their ids.
func (r *txRepository) InsertLineItems(ctx context.Context, entry JournalEntry, items []LineItem) ([]LineItem, error) {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		err := r.tx.QueryRow(ctx, `INSERT INTO journal_line_items (company_id, transaction_type_code, entry_number, position,
account_code, cost_center_code, debit, credit, note)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`, entry.CompanyID, entry.TransactionTypeCode, entry.EntryNumber, item.Position,
			item.AccountCode, item.CostCenterCode, toNumeric(item.Debit), toNumeric(item.Credit), item.Note).Scan(&item.ID)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, id, companyID int64) (JournalEntry, error) {
	return getEntry(ctx, r.tx, id, companyID, " FOR UPDATE")
}

func (r *txRepository) UpdateEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	err := r.tx.QueryRow(ctx, `UPDATE journal_entries SET issue_date=$3, status=$4, comment=$5, reference_number=$6,
cost_center_code=$7, total_debit=$8, total_credit=$9, updated_at=NOW()
WHERE id=$1 AND company_id=$2 RETURNING updated_at`, entry.ID, entry.CompanyID, entry.IssueDate, entry.Status,
		entry.Comment, entry.ReferenceNumber, entry.CostCenterCode, toNumeric(entry.TotalDebit), toNumeric(entry.TotalCredit)).
		Scan(&entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrNotFound
		}
		return JournalEntry{}, translate(err)
	}
	return entry, nil
}

func (r *txRepository) DeleteLineItems(ctx context.Context, entry JournalEntry) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM journal_line_items WHERE company_id=$1 AND transaction_type_code=$2 AND entry_number=$3`,
		entry.CompanyID, entry.TransactionTypeCode, entry.EntryNumber)
	return translate(err)
}

func (r *txRepository) DeleteEntry(ctx context.Context, id, companyID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getEntry(ctx context.Context, q querier, id, companyID int64, lock string) (JournalEntry, error) {
	rows, err := q.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 AND company_id=$2`+lock, id, companyID)
	if err != nil {
		return JournalEntry{}, err
	}
	entry, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrNotFound
		}
		return JournalEntry{}, err
	}
	lineRows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM journal_line_items
WHERE company_id=$1 AND transaction_type_code=$2 AND entry_number=$3 ORDER BY position`,
		entry.CompanyID, entry.TransactionTypeCode, entry.EntryNumber)
	if err != nil {
		return JournalEntry{}, err
	}
	lines, err := collectLines(lineRows)
	if err != nil {
		return JournalEntry{}, err
	}
	entry.LineItems = lines[entryKey{entry.TransactionTypeCode, entry.EntryNumber}]
	return entry, nil
}

func scanEntry(row pgx.CollectableRow) (JournalEntry, error) {
	var e JournalEntry
	var debit, credit string
	err := row.Scan(&e.ID, &e.CompanyID, &e.TransactionTypeCode, &e.EntryNumber, &e.IssueDate, &e.Status, &e.Comment,
		&e.ReferenceNumber, &e.CostCenterCode, &debit, &credit, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return JournalEntry{}, err
	}
	if e.TotalDebit, err = decimal.NewFromString(debit); err != nil {
		return JournalEntry{}, fmt.Errorf("journals: total_debit: %w", err)
	}
	if e.TotalCredit, err = decimal.NewFromString(credit); err != nil {
		return JournalEntry{}, fmt.Errorf("journals: total_credit: %w", err)
	}
	return e, nil
}

func collectLines(rows pgx.Rows) (map[entryKey][]LineItem, error) {
	defer rows.Close()
	out := make(map[entryKey][]LineItem)
	for rows.Next() {
		var key entryKey
		var item LineItem
		var debit, credit string
		if err := rows.Scan(&key.typeCode, &key.number, &item.ID, &item.Position, &item.AccountCode, &item.CostCenterCode,
			&debit, &credit, &item.Note); err != nil {
			return nil, err
		}
		var err error
		if item.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("journals: debit: %w", err)
		}
		if item.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("journals: credit: %w", err)
		}
		out[key] = append(out[key], item)
	}
	return out, rows.Err()
}

// translate maps unique violations and serialization failures to ErrConflict.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001":
			return fmt.Errorf("%w: %s", shared.ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

func toNumeric(v decimal.Decimal) any {
	return v.StringFixed(2)
}
