package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Violation is a journal entry whose totals disagree with its line items.
type Violation struct {
	CompanyID           int64
	EntryID             int64
	TransactionTypeCode string
	EntryNumber         string
	TotalDebit          decimal.Decimal
	TotalCredit         decimal.Decimal
	LineDebit           decimal.Decimal
	LineCredit          decimal.Decimal
	LineCount           int
}

// IntegrityStore finds out-of-balance entries. companyID zero means all.
type IntegrityStore interface {
	UnbalancedEntries(ctx context.Context, companyID int64) ([]Violation, error)
}

// GLIntegrityJob reports entries that break double-entry balance.
type GLIntegrityJob struct {
	Store   IntegrityStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

func NewGLIntegrityJob(store IntegrityStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	return &GLIntegrityJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes TaskLedgerIntegrity tasks.
func (j *GLIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("gl integrity: handler not configured")
	}
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Run(ctx, payload.CompanyID)
	return err
}

// Run scans and logs every violation found.
func (j *GLIntegrityJob) Run(ctx context.Context, companyID int64) (violations []Violation, resultErr error) {
	tracker := j.metrics().Track(TaskLedgerIntegrity)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	violations, err := j.Store.UnbalancedEntries(ctx, companyID)
	if err != nil {
		logger.Error("scan journal entries", slog.Any("error", err))
		return nil, err
	}
	perCompany := make(map[int64]int)
	for _, v := range violations {
		perCompany[v.CompanyID]++
		logger.Warn("journal entry out of balance",
			slog.Int64("company_id", v.CompanyID),
			slog.Int64("entry_id", v.EntryID),
			slog.String("transaction_type", v.TransactionTypeCode),
			slog.String("entry_number", v.EntryNumber),
			slog.String("total_debit", v.TotalDebit.StringFixed(2)),
			slog.String("total_credit", v.TotalCredit.StringFixed(2)),
			slog.String("line_debit", v.LineDebit.StringFixed(2)),
			slog.String("line_credit", v.LineCredit.StringFixed(2)),
			slog.Int("line_count", v.LineCount),
		)
	}
	for company, count := range perCompany {
		j.metrics().AddViolations(company, count)
	}
	logger.Info("GL integrity check executed", slog.Int("violations", len(violations)))
	return violations, nil
}

func (j *GLIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskLedgerIntegrity))
}

func (j *GLIntegrityJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

type pgIntegrityStore struct {
	pool *pgxpool.Pool
}

// NewIntegrityStore returns the PostgreSQL backed IntegrityStore.
func NewIntegrityStore(pool *pgxpool.Pool) IntegrityStore {
	return &pgIntegrityStore{pool: pool}
}

func (s *pgIntegrityStore) UnbalancedEntries(ctx context.Context, companyID int64) ([]Violation, error) {
	rows, err := s.pool.Query(ctx, `SELECT je.company_id, je.id, je.transaction_type_code, je.entry_number,
       je.total_debit::text, je.total_credit::text,
       COALESCE(SUM(li.debit), 0)::text, COALESCE(SUM(li.credit), 0)::text, COUNT(li.id)
FROM journal_entries je
LEFT JOIN journal_line_items li
  ON li.company_id = je.company_id
 AND li.transaction_type_code = je.transaction_type_code
 AND li.entry_number = je.entry_number
WHERE ($1::bigint = 0 OR je.company_id = $1)
GROUP BY je.id
HAVING je.total_debit <> je.total_credit
    OR COALESCE(SUM(li.debit), 0) <> je.total_debit
    OR COALESCE(SUM(li.credit), 0) <> je.total_credit
    OR COUNT(li.id) = 0
ORDER BY je.company_id, je.id`, companyID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Violation, error) {
		var v Violation
		var amounts [4]string
		if err := row.Scan(&v.CompanyID, &v.EntryID, &v.TransactionTypeCode, &v.EntryNumber,
			&amounts[0], &amounts[1], &amounts[2], &amounts[3], &v.LineCount); err != nil {
			return Violation{}, err
		}
		targets := [4]*decimal.Decimal{&v.TotalDebit, &v.TotalCredit, &v.LineDebit, &v.LineCredit}
		for i, raw := range amounts {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return Violation{}, fmt.Errorf("gl integrity: amount: %w", err)
			}
			*targets[i] = d
		}
		return v, nil
	})
}
