package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
)

// ReportBuilder is the subset of the report service the warmup drives.
type ReportBuilder interface {
	ProfitAndLoss(ctx context.Context, q reports.Query) (reports.Report, error)
	BalanceSheet(ctx context.Context, q reports.Query) (reports.Report, error)
}

// CompanyLister returns the companies that have posted entries.
type CompanyLister interface {
	ActiveCompanies(ctx context.Context) ([]int64, error)
}

// ReportsWarmupJob prebuilds the default report views so the first request
// after a journal write is served from cache.
type ReportsWarmupJob struct {
	Reports   ReportBuilder
	Companies CompanyLister
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

func NewReportsWarmupJob(builder ReportBuilder, companies CompanyLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Reports:   builder,
		Companies: companies,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Run(ctx, payload.CompanyID)
	return err
}

// Run warms companyID, or every active company when zero, and returns how
// many companies were warmed.
func (j *ReportsWarmupJob) Run(ctx context.Context, companyID int64) (warmed int, resultErr error) {
	tracker := j.metrics().Track(TaskReportsWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	companies := []int64{companyID}
	if companyID == 0 {
		if j.Companies == nil {
			return 0, errors.New("reports warmup: company lister not configured")
		}
		var err error
		if companies, err = j.Companies.ActiveCompanies(ctx); err != nil {
			logger.Error("load warmup companies", slog.Any("error", err))
			return 0, err
		}
	}

	start := j.now()
	for _, id := range companies {
		if err := j.warm(ctx, id); err != nil {
			logger.Error("warm company", slog.Int64("company_id", id), slog.Any("error", err))
			return warmed, err
		}
		warmed++
	}
	logger.Info("completed reports warmup", slog.Int("companies", warmed), slog.Duration("duration", time.Since(start)))
	return warmed, nil
}

func (j *ReportsWarmupJob) warm(ctx context.Context, companyID int64) error {
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	// Defaults match what the HTTP handlers resolve when no dates are given.
	for _, level := range []ledger.Level{ledger.LevelAll, ledger.LevelN(1)} {
		q := reports.Query{CompanyID: companyID, Level: level}
		if _, err := j.Reports.ProfitAndLoss(scopeCtx, q); err != nil {
			return err
		}
		if _, err := j.Reports.BalanceSheet(scopeCtx, q); err != nil {
			return err
		}
	}
	return nil
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

type pgCompanyLister struct {
	pool *pgxpool.Pool
}

// NewCompanyLister returns the PostgreSQL backed CompanyLister.
func NewCompanyLister(pool *pgxpool.Pool) CompanyLister {
	return &pgCompanyLister{pool: pool}
}

func (l *pgCompanyLister) ActiveCompanies(ctx context.Context) ([]int64, error) {
	rows, err := l.pool.Query(ctx, `SELECT DISTINCT company_id FROM journal_entries WHERE company_id > 0 ORDER BY company_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
