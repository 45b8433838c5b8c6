package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/cache"
)

const dateLayout = "2006-01-02"

// Aggregator computes leveled balances.
type Aggregator interface {
	Aggregate(ctx context.Context, req ledger.Request) (ledger.Result, error)
}

// Recorder observes cache effectiveness and build latency.
type Recorder interface {
	CacheHit(report string)
	CacheMiss(report string)
	ObserveBuild(report string, d time.Duration)
}

// Query selects a company, a date range and a level. Nil dates default to
// the start of the current year and today.
type Query struct {
	CompanyID int64
	StartDate *time.Time
	EndDate   *time.Time
	Level     ledger.Level
}

type Service struct {
	aggregator Aggregator
	cache      *cache.Cache
	recorder   Recorder
	group      singleflight.Group
	now        func() time.Time
}

// NewService wires the aggregator with the report cache. cache and recorder
// may be nil.
func NewService(aggregator Aggregator, cache *cache.Cache, recorder Recorder) *Service {
	return &Service{aggregator: aggregator, cache: cache, recorder: recorder, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) ProfitAndLoss(ctx context.Context, q Query) (Report, error) {
	return s.leveled(ctx, KindProfitAndLoss, q)
}

// BalanceSheet reports balances as of EndDate; StartDate is ignored.
func (s *Service) BalanceSheet(ctx context.Context, q Query) (Report, error) {
	return s.leveled(ctx, KindBalanceSheet, q)
}

func (s *Service) TrialBalance(ctx context.Context, q Query) (TrialBalance, error) {
	var out TrialBalance
	err := s.fetch(ctx, KindTrialBalance, q, &out, func(res ledger.Result, start, end string) any {
		tb := BuildTrialBalance(res)
		tb.StartDate, tb.EndDate, tb.Level = start, end, q.Level
		return tb
	})
	return out, err
}

func (s *Service) leveled(ctx context.Context, kind Kind, q Query) (Report, error) {
	var out Report
	err := s.fetch(ctx, kind, q, &out, func(res ledger.Result, start, end string) any {
		return Report{Report: res.Rows, StartDate: start, EndDate: end, Level: q.Level}
	})
	return out, err
}

// fetch serves kind from the cache, building it at most once per key across
// concurrent callers.
func (s *Service) fetch(ctx context.Context, kind Kind, q Query, dest any, shape func(ledger.Result, string, string) any) error {
	st := statements[kind]
	from, to, err := s.resolveRange(q)
	if err != nil {
		return err
	}
	start := from.Format(dateLayout)
	if st.pointInTime {
		start = ""
	}
	end := to.Format(dateLayout)

	parts := []string{"reports", string(kind), strconv.FormatInt(q.CompanyID, 10), start, end, q.Level.String()}
	store := s.cache
	key, err := store.BuildKey(ctx, parts...)
	if err != nil {
		// Without a version the cache cannot be trusted; build uncached.
		store = nil
		key = strings.Join(parts, ":")
	}
	req := ledger.Request{
		CompanyID:   q.CompanyID,
		Roots:       st.roots,
		NetLabel:    st.netLabel,
		From:        from,
		To:          to,
		PointInTime: st.pointInTime,
		Opening:     st.opening,
		Level:       q.Level,
	}
	ch := s.group.DoChan(key, func() (any, error) {
		var raw json.RawMessage
		hit, err := store.FetchJSON(ctx, key, &raw, func(ctx context.Context) (any, error) {
			started := time.Now()
			defer func() { s.observe(kind, started) }()
			res, err := s.aggregator.Aggregate(ctx, req)
			if err != nil {
				return nil, err
			}
			return shape(res, start, end), nil
		})
		if err != nil {
			return nil, err
		}
		if s.recorder != nil {
			if hit {
				s.recorder.CacheHit(string(kind))
			} else {
				s.recorder.CacheMiss(string(kind))
			}
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return shared.Classify(fmt.Sprintf("build %s report", kind), res.Err)
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}

func (s *Service) observe(kind Kind, started time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveBuild(string(kind), time.Since(started))
	}
}

// resolveRange applies the defaults and rejects inverted ranges.
func (s *Service) resolveRange(q Query) (time.Time, time.Time, error) {
	now := s.now().UTC()
	to := now
	if q.EndDate != nil {
		to = *q.EndDate
	}
	from := time.Date(to.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if q.EndDate == nil {
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if q.StartDate != nil {
		from = *q.StartDate
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate after endDate", shared.ErrInvalidInput)
	}
	return from, to, nil
}
