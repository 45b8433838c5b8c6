package reports

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _, _ := newTestService(t, fixtureAggregator())
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Route("/api/companies/{companyID}", func(r chi.Router) {
		r.Use(shared.CompanyScope)
		r.Route("/reports", h.MountRoutes)
	})
	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlerProfitAndLoss(t *testing.T) {
	h := newTestRouter(t)
	rec := get(h, "/api/companies/1/reports/pl?startDate=2026-01-01&endDate=2026-03-31&level=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Report    []map[string]any `json:"report"`
		StartDate string           `json:"startDate"`
		EndDate   string           `json:"endDate"`
		Level     any              `json:"level"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2026-01-01", body.StartDate)
	assert.Equal(t, "2026-03-31", body.EndDate)
	assert.Equal(t, float64(1), body.Level)
	require.Len(t, body.Report, 3)
	assert.Equal(t, "4.", body.Report[0]["code"])
	assert.Equal(t, true, body.Report[0]["isIncome"])
}

func TestHandlerBalanceSheetAndTrialBalance(t *testing.T) {
	h := newTestRouter(t)
	rec := get(h, "/api/companies/1/reports/bs?endDate=2026-03-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"level":"All"`)

	rec = get(h, "/api/companies/1/reports/tb")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"groups"`)
}

func TestHandlerRejectsBadQueries(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{
		"/api/companies/1/reports/pl?level=zero",
		"/api/companies/1/reports/pl?startDate=03-01-2026",
		"/api/companies/1/reports/pl?endDate=tomorrow",
		"/api/companies/1/reports/pl?startDate=2026-05-01&endDate=2026-04-01",
	} {
		rec := get(h, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
