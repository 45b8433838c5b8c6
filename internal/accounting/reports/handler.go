package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
	acctshared "github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pl", h.ProfitAndLoss)
	r.Get("/bs", h.BalanceSheet)
	r.Get("/tb", h.TrialBalance)
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	report, err := h.service.ProfitAndLoss(r.Context(), q)
	h.respond(w, KindProfitAndLoss, q, report, err)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	report, err := h.service.BalanceSheet(r.Context(), q)
	h.respond(w, KindBalanceSheet, q, report, err)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	report, err := h.service.TrialBalance(r.Context(), q)
	h.respond(w, KindTrialBalance, q, report, err)
}

func (h *Handler) respond(w http.ResponseWriter, kind Kind, q Query, body any, err error) {
	if err != nil {
		h.logger.Error("build report", slog.Any("error", err), slog.String("report", string(kind)),
			slog.Int64("company_id", q.CompanyID))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, body)
}

func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) (Query, bool) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "company required")
		return Query{}, false
	}
	values := r.URL.Query()
	q := Query{CompanyID: companyID}
	var err error
	if q.StartDate, err = parseDate(values.Get("startDate")); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "startDate must be YYYY-MM-DD")
		return Query{}, false
	}
	if q.EndDate, err = parseDate(values.Get("endDate")); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "endDate must be YYYY-MM-DD")
		return Query{}, false
	}
	if q.Level, err = ledger.ParseLevel(values.Get("level")); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "level must be All or a positive integer")
		return Query{}, false
	}
	return q, true
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
