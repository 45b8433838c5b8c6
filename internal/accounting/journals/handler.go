package journals

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompany(w, r)
	if !ok {
		return
	}
	entries, err := h.service.FindAll(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err), slog.Int64("company_id", companyID))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompany(w, r)
	if !ok {
		return
	}
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
		return
	}
	// The route decides the tenant, never the body.
	input.CompanyID = companyID
	entry, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.logger.Error("post journal", slog.Any("error", err), slog.Int64("company_id", companyID),
			slog.String("transaction_type", input.TransactionTypeCode))
		acctshared.RespondError(w, err)
		return
	}
	h.logger.Info("journal posted", slog.Int64("company_id", companyID), slog.String("transaction_type", entry.TransactionTypeCode),
		slog.String("entry_number", entry.EntryNumber))
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := requireEntry(w, r)
	if !ok {
		return
	}
	entry, err := h.service.FindOne(r.Context(), id, companyID)
	if err != nil {
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := requireEntry(w, r)
	if !ok {
		return
	}
	var patch UpdateInput
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
		return
	}
	entry, err := h.service.Update(r.Context(), id, companyID, patch)
	if err != nil {
		h.logger.Error("update journal", slog.Any("error", err), slog.Int64("company_id", companyID), slog.Int64("id", id))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := requireEntry(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, companyID); err != nil {
		h.logger.Error("delete journal", slog.Any("error", err), slog.Int64("company_id", companyID), slog.Int64("id", id))
		acctshared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requireCompany(w http.ResponseWriter, r *http.Request) (int64, bool) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "company required")
	}
	return companyID, ok
}

func requireEntry(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	companyID, ok := requireCompany(w, r)
	if !ok {
		return 0, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return 0, 0, false
	}
	return companyID, id, true
}
