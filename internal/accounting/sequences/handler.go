package sequences

import (
	"log/slog"
	"net/http"

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

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{code}/next", h.Next)
}

// Next issues a number outside of posting, e.g. for pre-numbered documents.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "company required")
		return
	}
	code := chi.URLParam(r, "code")
	number, err := h.service.AllocateNext(r.Context(), companyID, code)
	if err != nil {
		h.logger.Error("allocate sequence", slog.Any("error", err), slog.Int64("company_id", companyID), slog.String("code", code))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"transactionTypeCode": code, "sequence": number})
}
