package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

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

// List serves the paginated chart of accounts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "company required")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	accounts, pagination, err := h.service.Page(r.Context(), companyID, page, perPage)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err), slog.Int64("company_id", companyID))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       accounts,
		"pagination": pagination,
	})
}
