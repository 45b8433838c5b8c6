package shared

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type companyContextKey struct{}

// ContextWithCompany stores the tenant company in context.
func ContextWithCompany(ctx context.Context, companyID int64) context.Context {
	return context.WithValue(ctx, companyContextKey{}, companyID)
}

// CompanyFromContext extracts the tenant company from context.
func CompanyFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(companyContextKey{}).(int64)
	return id, ok && id > 0
}

// CompanyScope resolves the {companyID} route parameter into the request
// context. Requests with a malformed id are rejected.
func CompanyScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithCompany(r.Context(), id)))
	})
}
