package shared

import (
	"net/http"

	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

// ProblemMappings translates accounting errors to HTTP problems.
var ProblemMappings = []httpx.StatusMapping{
	{Err: ErrNotFound, Status: http.StatusNotFound, Title: "Not Found"},
	{Err: ErrConflict, Status: http.StatusConflict, Title: "Conflict"},
	{Err: ErrUnbalanced, Status: http.StatusUnprocessableEntity, Title: "Unbalanced Entry"},
	{Err: ErrNoLineItems, Status: http.StatusBadRequest, Title: "Validation Failed"},
	{Err: ErrInvalidInput, Status: http.StatusBadRequest, Title: "Validation Failed"},
}

// RespondError writes err as an RFC7807 problem.
func RespondError(w http.ResponseWriter, err error) {
	httpx.RespondError(w, err, ProblemMappings...)
}
