package httpx

import (
	"errors"
	"net/http"
)

// StatusMapping pairs a sentinel error with the problem it is reported as.
type StatusMapping struct {
	Err    error
	Status int
	Title  string
}

// RespondError writes the first mapping matching err using RFC7807. Unmapped
// errors become a 500 without detail so internals never leak.
func RespondError(w http.ResponseWriter, err error, mappings ...StatusMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			Problem(w, m.Status, m.Title, err.Error())
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
