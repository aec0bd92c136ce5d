package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// getPathID extracts an opaque identifier from the URL path parameters.
// Only emptiness is checked; ids are otherwise passed through unchanged.
func getPathID(r *http.Request, paramName string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, paramName))
	if id == "" {
		return "", domain.NewValidationError(paramName, "is required", nil)
	}
	return id, nil
}
