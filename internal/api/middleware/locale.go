package middleware

import (
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/presentation"
)

// NewLocaleMiddleware picks the display locale from Accept-Language.
func NewLocaleMiddleware(formatter *presentation.Formatter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := formatter.Match(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", tag.String())
			next.ServeHTTP(w, r.WithContext(presentation.WithLocale(r.Context(), tag)))
		})
	}
}
