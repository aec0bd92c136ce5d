package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// AuthMiddleware requires a verified bearer credential on protected routes.
type AuthMiddleware struct {
	gateway auth.Gateway
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(gateway auth.Gateway) *AuthMiddleware {
	return &AuthMiddleware{
		gateway: gateway,
	}
}

// Authenticate verifies the Authorization header and stores the resulting
// subject in the request context. Browsers cannot set headers on websocket
// handshakes, so an access_token query parameter is accepted as well.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential, ok := bearerCredential(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		subject, err := m.gateway.Verify(r.Context(), credential)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token expired"
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, message, err)
			return
		}

		ctx := WithSubject(r.Context(), subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerCredential(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, credential, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(credential) == "" {
			return "", false
		}
		return strings.TrimSpace(credential), true
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, true
	}
	return "", false
}

// WithSubject returns a copy of ctx carrying subject.
func WithSubject(ctx context.Context, subject *auth.Subject) context.Context {
	return context.WithValue(ctx, shared.SubjectContextKey, subject)
}

// GetSubject extracts the verified subject from the request context.
func GetSubject(r *http.Request) (*auth.Subject, bool) {
	subject, ok := r.Context().Value(shared.SubjectContextKey).(*auth.Subject)
	return subject, ok && subject != nil
}
