package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// Subject is the verified identity behind a credential.
type Subject struct {
	SubjectID string `json:"uid"`
	Email     string `json:"email,omitempty"`
}

// Gateway verifies externally issued identity credentials.
type Gateway interface {
	// Verify checks the credential and returns the identity it names.
	// Every failure wraps domain.ErrUnauthenticated.
	Verify(ctx context.Context, credential string) (*Subject, error)
}

// subjectClaims accepts both a "uid" claim and the registered "sub" claim.
type subjectClaims struct {
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type jwtGateway struct {
	method    jwt.SigningMethod
	key       any
	timeFunc  func() time.Time // Injectable for testing
	clockSkew time.Duration
}

var _ Gateway = (*jwtGateway)(nil)

// GatewayOption configures the JWT gateway.
type GatewayOption func(*jwtGateway)

// WithTimeFunc overrides the clock used to check time-based claims.
func WithTimeFunc(now func() time.Time) GatewayOption {
	return func(g *jwtGateway) {
		g.timeFunc = now
	}
}

// NewGateway builds a JWT gateway. RS256 is used when a PEM public key is
// configured, otherwise HS256 with the shared secret. With neither, every
// credential is rejected with ErrNotConfigured.
func NewGateway(cfg config.AuthConfig, opts ...GatewayOption) (Gateway, error) {
	g := &jwtGateway{
		timeFunc:  time.Now,
		clockSkew: 2 * time.Minute,
	}

	switch {
	case strings.TrimSpace(cfg.PublicKeyPEM) != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse auth public key: %w", err)
		}
		g.method, g.key = jwt.SigningMethodRS256, key
	case cfg.JWTSecret != "":
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("jwt secret must be at least 32 characters")
		}
		g.method, g.key = jwt.SigningMethodHS256, []byte(cfg.JWTSecret)
	}

	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *jwtGateway) Verify(ctx context.Context, credential string) (*Subject, error) {
	log := logger.FromContext(ctx)

	if g.method == nil {
		return nil, ErrNotConfigured
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrMissingToken
	}

	now := g.timeFunc()
	token, err := jwt.ParseWithClaims(
		credential,
		&subjectClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != g.method.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return g.key, nil
		},
		jwt.WithValidMethods([]string{g.method.Alg()}),
		jwt.WithLeeway(g.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("credential rejected: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("credential rejected: token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("credential rejected",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*subjectClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	subjectID := claims.UID
	if subjectID == "" {
		subjectID = claims.Subject
	}
	if subjectID == "" {
		return nil, ErrMissingSubject
	}

	return &Subject{SubjectID: subjectID, Email: claims.Email}, nil
}
