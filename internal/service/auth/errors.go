package auth

import (
	"fmt"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// Verification errors. All of them wrap domain.ErrUnauthenticated.
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = fmt.Errorf("%w: invalid authentication token", domain.ErrUnauthenticated)

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = fmt.Errorf("%w: authentication token has expired", domain.ErrUnauthenticated)

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = fmt.Errorf("%w: authentication token not yet valid", domain.ErrUnauthenticated)

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = fmt.Errorf("%w: authentication token is missing", domain.ErrUnauthenticated)

	// ErrMissingSubject indicates a valid token that names no subject
	ErrMissingSubject = fmt.Errorf("%w: authentication token has no subject", domain.ErrUnauthenticated)

	// ErrNotConfigured indicates no verification key was configured
	ErrNotConfigured = fmt.Errorf("%w: credential verification is not configured", domain.ErrUnauthenticated)
)
