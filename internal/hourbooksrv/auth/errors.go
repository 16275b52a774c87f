package auth

import (
	"net/http"

	"github.com/hourbook/hourbook/internal/common/apperrors"
)

var (
	ErrAuth apperrors.Error = apperrors.New("auth error").SetStatusCode(http.StatusInternalServerError)
)

// Authentication errors
var (
	ErrUnauthorized    apperrors.Error = ErrAuth.New("unauthorized access").SetStatusCode(http.StatusUnauthorized)
	ErrInvalidToken    apperrors.Error = ErrUnauthorized.New("invalid token")
	ErrUnknownMember   apperrors.Error = ErrUnauthorized.New("unknown member code")
	ErrTokenGeneration apperrors.Error = ErrAuth.New("failed to generate token")
)

// Authorization errors
var (
	ErrForbidden     apperrors.Error = ErrAuth.New("access denied").SetStatusCode(http.StatusForbidden)
	ErrAdminRequired apperrors.Error = ErrForbidden.New("administrator privilege required")
)
