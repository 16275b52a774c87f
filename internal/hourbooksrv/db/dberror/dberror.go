package dberror

import (
	"net/http"

	"github.com/hourbook/hourbook/internal/common/apperrors"
)

var (
	ErrDatabase               apperrors.Error = apperrors.New("db error").SetStatusCode(http.StatusInternalServerError)
	ErrAlreadyExists          apperrors.Error = ErrDatabase.New("already exists").SetStatusCode(http.StatusConflict)
	ErrNotFound               apperrors.Error = ErrDatabase.New("not found").SetStatusCode(http.StatusNotFound)
	ErrMemberNotFound         apperrors.Error = ErrNotFound.New("member not found")
	ErrInvalidInput           apperrors.Error = ErrDatabase.New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrMissingSecurityContext apperrors.Error = ErrInvalidInput.New("missing security context")
	ErrPermissionDenied       apperrors.Error = ErrDatabase.New("permission denied").SetStatusCode(http.StatusForbidden)
	ErrDecode                 apperrors.Error = ErrDatabase.New("unable to decode row")
)
