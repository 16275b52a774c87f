package ledger

import (
	"errors"
	"net/http"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
)

var (
	ErrLedger          apperrors.Error = apperrors.New("ledger error").SetStatusCode(http.StatusInternalServerError)
	ErrValidation      apperrors.Error = ErrLedger.New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrInvalidCode     apperrors.Error = ErrValidation.New("member code must be 5 digits")
	ErrInvalidHours    apperrors.Error = ErrValidation.New("hours must be a finite number between 0 and 99999.99")
	ErrNotFound        apperrors.Error = ErrLedger.New("not found").SetStatusCode(http.StatusNotFound)
	ErrSessionNotFound apperrors.Error = ErrNotFound.New("session not found or already closed")
	ErrMemberNotFound  apperrors.Error = ErrNotFound.New("member not found")
	ErrAlreadyOpen     apperrors.Error = ErrLedger.New("member is already signed in").SetStatusCode(http.StatusConflict)
	ErrAuthorization   apperrors.Error = ErrLedger.New("access denied").SetStatusCode(http.StatusForbidden)
	ErrAdminRequired   apperrors.Error = ErrAuthorization.New("administrator privilege required")
	// ErrTransport hides the store failure from the caller; the cause is logged.
	ErrTransport apperrors.Error = ErrLedger.New("an unexpected error occurred")
)

// storeError translates a persistence failure into the ledger taxonomy.
// notFound is used when the store reports a missing row.
func storeError(err apperrors.Error, notFound apperrors.Error) apperrors.Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dberror.ErrAlreadyExists):
		return ErrAlreadyOpen.Err(err)
	case errors.Is(err, dberror.ErrMemberNotFound):
		return ErrMemberNotFound.Err(err)
	case errors.Is(err, dberror.ErrNotFound):
		return notFound.Err(err)
	case errors.Is(err, dberror.ErrPermissionDenied):
		return ErrAuthorization.Err(err)
	case errors.Is(err, dberror.ErrInvalidInput):
		return ErrValidation.Err(err)
	}
	return ErrTransport.Err(err)
}
