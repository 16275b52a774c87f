package postgresql

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgconn"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
)

const (
	pgUniqueViolation       = "23505"
	pgForeignKeyViolation   = "23503"
	pgCheckViolation        = "23514"
	pgInsufficientPrivilege = "42501"
)

// mapError converts a driver error into the dberror taxonomy.
func mapError(err error) apperrors.Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return dberror.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return dberror.ErrAlreadyExists.Err(err)
		case pgForeignKeyViolation:
			return dberror.ErrMemberNotFound.Err(err)
		case pgCheckViolation:
			return dberror.ErrInvalidInput.Err(err)
		case pgInsufficientPrivilege:
			return dberror.ErrPermissionDenied.Err(err)
		}
	}
	return dberror.ErrDatabase.Err(err)
}
