package postgresql

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
)

const memberColumns = `code, name, role, is_admin, created_at`

// GetMember returns the member with the given code.
func (mm *memberManager) GetMember(ctx context.Context, code string) (*models.Member, apperrors.Error) {
	var m models.Member
	err := mm.conn().QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE code = $1`, code).
		Scan(&m.Code, &m.Name, &m.Role, &m.IsAdmin, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

// CreateMember inserts m and fails with dberror.ErrAlreadyExists on a
// duplicate code.
func (mm *memberManager) CreateMember(ctx context.Context, m *models.Member) apperrors.Error {
	if m == nil || m.Code == "" {
		return dberror.ErrInvalidInput.Msg("member requires a code")
	}
	err := mm.conn().QueryRowContext(ctx, `
		INSERT INTO members (code, name, role, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		m.Code, m.Name, m.Role, m.IsAdmin,
	).Scan(&m.CreatedAt)
	if err != nil {
		mapped := mapError(err)
		if !errors.Is(mapped, dberror.ErrAlreadyExists) {
			log.Ctx(ctx).Error().Err(err).Str("member_code", m.Code).Msg("failed to create member")
		}
		return mapped
	}
	return nil
}

// UpsertMember creates m or updates the name, role and admin flag of an
// existing member with the same code.
func (mm *memberManager) UpsertMember(ctx context.Context, m *models.Member) apperrors.Error {
	if m == nil || m.Code == "" {
		return dberror.ErrInvalidInput.Msg("member requires a code")
	}
	err := mm.conn().QueryRowContext(ctx, `
		INSERT INTO members (code, name, role, is_admin)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			is_admin = EXCLUDED.is_admin
		RETURNING created_at`,
		m.Code, m.Name, m.Role, m.IsAdmin,
	).Scan(&m.CreatedAt)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("member_code", m.Code).Msg("failed to upsert member")
		return mapError(err)
	}
	return nil
}

// ListMembers returns all members ordered by code.
func (mm *memberManager) ListMembers(ctx context.Context) ([]*models.Member, apperrors.Error) {
	rows, err := mm.conn().QueryContext(ctx, `SELECT `+memberColumns+` FROM members ORDER BY code`)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list members")
		return nil, mapError(err)
	}
	defer rows.Close()

	members := []*models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.Code, &m.Name, &m.Role, &m.IsAdmin, &m.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return members, nil
}
