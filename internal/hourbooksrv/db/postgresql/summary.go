package postgresql

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
)

// ListUserHoursSummary reads the user_hours_summary view. The view runs with
// the invoker's rights, so the security context applies to it as well.
func (tm *timeSessionManager) ListUserHoursSummary(ctx context.Context) ([]*models.UserHoursSummary, apperrors.Error) {
	if err := tm.scoped(ctx); err != nil {
		return nil, err
	}
	query := `
		SELECT code, name, role, total_hours, flagged_sessions, last_activity
		FROM user_hours_summary
		ORDER BY total_hours DESC, name ASC`

	rows, err := tm.conn().QueryContext(ctx, query)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to read hours summary")
		return nil, mapError(err)
	}
	defer rows.Close()

	summaries := []*models.UserHoursSummary{}
	for rows.Next() {
		s, err := scanUserHoursSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return summaries, nil
}
