package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dberror"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dbmanager"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
)

// Time Session Manager
type timeSessionManager struct {
	c dbmanager.ScopedConn
}

func newTimeSessionManager(c dbmanager.ScopedConn) *timeSessionManager {
	return &timeSessionManager{c: c}
}

func (tm *timeSessionManager) conn() *sql.Conn {
	return tm.c.Conn()
}

// scoped establishes the security context for the next statement. It runs
// before every statement since a pooled connection carries no state between
// requests.
func (tm *timeSessionManager) scoped(ctx context.Context) apperrors.Error {
	return setSecurityContext(ctx, tm.c)
}

// Member Manager
type memberManager struct {
	c dbmanager.ScopedConn
}

func newMemberManager(c dbmanager.ScopedConn) *memberManager {
	return &memberManager{c: c}
}

func (mm *memberManager) conn() *sql.Conn {
	return mm.c.Conn()
}

// Connection Manager
type connectionManager struct {
	c dbmanager.ScopedConn
}

func newConnectionManager(c dbmanager.ScopedConn) *connectionManager {
	return &connectionManager{c: c}
}

func (cm *connectionManager) AddScope(ctx context.Context, scope, value string) error {
	return cm.c.AddScope(ctx, scope, value)
}

func (cm *connectionManager) DropScope(ctx context.Context, scope string) error {
	return cm.c.DropScope(ctx, scope)
}

func (cm *connectionManager) DropAllScopes(ctx context.Context) error {
	return cm.c.DropAllScopes(ctx)
}

func (cm *connectionManager) Close(ctx context.Context) {
	cm.c.Close(ctx)
}

func setSecurityContext(ctx context.Context, c dbmanager.ScopedConn) apperrors.Error {
	code := hbcommon.GetActorCode(ctx)
	if code == "" {
		return dberror.ErrMissingSecurityContext
	}
	if err := c.AddScope(ctx, ScopeMemberCode, code); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to set security context")
		return dberror.ErrDatabase.Err(err)
	}
	return nil
}
