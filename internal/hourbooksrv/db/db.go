// Package db provides the hourbook persistence surface.
// It defines three interfaces:
// - TimeSessionManager: time sessions and the hours summary view
// - MemberManager: member records owned by the identity provider
// - ConnectionManager: scopes and the lifetime of the request connection
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/common/uuid"
	"github.com/hourbook/hourbook/internal/hourbooksrv/config"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/dbmanager"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/models"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/postgresql"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db/schema"
)

// TimeSessionManager operates on time_sessions under the security context of
// the actor stored in ctx. Every method establishes that context before it
// issues a statement.
type TimeSessionManager interface {
	CreateTimeSession(ctx context.Context, s *models.TimeSession) apperrors.Error
	GetTimeSession(ctx context.Context, id uuid.UUID) (*models.TimeSession, apperrors.Error)
	GetOpenTimeSession(ctx context.Context, memberCode string) (*models.TimeSession, apperrors.Error)
	CloseTimeSession(ctx context.Context, id uuid.UUID, checkOut time.Time, totalHours float64, flagged bool) (*models.TimeSession, apperrors.Error)
	UpdateTimeSessionHours(ctx context.Context, id uuid.UUID, totalHours float64, notes string) (*models.TimeSession, apperrors.Error)
	DeleteTimeSession(ctx context.Context, id uuid.UUID) apperrors.Error
	ListOpenTimeSessions(ctx context.Context) ([]*models.TimeSession, apperrors.Error)
	ListClosedTimeSessions(ctx context.Context, memberCode string) ([]*models.TimeSession, apperrors.Error)
	ListUserHoursSummary(ctx context.Context) ([]*models.UserHoursSummary, apperrors.Error)
}

// MemberManager reads and writes member records. Members are written by the
// service itself (seeding and auto-enrolment), not under a member's context.
type MemberManager interface {
	GetMember(ctx context.Context, code string) (*models.Member, apperrors.Error)
	CreateMember(ctx context.Context, m *models.Member) apperrors.Error
	UpsertMember(ctx context.Context, m *models.Member) apperrors.Error
	ListMembers(ctx context.Context) ([]*models.Member, apperrors.Error)
}

type ConnectionManager interface {
	AddScope(ctx context.Context, scope, value string) error
	DropScope(ctx context.Context, scope string) error
	DropAllScopes(ctx context.Context) error

	// Close returns the connection to the pool.
	Close(ctx context.Context)
}

type Database interface {
	TimeSessionManager
	MemberManager
	ConnectionManager
}

// Scope_MemberCode carries the acting member code for row-level security.
const Scope_MemberCode string = postgresql.ScopeMemberCode

var configuredScopes = []string{
	Scope_MemberCode,
}

var pool dbmanager.ScopedDb

// Init opens the connection pool described by the active configuration.
func Init(ctx context.Context) error {
	c := config.Config()
	if c == nil {
		return fmt.Errorf("configuration not loaded")
	}
	timeout, err := config.ParseDuration(c.DB.StatementTimeout)
	if err != nil {
		return fmt.Errorf("invalid db.statement_timeout: %w", err)
	}
	p, err := dbmanager.NewPostgresDb(ctx, dbmanager.Options{
		DSN:              c.DSN(),
		MaxOpenConns:     c.DB.MaxOpenConns,
		StatementTimeout: timeout,
		Scopes:           configuredScopes,
	})
	if err != nil {
		return err
	}
	pool = p
	return nil
}

// Close closes the pool.
func Close() {
	if pool == nil {
		return
	}
	requests, returns := pool.Stats()
	if requests != returns {
		log.Warn().Uint64("requests", requests).Uint64("returns", returns).Msg("closing pool with connections outstanding")
	}
	if err := pool.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close db pool")
	}
	pool = nil
}

// Conn returns a new database connection from the pool.
func Conn(ctx context.Context) (dbmanager.ScopedConn, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	conn, err := pool.Conn(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to get db connection")
		return nil, err
	}
	return conn, nil
}

// Ping takes a connection from the pool and returns it.
func Ping(ctx context.Context) error {
	conn, err := Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())
	return conn.Conn().PingContext(ctx)
}

// Migrate applies the embedded schema.
func Migrate(ctx context.Context) error {
	conn, err := Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())
	return schema.Apply(ctx, conn.Conn())
}

type ctxDbKeyType string

const ctxDbKey ctxDbKeyType = "HourbookDb"

// ConnCtx adds a database connection to the context.
func ConnCtx(ctx context.Context) (context.Context, error) {
	conn, err := Conn(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, ctxDbKey, conn), nil
}

type hourbookDb struct {
	TimeSessionManager
	MemberManager
	ConnectionManager
}

// DB returns the database bound to the connection in ctx, or nil when ctx
// carries no connection.
func DB(ctx context.Context) Database {
	if conn, ok := ctx.Value(ctxDbKey).(dbmanager.ScopedConn); ok {
		tm, mm, cm := postgresql.NewHourbookDb(conn)
		return &hourbookDb{
			TimeSessionManager: tm,
			MemberManager:      mm,
			ConnectionManager:  cm,
		}
	}
	log.Ctx(ctx).Error().Msg("unable to get db connection from context")
	return nil
}
