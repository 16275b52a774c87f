package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var validScopeName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)

type postgresPool struct {
	db           *sql.DB
	scopes       []string
	sessionParam map[string]string
	requests     atomic.Uint64
	returns      atomic.Uint64
}

// NewPostgresDb opens a pool and waits for the server to answer, retrying
// with backoff. Only this connectivity check is retried; statements never are.
func NewPostgresDb(ctx context.Context, opts Options) (ScopedDb, error) {
	for _, s := range opts.Scopes {
		if !validScopeName.MatchString(s) {
			return nil, fmt.Errorf("invalid scope name: %s", s)
		}
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 20
	}
	if opts.StatementTimeout <= 0 {
		opts.StatementTimeout = 5 * time.Second
	}
	if opts.PingAttempts == 0 {
		opts.PingAttempts = 5
	}
	if opts.PingDelay <= 0 {
		opts.PingDelay = time.Second
	}

	sqlDB, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxOpenConns / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	err = retry.Do(
		func() error { return sqlDB.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(opts.PingAttempts),
		retry.Delay(opts.PingDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Msg("database not reachable, retrying")
		}),
	)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	timeout := fmt.Sprintf("%dms", opts.StatementTimeout.Milliseconds())
	return &postgresPool{
		db:     sqlDB,
		scopes: opts.Scopes,
		sessionParam: map[string]string{
			"statement_timeout":                   timeout,
			"lock_timeout":                        timeout,
			"idle_in_transaction_session_timeout": timeout,
		},
	}, nil
}

func setStatement(name, value string) string {
	return fmt.Sprintf("SET %s = %s", pq.QuoteIdentifier(name), pq.QuoteLiteral(value))
}

func resetStatement(name string) string {
	return "RESET " + pq.QuoteIdentifier(name)
}

func (p *postgresPool) Conn(ctx context.Context) (ScopedConn, error) {
	ctx, cancel := context.WithCancel(ctx)
	conn, err := p.db.Conn(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to obtain database connection: %w", err)
	}
	fail := func(err error) (ScopedConn, error) {
		conn.Close()
		cancel()
		return nil, err
	}

	for name, value := range p.sessionParam {
		if _, err := conn.ExecContext(ctx, setStatement(name, value)); err != nil {
			return fail(fmt.Errorf("failed to set %s: %w", name, err))
		}
	}

	c := &postgresConn{
		conn:   conn,
		cancel: cancel,
		pool:   p,
		scopes: make(map[string]string),
	}
	if err := c.DropAllScopes(ctx); err != nil {
		return fail(fmt.Errorf("failed to initialize scopes: %w", err))
	}
	p.requests.Add(1)
	return c, nil
}

func (p *postgresPool) Stats() (requests, returns uint64) {
	return p.requests.Load(), p.returns.Load()
}

func (p *postgresPool) Close() error {
	return p.db.Close()
}

func (p *postgresPool) isConfiguredScope(scope string) bool {
	for _, s := range p.scopes {
		if s == scope {
			return true
		}
	}
	return false
}

type postgresConn struct {
	conn   *sql.Conn
	cancel context.CancelFunc
	pool   *postgresPool
	scopes map[string]string
}

func (c *postgresConn) AddScope(ctx context.Context, scope, value string) error {
	if c.conn == nil {
		return fmt.Errorf("no active connection")
	}
	if !c.pool.isConfiguredScope(scope) {
		return fmt.Errorf("scope %q is not configured", scope)
	}
	if _, err := c.conn.ExecContext(ctx, setStatement(scope, value)); err != nil {
		return fmt.Errorf("failed to set scope %q: %w", scope, err)
	}
	c.scopes[scope] = value
	return nil
}

func (c *postgresConn) DropScope(ctx context.Context, scope string) error {
	if c.conn == nil {
		return nil
	}
	if !validScopeName.MatchString(scope) {
		return fmt.Errorf("invalid scope name: %s", scope)
	}
	if _, err := c.conn.ExecContext(ctx, resetStatement(scope)); err != nil {
		return fmt.Errorf("failed to reset scope %q: %w", scope, err)
	}
	delete(c.scopes, scope)
	return nil
}

func (c *postgresConn) DropAllScopes(ctx context.Context) error {
	for _, s := range c.pool.scopes {
		if err := c.DropScope(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (c *postgresConn) Scopes() map[string]string {
	out := make(map[string]string, len(c.scopes))
	for k, v := range c.scopes {
		out[k] = v
	}
	return out
}

func (c *postgresConn) Conn() *sql.Conn {
	return c.conn
}

func (c *postgresConn) Close(ctx context.Context) {
	if c.conn == nil {
		return
	}
	if err := c.DropAllScopes(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to drop scopes while closing connection")
	}
	c.conn.Close()
	c.conn = nil
	if c.cancel != nil {
		c.cancel()
	}
	c.pool.returns.Add(1)
}
