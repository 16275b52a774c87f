// Package dbmanager hands out dedicated Postgres connections whose session
// settings ("scopes") carry the security context for row-level security.
//
// A ScopedConn is not safe for concurrent use. The server takes one per
// request and uses it from the request goroutine only.
package dbmanager

import (
	"context"
	"database/sql"
	"time"
)

type ScopedDb interface {
	// Conn takes a connection from the pool with session limits applied and
	// every configured scope reset.
	Conn(ctx context.Context) (ScopedConn, error)
	// Stats returns how many connections were handed out and returned.
	Stats() (requests, returns uint64)
	Close() error
}

type ScopedConn interface {
	AddScope(ctx context.Context, scope, value string) error
	DropScope(ctx context.Context, scope string) error
	DropAllScopes(ctx context.Context) error
	// Scopes returns a copy of the scopes currently set.
	Scopes() map[string]string
	// Conn exposes the underlying connection. Do not close it directly.
	Conn() *sql.Conn
	// Close resets the scopes and returns the connection to the pool.
	Close(ctx context.Context)
}

// Options configures a pool.
type Options struct {
	DSN              string
	MaxOpenConns     int
	StatementTimeout time.Duration
	// Scopes lists the only setting names AddScope accepts.
	Scopes []string
	// PingAttempts bounds the startup connectivity check.
	PingAttempts uint
	PingDelay    time.Duration
}
