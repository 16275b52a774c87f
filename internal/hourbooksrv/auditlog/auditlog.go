// Package auditlog records administrative mutations of the session ledger as
// JSON lines.
package auditlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

type Action string

const (
	ActionSignIn    Action = "sign_in"
	ActionSignOut   Action = "sign_out"
	ActionManualAdd Action = "manual_add"
	ActionAdjust    Action = "adjust_hours"
	ActionDelete    Action = "delete"
)

// Event is one audit record. OldHours and NewHours are nil when the action
// does not carry them.
type Event struct {
	Time       time.Time `json:"time"`
	Action     Action    `json:"action"`
	ActorCode  string    `json:"actor_code"`
	SessionID  string    `json:"session_id"`
	MemberCode string    `json:"member_code,omitempty"`
	OldHours   *float64  `json:"old_hours,omitempty"`
	NewHours   *float64  `json:"new_hours,omitempty"`
	Flagged    bool      `json:"flagged,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

type Sink interface {
	Record(ctx context.Context, e Event) error
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileSink appends events to a file. It is safe for concurrent use.
type FileSink struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// NewFileSink opens path for appending, creating it and its directory if
// needed.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &FileSink{path: path, f: f}, nil
}

func (s *FileSink) Record(_ context.Context, e Event) error {
	line, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return fmt.Errorf("audit log %s is closed", s.path)
	}
	if _, err := s.f.Write(line); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

// Memory keeps events in memory. Tests use it to inspect what was recorded.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Record(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
