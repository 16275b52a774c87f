// Package settings holds the per-login console settings: whether member codes
// are shown unmasked and whether the console is locked in kiosk mode.
//
// The kiosk exit code is a shared secret typed on a kiosk screen. It keeps
// passers-by out of the administrative views; it is not authentication.
package settings

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/hourbook/hourbook/internal/common/apperrors"
	"github.com/hourbook/hourbook/internal/hourbooksrv/hbcommon"
)

var (
	ErrSettings      apperrors.Error = apperrors.New("settings error").SetStatusCode(http.StatusInternalServerError)
	ErrForbidden     apperrors.Error = ErrSettings.New("access denied").SetStatusCode(http.StatusForbidden)
	ErrRootRequired  apperrors.Error = ErrForbidden.New("only the root administrator may reveal member codes")
	ErrAdminRequired apperrors.Error = ErrForbidden.New("administrator privilege required")
	ErrKioskLocked   apperrors.Error = ErrForbidden.New("console is locked in kiosk mode")
	ErrWrongExitCode apperrors.Error = ErrForbidden.New("wrong exit code")
	ErrNoLogin       apperrors.Error = ErrSettings.New("login required").SetStatusCode(http.StatusUnauthorized)
)

type Settings struct {
	ShowIDs     bool
	KioskLocked bool
}

type entry struct {
	Settings
	expires time.Time
}

// Store keeps one Settings per login, keyed by the token id. Entries expire
// with the login. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*entry
	ttl      time.Duration
	isRoot   func(code string) bool
	exitCode string
	now      func() time.Time
}

// NewStore returns a store whose entries live for ttl. isRoot decides who may
// reveal member codes; exitCode unlocks the kiosk.
func NewStore(ttl time.Duration, isRoot func(code string) bool, exitCode string) *Store {
	return &Store{
		entries:  make(map[string]*entry),
		ttl:      ttl,
		isRoot:   isRoot,
		exitCode: exitCode,
		now:      time.Now,
	}
}

// Get returns the settings of the actor's login. A login without stored
// settings has the defaults: codes masked, kiosk unlocked.
func (s *Store) Get(actor *hbcommon.Actor) Settings {
	if actor == nil {
		return Settings{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.lookup(actor.TokenID); e != nil {
		return e.Settings
	}
	return Settings{}
}

// SetShowIDs reveals or masks member codes. Only the root administrator may
// reveal them; anyone may mask them again.
func (s *Store) SetShowIDs(actor *hbcommon.Actor, show bool) (Settings, apperrors.Error) {
	if actor == nil || actor.TokenID == "" {
		return Settings{}, ErrNoLogin
	}
	if show && !s.isRoot(actor.Code) {
		return Settings{}, ErrRootRequired
	}
	return s.update(actor.TokenID, func(st *Settings) apperrors.Error {
		if st.KioskLocked {
			return ErrKioskLocked
		}
		st.ShowIDs = show
		return nil
	})
}

// Lock puts the console into kiosk mode.
func (s *Store) Lock(actor *hbcommon.Actor) (Settings, apperrors.Error) {
	if actor == nil || actor.TokenID == "" {
		return Settings{}, ErrNoLogin
	}
	if !actor.IsAdmin {
		return Settings{}, ErrAdminRequired
	}
	return s.update(actor.TokenID, func(st *Settings) apperrors.Error {
		st.KioskLocked = true
		// codes are never shown on a kiosk
		st.ShowIDs = false
		return nil
	})
}

// Unlock leaves kiosk mode when exitCode matches.
func (s *Store) Unlock(actor *hbcommon.Actor, exitCode string) (Settings, apperrors.Error) {
	if actor == nil || actor.TokenID == "" {
		return Settings{}, ErrNoLogin
	}
	if !actor.IsAdmin {
		return Settings{}, ErrAdminRequired
	}
	if subtle.ConstantTimeCompare([]byte(exitCode), []byte(s.exitCode)) != 1 {
		return Settings{}, ErrWrongExitCode
	}
	return s.update(actor.TokenID, func(st *Settings) apperrors.Error {
		st.KioskLocked = false
		return nil
	})
}

// IsKioskLocked reports whether the actor's console is in kiosk mode.
func (s *Store) IsKioskLocked(actor *hbcommon.Actor) bool {
	return s.Get(actor).KioskLocked
}

func (s *Store) update(tokenID string, fn func(*Settings) apperrors.Error) (Settings, apperrors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	e := s.lookup(tokenID)
	if e == nil {
		e = &entry{expires: s.now().Add(s.ttl)}
		s.entries[tokenID] = e
	}
	next := e.Settings
	if err := fn(&next); err != nil {
		return e.Settings, err
	}
	e.Settings = next
	return next, nil
}

// lookup returns the live entry for tokenID. Callers hold mu.
func (s *Store) lookup(tokenID string) *entry {
	e, ok := s.entries[tokenID]
	if !ok {
		return nil
	}
	if s.now().After(e.expires) {
		delete(s.entries, tokenID)
		return nil
	}
	return e
}

// sweep drops expired entries. Callers hold mu.
func (s *Store) sweep() {
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
}

// Len returns the number of stored logins.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
