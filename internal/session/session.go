// Package session owns the active-profile state and the confirmation gate.
// Every identity-scoped operation goes through a Session handle; there is no
// package-level state.
package session

import (
	"sync"

	"github.com/shopctl/shopctl/internal/logger"
	"github.com/shopctl/shopctl/internal/profile"
)

// Session is the process-wide profile state: which profile is active, its
// cookies, and whether the caller has confirmed the identity. All access is
// guarded by the internal mutex, so a confirm/switch pair can never
// interleave into a wrong-profile-confirmed state.
type Session struct {
	store *profile.Store

	mu        sync.Mutex
	active    string
	cookies   []profile.Cookie
	confirmed bool

	// opMu serializes whole operations: one browser lifecycle at a time.
	opMu sync.Mutex
}

// New creates a session with the default profile active and unconfirmed.
// Cookies are loaded lazily; a missing default profile is not an error
// until an operation actually needs credentials.
func New(store *profile.Store) *Session {
	s := &Session{
		store:  store,
		active: profile.DefaultProfile,
	}
	if cookies, err := store.Load(profile.DefaultProfile); err == nil {
		s.cookies = cookies
	} else {
		logger.Debug("default profile not loaded at startup", "error", err)
	}
	return s
}

// AcquireOp takes the operation lock. Release with the returned func.
// Operations hold it across their entire browser lifecycle so two tool
// invocations cannot share or interleave a browser session; Switch and
// Confirm take the same lock, so an identity change waits out any
// operation already in flight.
func (s *Session) AcquireOp() func() {
	s.opMu.Lock()
	return s.opMu.Unlock
}

// Active returns the active profile name.
func (s *Session) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Confirmed reports whether the active profile has been confirmed.
func (s *Session) Confirmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed
}

// Cookies returns a copy of the active profile's cookie set.
func (s *Session) Cookies() []profile.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]profile.Cookie, len(s.cookies))
	copy(out, s.cookies)
	return out
}

// Domain returns the active profile's derived marketplace domain.
func (s *Session) Domain() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeriveDomain(s.cookies)
}

// Store exposes the underlying credential store.
func (s *Session) Store() *profile.Store {
	return s.store
}

// Switch activates the named profile. On success the confirmed flag is
// always cleared, so confirmation never survives an identity change. On
// any failure the active profile and flag are untouched. Switch waits for
// a running operation to finish; a browser session never changes identity
// mid-flight.
func (s *Session) Switch(name string) error {
	release := s.AcquireOp()
	defer release()

	cookies, err := s.load(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.apply(name, cookies, false)
	s.mu.Unlock()

	logger.Info("switched profile", "profile", name, "cookies", len(cookies))
	return nil
}

// Confirm marks the active profile as confirmed. If name is non-empty and
// differs from the active profile, the switch-and-confirm is applied as
// one state change; a failed load is returned unchanged and the flag
// stays unset. Confirming an already-confirmed session is a no-op.
// Like Switch, Confirm waits for a running operation.
func (s *Session) Confirm(name string) error {
	release := s.AcquireOp()
	defer release()

	s.mu.Lock()
	if name == "" || name == s.active {
		s.confirmed = true
		active := s.active
		s.mu.Unlock()
		logger.Debug("session confirmed", "profile", active)
		return nil
	}
	s.mu.Unlock()

	cookies, err := s.load(name)
	if err != nil {
		return err
	}

	// One critical section for the switch and the flag, so no concurrent
	// state change can land between them and be confirmed by mistake.
	s.mu.Lock()
	s.apply(name, cookies, true)
	s.mu.Unlock()

	logger.Info("switched and confirmed profile", "profile", name, "cookies", len(cookies))
	return nil
}

// load validates the name and reads the profile's cookies. Called outside
// the state mutex; disk access never blocks readers.
func (s *Session) load(name string) ([]profile.Cookie, error) {
	if err := profile.ValidateName(name); err != nil {
		return nil, err
	}
	return s.store.Load(name)
}

// apply sets the whole session state. Callers hold mu.
func (s *Session) apply(name string, cookies []profile.Cookie, confirmed bool) {
	s.active = name
	s.cookies = cookies
	s.confirmed = confirmed
}

// RequireConfirmation is the gate consumed by identity-scoped operations.
// It returns nil when the session is confirmed; otherwise it returns the
// prompt the caller should present before retrying.
func (s *Session) RequireConfirmation() *ConfirmationPrompt {
	s.mu.Lock()
	confirmed := s.confirmed
	active := s.active
	s.mu.Unlock()

	if confirmed {
		return nil
	}
	return newConfirmationPrompt(active, s.store.Names())
}
