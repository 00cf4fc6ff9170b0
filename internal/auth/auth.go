// Package auth holds the storefront's session state: who is logged in, and
// whether that is still being checked against the backend.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

// LoginFailedMessage is shown for any login failure.
const LoginFailedMessage = "Invalid credentials or server error"

type Status int

const (
	StatusUnknown Status = iota
	StatusChecking
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// SessionAPI is the part of the backend session endpoints the state needs.
type SessionAPI interface {
	Current(ctx context.Context) (model.Session, error)
	Login(ctx context.Context, req model.LoginRequest) (model.Session, error)
	Logout(ctx context.Context) error
}

// Snapshot is a consistent copy of the state.
type Snapshot struct {
	Status          Status      `json:"-"`
	StatusName      string      `json:"status"`
	User            *model.User `json:"user"`
	Loading         bool        `json:"loading"`
	IsLoading       bool        `json:"isLoading"`
	Error           string      `json:"error,omitempty"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

type State struct {
	api    SessionAPI
	store  storage.Store
	logger *slog.Logger

	mu        sync.RWMutex
	checked   bool // a check has completed at least once
	user      *model.User
	loading   bool
	inflight  int // session checks running
	isLoading bool
	err       string
	settled   chan struct{} // closed when loading drops to false

	onLogout []func(ctx context.Context)
}

func New(api SessionAPI, store storage.Store, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	settled := make(chan struct{})
	close(settled)
	return &State{api: api, store: store, logger: logger, settled: settled}
}

// OnLogout registers fn to run after the local session has been cleared.
func (s *State) OnLogout(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Start restores the cached user as a hint and begins the mount-time session
// check in the background. Use Wait to block until it settles.
func (s *State) Start(ctx context.Context) {
	s.restore(ctx)
	s.beginCheck()
	go func() { _ = s.runCheck(ctx) }()
}

func (s *State) restore(ctx context.Context) {
	if s.store == nil {
		return
	}
	raw, ok, err := s.store.Get(ctx, storage.KeyAuthUser)
	if err != nil || !ok {
		return
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn("Ignoring unreadable cached user", "error", err)
		return
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

// Check asks the backend who is logged in. Any failure leaves the state
// anonymous; the error is returned for logging only.
func (s *State) Check(ctx context.Context) error {
	s.beginCheck()
	return s.runCheck(ctx)
}

func (s *State) beginCheck() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == 0 {
		s.settled = make(chan struct{})
	}
	s.inflight++
	s.loading = true
}

func (s *State) runCheck(ctx context.Context) error {
	sess, err := s.api.Current(ctx)
	if err == nil && sess.User == nil {
		err = errors.New("session has no user")
	}

	if err != nil {
		s.setUser(nil)
		s.forget(ctx)
		s.logger.Debug("Session check: anonymous", "error", err)
	} else {
		s.setUser(sess.User)
		s.persist(ctx, sess.User)
		s.logger.Debug("Session check: authenticated", "username", sess.User.Username)
	}

	s.mu.Lock()
	s.checked = true
	s.inflight--
	if s.inflight == 0 {
		s.loading = false
		close(s.settled)
	}
	s.mu.Unlock()
	return err
}

// Login authenticates, then re-runs the session check so identity always
// comes from the backend.
func (s *State) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isLoading = false
		s.mu.Unlock()
	}()

	if _, err := s.api.Login(ctx, model.LoginRequest{Username: username, Password: password}); err != nil {
		s.mu.Lock()
		s.err = LoginFailedMessage
		s.mu.Unlock()
		s.logger.Info("Login failed", "username", username, "error", err)
		return err
	}

	_ = s.Check(ctx)
	return nil
}

// Logout ends the session. The local session is cleared whatever the
// backend answered; its error is returned afterwards.
func (s *State) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	if err != nil {
		s.logger.Warn("Logout request failed", "error", err)
	}

	s.setUser(nil)
	s.forget(ctx)

	s.mu.RLock()
	hooks := append([]func(context.Context){}, s.onLogout...)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(ctx)
	}
	return err
}

func (s *State) setUser(u *model.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *State) persist(ctx context.Context, u *model.User) {
	if s.store == nil {
		return
	}
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, storage.KeyAuthUser, string(b)); err != nil {
		s.logger.Warn("Failed to cache user", "error", err)
	}
}

func (s *State) forget(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Remove(ctx, storage.KeyAuthUser); err != nil {
		s.logger.Warn("Failed to drop cached user", "error", err)
	}
}

// Wait blocks until no session check is in flight.
func (s *State) Wait(ctx context.Context) error {
	s.mu.RLock()
	ch := s.settled
	s.mu.RUnlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

func (s *State) statusLocked() Status {
	switch {
	case s.loading:
		return StatusChecking
	case !s.checked && s.user == nil:
		return StatusUnknown
	case s.user != nil:
		return StatusAuthenticated
	default:
		return StatusAnonymous
	}
}

func (s *State) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *State) IsAuthenticated() bool { return s.User() != nil }

// Loading reports whether a session check is in flight.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// IsLoading reports whether a login is in flight.
func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

func (s *State) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.statusLocked()
	return Snapshot{
		Status:          st,
		StatusName:      st.String(),
		User:            s.user,
		Loading:         s.loading,
		IsLoading:       s.isLoading,
		Error:           s.err,
		IsAuthenticated: s.user != nil,
	}
}
