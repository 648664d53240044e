// Package session holds the process-wide authentication state.
//
// A Store has a single writer (its own lifecycle methods) and any number of
// readers. Readers either take a Snapshot or Subscribe to transitions; nothing
// outside this package mutates the state.
package session

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/nvms/internal/api"
	"github.com/felixgeelhaar/nvms/internal/errors"
	"github.com/felixgeelhaar/nvms/internal/log"
	"github.com/felixgeelhaar/nvms/internal/tokenstore"
)

// State is the lifecycle position of a session.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// Snapshot is an immutable view of the session.
type Snapshot struct {
	State           State
	User            *api.UserProfile
	IsLoading       bool
	IsAuthenticated bool
	IsAdmin         bool
}

// Client is the part of the API client the session drives.
type Client interface {
	HasToken() bool
	Me(ctx context.Context) (*api.UserProfile, error)
	Login(ctx context.Context, username, password string) (tokenstore.TokenPair, error)
	Logout()
}

// Listener receives every snapshot produced by a transition.
type Listener func(Snapshot)

// Store owns the session state.
type Store struct {
	client Client
	logger *log.Logger

	mu        sync.RWMutex
	state     State
	user      *api.UserProfile
	listeners map[int]Listener
	nextID    int
}

// NewStore creates an uninitialized session bound to client.
func NewStore(client Client, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Store{
		client:    client,
		logger:    logger.WithGroup("session"),
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for future transitions and returns a function that
// removes it. Listeners run synchronously on the writer's goroutine.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Mount initializes the session. Without a stored token it goes straight to
// anonymous; otherwise it validates the token by fetching the profile.
//
// A failed fetch leaves the stored token in place.
func (s *Store) Mount(ctx context.Context) Snapshot {
	if !s.client.HasToken() {
		return s.transition(StateAnonymous, nil)
	}

	s.transition(StateLoading, nil)

	user, err := s.client.Me(ctx)
	if err != nil {
		s.logger.Warn("stored token rejected", "error", err.Error())
		return s.transition(StateAnonymous, nil)
	}
	return s.transition(StateAuthenticated, user)
}

// Login authenticates, then fetches the profile. On failure the state is left
// as it was and the error is returned.
func (s *Store) Login(ctx context.Context, username, password string) error {
	if _, err := s.client.Login(ctx, username, password); err != nil {
		return err
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSessionProfile, "logged in but failed to load the user profile", err)
	}

	s.transition(StateAuthenticated, user)
	s.logger.Info("session started", "username", user.Username)
	return nil
}

// Logout clears credentials and becomes anonymous without waiting on the network.
func (s *Store) Logout() {
	s.client.Logout()
	s.transition(StateAnonymous, nil)
}

// RefreshUser re-fetches the profile. It never passes through loading; a
// failure makes the session anonymous.
func (s *Store) RefreshUser(ctx context.Context) error {
	user, err := s.client.Me(ctx)
	if err != nil {
		s.transition(StateAnonymous, nil)
		return errors.Wrap(errors.ErrCodeSessionProfile, "failed to refresh the user profile", err)
	}
	s.transition(StateAuthenticated, user)
	return nil
}

// HasAnyGroup reports whether the current user belongs to at least one of groups.
func (s *Store) HasAnyGroup(groups ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return false
	}
	for _, g := range groups {
		if s.user.InGroup(g) {
			return true
		}
	}
	return false
}

// Groups returns a copy of the current user's group names.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	return append([]string(nil), s.user.GroupNames...)
}

func (s *Store) transition(state State, user *api.UserProfile) Snapshot {
	s.mu.Lock()
	s.state = state
	s.user = user
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	s.logger.Debug("session transition", "state", state.String())
	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		State:           s.state,
		User:            s.user,
		IsLoading:       s.state == StateLoading,
		IsAuthenticated: s.user != nil,
		IsAdmin:         s.user != nil && s.user.IsAdmin,
	}
}
