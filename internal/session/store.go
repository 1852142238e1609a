// Package session holds the process-wide identity of the signed-in user.
package session

import (
	"sync"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
)

// Store mirrors the auth provider's change notifications. It is written by the
// provider callback and UpdateIdentityOverride and read by everything else.
type Store struct {
	provider domain.AuthProvider
	logger   *logger.Logger

	mu          sync.RWMutex
	identity    *domain.Identity
	loading     bool
	subscribed  bool
	closed      bool
	unsubscribe func()

	ready     chan struct{}
	readyOnce sync.Once
}

func NewStore(provider domain.AuthProvider, log *logger.Logger) *Store {
	return &Store{
		provider: provider,
		logger:   log,
		loading:  true,
		ready:    make(chan struct{}),
	}
}

// Subscribe registers with the provider once. Later calls are no-ops.
func (s *Store) Subscribe() error {
	s.mu.Lock()
	if s.subscribed || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.subscribed = true
	s.mu.Unlock()

	unsubscribe, err := s.provider.OnAuthStateChanged(s.handle)
	if err != nil {
		s.mu.Lock()
		s.subscribed = false
		s.mu.Unlock()
		s.logger.Error("Store.Subscribe: failed to register with auth provider", "error", err.Error())
		return domain.RemoteCallFailure("subscribe to auth state", err)
	}

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	closed := s.closed
	s.mu.Unlock()
	if closed {
		unsubscribe()
	}
	s.logger.Info("Store.Subscribe: listening for auth state changes")
	return nil
}

func (s *Store) handle(sess *domain.Session) {
	id := sess.Identity()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.identity = id
	s.loading = false
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })

	if id == nil {
		s.logger.Debug("Store.handle: signed out")
		return
	}
	s.logger.Debug("Store.handle: signed in", "uid", id.UID)
}

// UpdateIdentityOverride replaces the identity locally, without waiting for
// the provider. Used right after registration to show the new display name.
func (s *Store) UpdateIdentityOverride(id *domain.Identity) {
	s.mu.Lock()
	s.identity = copyIdentity(id)
	s.mu.Unlock()
}

// Identity returns a copy of the current identity, or nil when signed out.
func (s *Store) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIdentity(s.identity)
}

// Loading is true until the first provider notification arrives.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Signed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Ready is closed once the first notification has been applied.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func copyIdentity(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	c := &domain.Identity{UID: id.UID}
	if id.Name != nil {
		name := *id.Name
		c.Name = &name
	}
	if id.Email != nil {
		email := *id.Email
		c.Email = &email
	}
	return c
}
