package auth

import (
	"sync"

	"classroom/models"

	"go.uber.org/zap"
)

// Subscriber observes session transitions. old and new are the identities
// before and after the transition; either may be nil.
type Subscriber func(old, new *models.Identity)

// SessionManager holds the single current identity for this client instance
// and fans transitions out to subscribers. It performs no authentication
// itself; providers hand verified identities to Install and nothing else
// mutates the session.
type SessionManager struct {
	// installMu serializes installs and clears end to end so that
	// notifications are delivered in installation order, exactly once per
	// actual transition, before the caller proceeds.
	installMu sync.Mutex

	mu      sync.RWMutex
	current *models.Identity
	subs    map[int]Subscriber
	nextID  int

	logger *zap.Logger
}

// NewSessionManager returns an empty (signed-out) session manager.
func NewSessionManager(logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		subs:   make(map[int]Subscriber),
		logger: logger,
	}
}

// Current returns the installed identity, or nil when signed out.
func (m *SessionManager) Current() *models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe registers fn for session transitions and returns its
// unsubscribe handle. Unsubscribing twice is harmless.
func (m *SessionManager) Subscribe(fn Subscriber) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Install makes identity the current session. Installing the same identity
// id again refreshes the stored fields without counting as a transition.
func (m *SessionManager) Install(identity *models.Identity) {
	if identity == nil {
		m.Clear()
		return
	}
	m.installMu.Lock()
	defer m.installMu.Unlock()

	m.mu.Lock()
	old := m.current
	m.current = identity
	if old != nil && identity != nil && old.ID == identity.ID {
		m.mu.Unlock()
		return
	}
	subs := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("Session installed",
		zap.String("uid", identity.ID),
		zap.String("provider", string(identity.Provider)))
	for _, fn := range subs {
		fn(old, identity)
	}
}

// Clear signs the session out. A no-op when already signed out.
func (m *SessionManager) Clear() {
	m.installMu.Lock()
	defer m.installMu.Unlock()

	m.mu.Lock()
	old := m.current
	if old == nil {
		m.mu.Unlock()
		return
	}
	m.current = nil
	subs := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("Session cleared", zap.String("uid", old.ID))
	for _, fn := range subs {
		fn(old, nil)
	}
}

// snapshotLocked copies the subscriber list in registration order so the
// fan-out can run outside the state lock. Callers must hold mu.
func (m *SessionManager) snapshotLocked() []Subscriber {
	subs := make([]Subscriber, 0, len(m.subs))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}
