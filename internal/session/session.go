// Package session tracks concurrent agent sessions: their chosen intent
// and lifecycle, reaping sessions idle past a timeout.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/agentflow/intentguard/internal/domain"
)

// DefaultIdleTimeout is how long a session may go without activity before
// the reaper destroys it.
const DefaultIdleTimeout = 5 * time.Minute

// DefaultReapInterval is how often the reaper sweeps for idle sessions.
const DefaultReapInterval = 30 * time.Second

// Registry tracks in-flight sessions.
type Registry struct {
	log         zerolog.Logger
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*domain.Session

	wg     conc.WaitGroup
	stopCh chan struct{}
}

// New creates a Registry. idleTimeout <= 0 uses DefaultIdleTimeout.
func New(log zerolog.Logger, idleTimeout time.Duration) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		log:         log.With().Str("component", "session").Logger(),
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*domain.Session),
		stopCh:      make(chan struct{}),
	}
}

// Create starts a new session and returns it. Called on first tool call
// from a given agent.
func (r *Registry) Create(modelID, conversationID string) *domain.Session {
	now := time.Now()
	s := &domain.Session{
		ID:             uuid.New().String(),
		ModelID:        modelID,
		ConversationID: conversationID,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get returns the session by id, or ErrSessionNotFound.
func (r *Registry) Get(id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Touch refreshes a session's last-activity timestamp, resetting its idle
// clock.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.LastActivityAt = time.Now()
	}
}

// SetIntent records the session's chosen intent.
func (r *Registry) SetIntent(id, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.IntentID = intentID
	return nil
}

// Destroy removes a session immediately.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// All returns a snapshot of every tracked session.
func (r *Registry) All() []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// StartReaper launches the background goroutine that destroys sessions
// idle longer than the registry's idleTimeout. Stop must be called to
// terminate it.
func (r *Registry) StartReaper() {
	r.wg.Go(func() {
		ticker := time.NewTicker(DefaultReapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.reapOnce()
			}
		}
	})
}

func (r *Registry) reapOnce() {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if now.Sub(s.LastActivityAt) > r.idleTimeout {
			r.log.Info().Str("session_id", id).Msg("reaping idle session")
			delete(r.sessions, id)
		}
	}
}

// Stop terminates the reaper goroutine and waits for it to exit.
func (r *Registry) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}
