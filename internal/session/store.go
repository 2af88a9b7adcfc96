package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cantina/internal/monitoring"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

// Store holds live sessions in memory and expires idle ones.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	log         *zap.Logger
	metrics     *monitoring.MetricsCollector
}

// NewStore creates a store. A zero idleTimeout disables expiry; metrics may
// be nil.
func NewStore(idleTimeout time.Duration, log *zap.Logger, metrics *monitoring.MetricsCollector) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		log:         log,
		metrics:     metrics,
	}
}

// Create starts a new conversation with an empty order.
func (st *Store) Create() *Session {
	s := newSession(uuid.NewString(), time.Now())

	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()

	st.reportActive(n)
	st.log.Debug("Session created", zap.String("session_id", s.ID))
	return s
}

// Get returns the session with the given ID.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete ends a conversation.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	if _, ok := st.sessions[id]; !ok {
		st.mu.Unlock()
		return ErrNotFound
	}
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	st.reportActive(n)
	st.log.Debug("Session deleted", zap.String("session_id", id))
	return nil
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Expire removes sessions idle for longer than the idle timeout at now and
// returns how many were removed.
func (st *Store) Expire(now time.Time) int {
	if st.idleTimeout <= 0 {
		return 0
	}

	st.mu.Lock()
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.LastSeen()) > st.idleTimeout {
			delete(st.sessions, id)
			removed++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	if removed > 0 {
		st.reportActive(n)
		st.log.Info("Expired idle sessions", zap.Int("expired", removed), zap.Int("active", n))
	}
	return removed
}

// Run expires idle sessions every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			st.Expire(now)
		}
	}
}

func (st *Store) reportActive(n int) {
	if st.metrics != nil {
		st.metrics.SetActiveSessions(n)
	}
}
