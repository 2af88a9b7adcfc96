// Package session keeps one order ledger and chat history per conversation.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"cantina/internal/ledger"
)

// Exchange is one utterance and the reply it produced.
type Exchange struct {
	At        time.Time `json:"at"`
	Utterance string    `json:"utterance"`
	Intent    string    `json:"intent"`
	Reply     string    `json:"reply"`
}

// Session is a single conversation. Utterances for one session are
// processed one at a time: callers hold the session lock while they read or
// mutate the ledger and history.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	ledger   *ledger.Ledger
	history  []Exchange
	lastSeen atomic.Int64
}

func newSession(id string, now time.Time) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: now,
		ledger:    ledger.New(),
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Lock serialises access to the session state.
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session and marks it as recently used.
func (s *Session) Unlock() {
	s.touch(time.Now())
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen is when the session was last unlocked.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Ledger returns the session's order. The caller must hold the lock.
func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

// Record appends an exchange to the history. The caller must hold the lock.
func (s *Session) Record(ex Exchange) {
	s.history = append(s.history, ex)
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Lines     []ledger.Line `json:"lines"`
	Summary   string        `json:"summary"`
	Total     string        `json:"total"`
	History   []Exchange    `json:"history"`
}

// Snapshot copies the session state under its lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]Exchange, len(s.history))
	copy(history, s.history)
	return Snapshot{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Lines:     s.ledger.Lines(),
		Summary:   s.ledger.Summary(),
		Total:     s.ledger.Total().StringFixed(2),
		History:   history,
	}
}
