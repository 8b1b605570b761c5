package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session is one viewer's interaction state: the selected year and the
// countries picked for comparison.
type Session struct {
	ID             string    `json:"id"`
	DatasetVersion string    `json:"dataset_version"`
	Year           int       `json:"year"`
	Selected       []string  `json:"selected"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SessionStore persists sessions. Update applies fn atomically with respect
// to other updates of the same session.
type SessionStore interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
}

// MemoryStore keeps sessions in process memory with a sliding TTL. Expired
// sessions are reclaimed by a sweep that runs on write at most once per TTL.
type MemoryStore struct {
	ttl       time.Duration
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	nextSweep time.Time
}

type memoryEntry struct {
	session Session
	expires time.Time
}

// NewMemoryStore creates a store whose sessions expire ttl after their last
// write. A ttl of zero or less never expires.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Create(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(s)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.lookup(id)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.lookup(id)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if err := fn(&s); err != nil {
		return Session{}, err
	}
	m.put(s)
	return s, nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := domain.Now()
	n := 0
	for _, e := range m.sessions {
		if !m.expired(e, now) {
			n++
		}
	}
	return n
}

// lookup returns a copy so callers cannot alias the stored selection.
func (m *MemoryStore) lookup(id string) (Session, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	if m.expired(e, domain.Now()) {
		delete(m.sessions, id)
		return Session{}, false
	}
	s := e.session
	s.Selected = slices.Clone(s.Selected)
	return s, true
}

func (m *MemoryStore) put(s Session) {
	s.Selected = slices.Clone(s.Selected)
	var expires time.Time
	if m.ttl > 0 {
		now := domain.Now()
		expires = now.Add(m.ttl)
		if !now.Before(m.nextSweep) {
			m.sweep(now)
			m.nextSweep = now.Add(m.ttl)
		}
	}
	m.sessions[s.ID] = memoryEntry{session: s, expires: expires}
}

func (m *MemoryStore) sweep(now time.Time) {
	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)
		}
	}
}

func (m *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}
