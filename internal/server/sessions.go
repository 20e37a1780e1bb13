package server

import (
	"sync"
	"time"

	mdview "github.com/alnah/go-mdview"
	"github.com/google/uuid"
)

// Session store defaults.
const (
	DefaultSessionTTL  = time.Hour
	DefaultMaxSessions = 64
)

type sessionEntry struct {
	session  *mdview.Session
	lastSeen time.Time
}

// sessionStore keeps sessions in memory. Idle sessions expire after ttl and
// the least recently seen session is evicted when max is reached.
type sessionStore struct {
	mu      sync.Mutex
	viewer  *mdview.Viewer
	ttl     time.Duration
	max     int
	entries map[string]*sessionEntry
	now     func() time.Time
}

func newSessionStore(v *mdview.Viewer, ttl time.Duration, max int) *sessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &sessionStore{
		viewer:  v,
		ttl:     ttl,
		max:     max,
		entries: make(map[string]*sessionEntry),
		now:     time.Now,
	}
}

// get returns the live session for id and marks it as seen.
func (s *sessionStore) get(id string) (*mdview.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.ttl {
		s.dropLocked(id)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

// create starts a new session, making room first when the store is full.
func (s *sessionStore) create() (string, *mdview.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	for len(s.entries) >= s.max {
		s.evictOldestLocked()
	}

	id := uuid.NewString()
	sess := s.viewer.NewSession()
	s.entries[id] = &sessionEntry{session: sess, lastSeen: s.now()}
	return id, sess
}

// len returns the number of stored sessions, expired ones included.
func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweep drops expired sessions.
func (s *sessionStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
}

func (s *sessionStore) sweepLocked() {
	now := s.now()
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			s.dropLocked(id)
		}
	}
}

func (s *sessionStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.entries {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		s.dropLocked(oldestID)
	}
}

func (s *sessionStore) dropLocked(id string) {
	if e, ok := s.entries[id]; ok {
		_ = e.session.Close()
		delete(s.entries, id)
	}
}

// closeAll drops every session.
func (s *sessionStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.entries {
		s.dropLocked(id)
	}
}
