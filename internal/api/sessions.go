package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/faqdesk/internal/session"
	"github.com/dgallion1/faqdesk/internal/workspace"
)

// editSession is one open editor: a loaded document and the session
// state over it. mu serializes every operation on it, including save.
type editSession struct {
	mu     sync.Mutex
	id     string
	loaded *workspace.Loaded
	sess   *session.Session
}

type sessionEntry struct {
	es      *editSession
	touched time.Time
}

// sessionStore is the in-memory registry of edit sessions. Sessions
// idle for longer than ttl are evicted; a zero ttl keeps them forever.
type sessionStore struct {
	mu    sync.Mutex
	items map[string]*sessionEntry
	ttl   time.Duration
	now   func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		items: make(map[string]*sessionEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *sessionStore) add(l *workspace.Loaded) *editSession {
	es := &editSession{
		id:     uuid.NewString(),
		loaded: l,
		sess:   session.New(l.Doc),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
	s.items[es.id] = &sessionEntry{es: es, touched: s.now()}
	return es
}

// get returns the session and marks it used, or nil when it does not
// exist or has expired.
func (s *sessionStore) get(id string) *editSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return nil
	}
	if s.expired(e) {
		delete(s.items, id)
		return nil
	}
	e.touched = s.now()
	return e.es
}

func (s *sessionStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *sessionStore) cleanupLocked() {
	for id, e := range s.items {
		if s.expired(e) {
			delete(s.items, id)
		}
	}
}

func (s *sessionStore) expired(e *sessionEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.touched) > s.ttl
}
