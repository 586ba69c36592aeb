package session

import "sync"

// Store holds the current Session. It is a plain holder: it does not validate,
// persist or expire anything.
type Store struct {
	mu  sync.RWMutex
	cur Session
}

func NewStore() *Store { return &Store{} }

// Set replaces the whole session.
func (s *Store) Set(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = snapshot(sess)
}

// Clear resets the store to the absent session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Session{}
}

// Get returns a snapshot that later mutations do not affect.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.cur)
}

func snapshot(sess Session) Session {
	if !sess.Present() {
		return Session{}
	}
	u := sess.user.clone()
	return Session{token: sess.token, user: &u}
}
