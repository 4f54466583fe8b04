// Package session holds the process-wide authenticated-user state. It is
// one of only two pieces of state shared across views (the other being the
// chat transcript); everything else stays local to its owning component.
package session

import "sync"

// User is the authenticated identity carried in global client state.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Store is the single shared session container. All mutation goes through
// the typed actions SetUser and Clear; readers get copies.
type Store struct {
	mu   sync.RWMutex
	user *User
	subs []func()
}

func NewStore() *Store {
	return &Store{}
}

// Current returns a copy of the signed-in user, or ok=false when anonymous.
func (s *Store) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsOwn reports whether username belongs to the signed-in user. Drives the
// own-profile vs visitor rendering split.
func (s *Store) IsOwn(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Username == username
}

func (s *Store) SetUser(u User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers a callback fired after every session change, so
// dependent views can re-render conditionally.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}
