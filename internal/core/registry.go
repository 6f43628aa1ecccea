package core

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry maps session tokens to live sessions. All methods are safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	nextSeq  uint64
	log      *zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		log:      logger,
	}
}

// Add inserts or replaces the session stored under token.
// Uniqueness of user ids is not enforced.
func (r *Registry) Add(token string, s *Session) {
	r.mu.Lock()
	total := r.insertLocked(token, s)
	r.mu.Unlock()
	r.logAdded(s, total)
}

// AddIfAbsent inserts s under token unless the token is already taken.
func (r *Registry) AddIfAbsent(token string, s *Session) bool {
	r.mu.Lock()
	if _, taken := r.sessions[token]; taken {
		r.mu.Unlock()
		return false
	}
	total := r.insertLocked(token, s)
	r.mu.Unlock()
	r.logAdded(s, total)
	return true
}

func (r *Registry) insertLocked(token string, s *Session) int {
	r.nextSeq++
	s.seq = r.nextSeq
	r.sessions[token] = s
	return len(r.sessions)
}

func (r *Registry) logAdded(s *Session, total int) {
	r.log.Info().
		Int32("user_id", s.UserID).
		Str("username", s.Username).
		Int("total", total).
		Msg("session added")
}

// Get returns the session for token.
func (r *Registry) Get(token string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	return s, ok
}

// Remove deletes the session for token. Removing an unknown token is a no-op.
func (r *Registry) Remove(token string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[token]
	if ok {
		delete(r.sessions, token)
	}
	total := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.log.Info().
			Int32("user_id", s.UserID).
			Str("username", s.Username).
			Int("total", total).
			Msg("session removed")
	}
	return s, ok
}

// All returns a point-in-time copy of the registry keyed by token.
func (r *Registry) All() map[string]*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Session, len(r.sessions))
	for token, s := range r.sessions {
		out[token] = s
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// UpdateState replaces the live state of the session stored under token.
func (r *Registry) UpdateState(token string, st LiveState) bool {
	s, ok := r.Get(token)
	if !ok {
		return false
	}
	s.setState(st)
	return true
}

// Sessions returns a snapshot ordered by registration.
func (r *Registry) Sessions() []*Session {
	all := r.All()
	out := make([]*Session, 0, len(all))
	for _, s := range all {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Others returns the ordered snapshot minus every session owned by userID.
func (r *Registry) Others(userID int32) []*Session {
	all := r.Sessions()
	out := all[:0]
	for _, s := range all {
		if s.UserID != userID {
			out = append(out, s)
		}
	}
	return out
}

// FindByUserID returns the earliest registered session of userID.
func (r *Registry) FindByUserID(userID int32) (*Session, bool) {
	for _, s := range r.Sessions() {
		if s.UserID == userID {
			return s, true
		}
	}
	return nil, false
}
