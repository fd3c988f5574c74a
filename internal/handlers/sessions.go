package handlers

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vancomm/sweeper/internal/round"
)

var ErrSessionNotFound = errors.New("round session not found")

// session owns one controller. Every access goes through mu, and the round
// clock is advanced by the wall time since the previous access.
type session struct {
	mu       sync.Mutex
	id       uuid.UUID
	c        *round.Controller
	lastSeen time.Time
	recorded bool
}

type Sessions struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	newRand  func() *rand.Rand
	now      func() time.Time
}

func NewSessions(newRand func() *rand.Rand) *Sessions {
	return &Sessions{
		sessions: make(map[uuid.UUID]*session),
		newRand:  newRand,
		now:      time.Now,
	}
}

// Create starts a session in mode. A zero size starts at the mode's initial
// size.
func (s *Sessions) Create(mode round.Mode, size int) (uuid.UUID, error) {
	c, err := round.New(mode, s.newRand())
	if err != nil {
		return uuid.Nil, err
	}
	if size != 0 && size != c.Size() {
		if err := c.StartRound(size); err != nil {
			return uuid.Nil, err
		}
	}
	sess := &session{id: uuid.New(), c: c, lastSeen: s.now()}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess.id, nil
}

// With runs f on the session's controller while holding its lock.
func (s *Sessions) With(id uuid.UUID, f func(sess *session) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	now := s.now()
	sess.c.Tick(now.Sub(sess.lastSeen).Seconds())
	sess.lastSeen = now
	return f(sess)
}

func (s *Sessions) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (s *Sessions) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
