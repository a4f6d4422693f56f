package storage

import (
	"context"
	"sync"
	"time"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

type learnerEntry struct {
	mu       sync.Mutex
	learner  *entities.Learner
	lastSeen time.Time
	evicted  bool // set under mu when the entry leaves the map
}

// LearnerStorage keeps learners in memory with one lock per learner.
type LearnerStorage struct {
	mu         sync.RWMutex
	learners   map[string]*learnerEntry
	ttl        time.Duration
	newLearner entities.LearnerFactory
	now        func() time.Time
}

// NewLearnerStorage creates a new LearnerStorage. Learners idle longer than ttl are
// dropped by EvictExpired.
func NewLearnerStorage(ttl time.Duration, newLearner entities.LearnerFactory) *LearnerStorage {
	return &LearnerStorage{
		learners:   make(map[string]*learnerEntry),
		ttl:        ttl,
		newLearner: newLearner,
		now:        time.Now,
	}
}

// Update runs fn on a copy of the learner and stores the copy when fn succeeds.
func (s *LearnerStorage) Update(ctx context.Context, sessionID string, fn func(l *entities.Learner) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := s.acquire(sessionID)
	defer e.mu.Unlock()

	draft := e.learner.Clone()
	if err := fn(draft); err != nil {
		return err
	}

	e.learner = draft
	e.lastSeen = s.now()

	return nil
}

// View runs fn on a copy of the learner. Changes made by fn are discarded.
func (s *LearnerStorage) View(ctx context.Context, sessionID string, fn func(l *entities.Learner) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := s.acquire(sessionID)
	snapshot := e.learner.Clone()
	e.lastSeen = s.now()
	e.mu.Unlock()

	return fn(snapshot)
}

// EvictExpired removes learners not touched for longer than the TTL.
func (s *LearnerStorage) EvictExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, e := range s.learners {
		e.mu.Lock()
		if now.Sub(e.lastSeen) > s.ttl {
			e.evicted = true
			delete(s.learners, id)
			evicted++
		}
		e.mu.Unlock()
	}

	return evicted, nil
}

// Len returns the number of learners held.
func (s *LearnerStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.learners)
}

// Close is a no-op kept for parity with networked stores.
func (s *LearnerStorage) Close() error {
	return nil
}

// acquire returns the locked entry of a session, creating it when missing.
func (s *LearnerStorage) acquire(sessionID string) *learnerEntry {
	for {
		s.mu.RLock()
		e, ok := s.learners[sessionID]
		s.mu.RUnlock()

		if !ok {
			s.mu.Lock()
			if e, ok = s.learners[sessionID]; !ok {
				now := s.now()
				e = &learnerEntry{learner: s.newLearner(sessionID, now), lastSeen: now}
				s.learners[sessionID] = e
			}
			s.mu.Unlock()
		}

		e.mu.Lock()
		if !e.evicted {
			return e
		}
		// Evicted between lookup and lock, retry with a fresh entry.
		e.mu.Unlock()
	}
}
