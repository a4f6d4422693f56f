package storage

import (
	"context"
	"sync"
	"time"
)

// PendingQuestion is a question sent to a chat and still awaiting an answer.
type PendingQuestion struct {
	QuestionID int
	Subject    string
	Topic      string
	FocusTopic string // topic chosen by the user, empty when picked adaptively
	SentAt     time.Time
}

// PendingStorage keeps the question each chat user is currently answering.
type PendingStorage struct {
	mu      sync.RWMutex
	pending map[int64]PendingQuestion
	ttl     time.Duration
}

// NewPendingStorage creates a new PendingStorage. Questions older than ttl are
// dropped by EvictExpired.
func NewPendingStorage(ttl time.Duration) *PendingStorage {
	return &PendingStorage{
		pending: make(map[int64]PendingQuestion),
		ttl:     ttl,
	}
}

// Store replaces the pending question of a user.
func (s *PendingStorage) Store(userID int64, q PendingQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = q
}

// Get returns the pending question of a user.
func (s *PendingStorage) Get(userID int64) (PendingQuestion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.pending[userID]
	return q, ok
}

// Take returns and removes the pending question of a user.
func (s *PendingStorage) Take(userID int64) (PendingQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.pending[userID]
	if ok {
		delete(s.pending, userID)
	}
	return q, ok
}

// EvictExpired drops questions sent more than ttl ago.
func (s *PendingStorage) EvictExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, q := range s.pending {
		if now.Sub(q.SentAt) > s.ttl {
			delete(s.pending, id)
			n++
		}
	}
	return n, nil
}
