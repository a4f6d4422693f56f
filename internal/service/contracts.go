package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

// QuestionBank is the read-only question catalogue.
type QuestionBank interface {
	Subjects() []string
	Topics(subject string) ([]string, bool)
	Catalog() map[string][]string
	Questions(subject, topic string) []entities.Question
	GetByID(id int) (entities.Question, bool)
	SubjectsForTopic(topic string) []string
}

// LearnerStore owns learner state keyed by session id.
// Missing sessions are created on first access.
type LearnerStore interface {
	// Update runs fn under the learner's exclusive lock and keeps its changes when fn returns nil.
	// Stores without a lock return ErrConcurrentUpdate when the learner keeps changing.
	Update(ctx context.Context, sessionID string, fn func(l *entities.Learner) error) error
	// View runs fn on a read-only copy of the learner.
	View(ctx context.Context, sessionID string, fn func(l *entities.Learner) error) error
	// EvictExpired drops learners idle longer than the store TTL and returns how many were removed.
	EvictExpired(ctx context.Context, now time.Time) (int, error)
}

// AttemptJournal keeps an audit trail of recorded attempts.
type AttemptJournal interface {
	Record(ctx context.Context, sessionID string, rec entities.AttemptRecord, progress entities.TopicProgress) error
}

// Transactor runs fn inside a database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}
