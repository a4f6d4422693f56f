package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
	"github.com/aliskhannn/adaptive-quiz/internal/infra/postgres"
)

// AttemptRepository writes the practice journal.
type AttemptRepository struct {
	db postgres.DBTX
}

// NewAttemptRepository creates a new AttemptRepository on a pool or a transaction.
func NewAttemptRepository(db postgres.DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Insert appends one attempt to practice_attempts.
func (r *AttemptRepository) Insert(ctx context.Context, sessionID string, rec entities.AttemptRecord) error {
	query := `
		INSERT INTO practice_attempts (
			session_id, subject, topic, question_id, correct, mastery_after, answered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var questionID *int
	if rec.QuestionID != 0 {
		questionID = &rec.QuestionID
	}

	_, err := r.db.Exec(
		ctx,
		query,
		sessionID,
		rec.Subject,
		rec.Topic,
		questionID,
		rec.Correct,
		rec.MasteryAfter,
		rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	return nil
}

// UpsertSnapshot stores the latest progress of a topic.
func (r *AttemptRepository) UpsertSnapshot(
	ctx context.Context,
	sessionID, subject, topic string,
	progress entities.TopicProgress,
	updatedAt time.Time,
) error {
	query := `
		INSERT INTO topic_mastery_snapshots (
			session_id, subject, topic, mastery, attempts, correct_attempts, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, subject, topic) DO UPDATE SET
			mastery = EXCLUDED.mastery,
			attempts = EXCLUDED.attempts,
			correct_attempts = EXCLUDED.correct_attempts,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(
		ctx,
		query,
		sessionID,
		subject,
		topic,
		progress.Mastery,
		progress.Attempts,
		progress.CorrectAttempts,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert mastery snapshot: %w", err)
	}

	return nil
}
