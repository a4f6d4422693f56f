package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
	"github.com/aliskhannn/adaptive-quiz/internal/infra/postgres/repository"
)

// JournalService writes recorded attempts to the database.
type JournalService struct {
	tr Transactor
}

// NewJournalService creates a new JournalService.
func NewJournalService(tr Transactor) *JournalService {
	return &JournalService{tr: tr}
}

// Record stores the attempt and the resulting topic snapshot in one transaction.
func (s *JournalService) Record(
	ctx context.Context,
	sessionID string,
	rec entities.AttemptRecord,
	progress entities.TopicProgress,
) error {
	return s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		repo := repository.NewAttemptRepository(tx)

		if err := repo.Insert(ctx, sessionID, rec); err != nil {
			return fmt.Errorf("journal attempt: %w", err)
		}
		if err := repo.UpsertSnapshot(ctx, sessionID, rec.Subject, rec.Topic, progress, rec.Timestamp); err != nil {
			return fmt.Errorf("journal snapshot: %w", err)
		}

		return nil
	})
}
