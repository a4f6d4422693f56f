package service

import (
	"time"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

// NewLearnerFactory returns a factory creating learners with every topic of the bank
// at the initial mastery.
func NewLearnerFactory(bank QuestionBank, initialMastery int) entities.LearnerFactory {
	return func(sessionID string, now time.Time) *entities.Learner {
		return entities.NewLearner(sessionID, bank.Catalog(), initialMastery, now)
	}
}
