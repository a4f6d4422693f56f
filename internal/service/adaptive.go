package service

import (
	"errors"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

var (
	ErrUnknownSubject       = errors.New("unknown subject")
	ErrUnknownTopic         = errors.New("unknown topic")
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrInvalidSubmission    = errors.New("invalid submission")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrConcurrentUpdate     = errors.New("learner changed concurrently")

	// errGraduated is returned by the topic selector when nothing is left to practise.
	errGraduated = errors.New("subject graduated")
)

// AdaptiveConfig holds the tunables of the decision core.
type AdaptiveConfig struct {
	Mastery           entities.MasteryRules
	GreedyProbability float64 // chance of picking the weakest attempted topic
	TargetSuccess     float64 // predicted success the ranker aims for
	HintMinAttempts   int
	HintErrorRate     float64
}

// DefaultAdaptiveConfig returns the default tuning.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		Mastery:           entities.DefaultMasteryRules(),
		GreedyProbability: 0.7,
		TargetSuccess:     0.65,
		HintMinAttempts:   2,
		HintErrorRate:     0.5,
	}
}
