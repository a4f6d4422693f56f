package service

import (
	"fmt"
	"math"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

const noHintReasoning = "No hint needed at this stage"

// HintPolicy decides when a hint is surfaced.
type HintPolicy struct {
	MinAttempts  int
	MinErrorRate float64
}

// NewHintPolicy creates a policy from the adaptive tuning.
func NewHintPolicy(cfg AdaptiveConfig) HintPolicy {
	return HintPolicy{
		MinAttempts:  cfg.HintMinAttempts,
		MinErrorRate: cfg.HintErrorRate,
	}
}

// ShouldShowHint is true after enough attempts with a high recent error rate.
func (h HintPolicy) ShouldShowHint(p entities.TopicProgress) bool {
	if p.Attempts < h.MinAttempts {
		return false
	}
	return p.RecentErrorRate() >= h.MinErrorRate
}

// HintReasoning explains why a hint is (or is not) shown.
func (h HintPolicy) HintReasoning(topic string, p entities.TopicProgress) string {
	if !h.ShouldShowHint(p) {
		return noHintReasoning
	}

	return fmt.Sprintf(
		"Hint shown due to repeated difficulty in %s (recent error rate %d%%)",
		topic, int(math.Round(p.RecentErrorRate()*100)),
	)
}
