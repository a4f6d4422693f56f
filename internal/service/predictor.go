package service

import (
	"fmt"
	"math"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

const (
	masteryCoef    = 0.6
	difficultyCoef = 0.4
	steepness      = 5.0
)

// PredictSuccess estimates the probability of a correct answer for a topic mastery and difficulty band.
func PredictSuccess(mastery int, difficulty entities.Difficulty) float64 {
	return PredictSuccessWeight(mastery, difficulty.Weight())
}

// PredictSuccessWeight is PredictSuccess over an explicit difficulty weight.
// The result is rounded to two decimals.
func PredictSuccessWeight(mastery int, weight float64) float64 {
	m := float64(entities.ClampMastery(mastery)) / 100
	z := masteryCoef*m - difficultyCoef*weight
	p := 1 / (1 + math.Exp(-steepness*z))

	return math.Round(p*100) / 100
}

// ExplainPrediction describes a predicted success probability.
func ExplainPrediction(p float64, mastery int, difficulty entities.Difficulty) string {
	return fmt.Sprintf(
		"Predicted success probability is %d%% based on current mastery (%d%%) and selected difficulty (%s)",
		int(math.Round(p*100)), mastery, difficulty,
	)
}
