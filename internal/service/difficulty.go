package service

import (
	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

// difficultyBand maps an inclusive mastery range to a band.
type difficultyBand struct {
	low, high  int
	difficulty entities.Difficulty
}

var difficultyBands = []difficultyBand{
	{0, 40, entities.DifficultyEasy},
	{41, 75, entities.DifficultyMedium},
	{76, 100, entities.DifficultyHard},
}

// SelectDifficulty maps a mastery score to a difficulty band.
// Scores outside [0,100] are clamped first.
func SelectDifficulty(mastery int) entities.Difficulty {
	m := entities.ClampMastery(mastery)
	for _, b := range difficultyBands {
		if m >= b.low && m <= b.high {
			return b.difficulty
		}
	}

	return entities.DifficultyMedium
}

// DifficultyReasoning explains the band chosen for a mastery score.
func DifficultyReasoning(mastery int) string {
	switch SelectDifficulty(mastery) {
	case entities.DifficultyEasy:
		return "Low mastery detected, easier questions selected to build confidence"
	case entities.DifficultyHard:
		return "High mastery detected, harder questions selected to stretch ability"
	default:
		return "Moderate mastery detected, maintaining optimal learning challenge"
	}
}
