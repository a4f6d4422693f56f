// Package entities contains domain entities used across the application.
package entities

// Difficulty is a question difficulty band.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every band from easiest to hardest.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// difficultyWeights encode how demanding each band is for the success predictor.
var difficultyWeights = map[Difficulty]float64{
	DifficultyEasy:   0.3,
	DifficultyMedium: 0.6,
	DifficultyHard:   0.9,
}

// Valid reports whether d is one of the known bands.
func (d Difficulty) Valid() bool {
	_, ok := difficultyWeights[d]
	return ok
}

// Weight returns the band weight, medium's weight for unknown labels.
func (d Difficulty) Weight() float64 {
	if w, ok := difficultyWeights[d]; ok {
		return w
	}
	return difficultyWeights[DifficultyMedium]
}

// Question is a single item of the static question bank.
// Subject and Topic are filled from the bank keys when the bank is loaded.
type Question struct {
	ID         int        `json:"id"`                // unique id within the bank
	Subject    string     `json:"subject,omitempty"` // subject the question belongs to
	Topic      string     `json:"topic,omitempty"`   // topic within the subject
	Difficulty Difficulty `json:"difficulty"`        // difficulty band label
	Prompt     string     `json:"question"`          // text shown to the learner
	Answer     string     `json:"answer"`            // expected answer
	Hint       string     `json:"hint"`              // hint shown after repeated mistakes
	Solution   string     `json:"solution"`          // worked solution
	Weight     float64    `json:"weight,omitempty"`  // optional per-question difficulty weight in (0,1]
}

// EffectiveWeight returns the per-question weight, or the band weight when unset.
func (q Question) EffectiveWeight() float64 {
	if q.Weight > 0 {
		return q.Weight
	}
	return q.Difficulty.Weight()
}
