package service

import (
	"errors"
	"testing"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

func TestSelectDifficultyPartitionsMastery(t *testing.T) {
	counts := map[entities.Difficulty]int{}
	prev := entities.DifficultyEasy
	for m := 0; m <= 100; m++ {
		d := SelectDifficulty(m)
		if !d.Valid() {
			t.Fatalf("SelectDifficulty(%d) = %q", m, d)
		}
		if d.Weight() < prev.Weight() {
			t.Fatalf("bands are not ordered at %d: %s after %s", m, d, prev)
		}
		prev = d
		counts[d]++
	}

	if counts[entities.DifficultyEasy] != 41 || counts[entities.DifficultyMedium] != 35 || counts[entities.DifficultyHard] != 25 {
		t.Fatalf("unexpected band sizes: %v", counts)
	}
}

func TestSelectDifficultyBoundaries(t *testing.T) {
	tests := []struct {
		mastery int
		want    entities.Difficulty
	}{
		{-10, entities.DifficultyEasy},
		{0, entities.DifficultyEasy},
		{40, entities.DifficultyEasy},
		{41, entities.DifficultyMedium},
		{65, entities.DifficultyMedium},
		{75, entities.DifficultyMedium},
		{76, entities.DifficultyHard},
		{100, entities.DifficultyHard},
		{250, entities.DifficultyHard},
	}

	for _, tc := range tests {
		if got := SelectDifficulty(tc.mastery); got != tc.want {
			t.Errorf("SelectDifficulty(%d) = %s, want %s", tc.mastery, got, tc.want)
		}
	}
}

func TestDifficultyReasoning(t *testing.T) {
	if got := DifficultyReasoning(10); got != "Low mastery detected, easier questions selected to build confidence" {
		t.Fatalf("easy reasoning = %q", got)
	}
	if got := DifficultyReasoning(90); got != "High mastery detected, harder questions selected to stretch ability" {
		t.Fatalf("hard reasoning = %q", got)
	}
}

func TestPredictSuccessValues(t *testing.T) {
	tests := []struct {
		mastery int
		weight  float64
		want    float64
	}{
		{50, 0.6, 0.57},
		{50, 0.5, 0.62},
		{50, 0.3, 0.71},
		{50, 0.9, 0.43},
		{0, 0.9, 0.14},
		{100, 0.3, 0.92},
	}

	for _, tc := range tests {
		if got := PredictSuccessWeight(tc.mastery, tc.weight); got != tc.want {
			t.Errorf("PredictSuccessWeight(%d, %v) = %v, want %v", tc.mastery, tc.weight, got, tc.want)
		}
	}

	if PredictSuccess(50, "unknown") != PredictSuccess(50, entities.DifficultyMedium) {
		t.Fatal("unknown difficulty must use the medium weight")
	}
}

func TestPredictSuccessIsMonotonic(t *testing.T) {
	for _, d := range entities.Difficulties {
		for m := 0; m < 100; m++ {
			if PredictSuccess(m, d) > PredictSuccess(m+1, d) {
				t.Fatalf("%s: prediction decreases between mastery %d and %d", d, m, m+1)
			}
		}
	}

	for m := 0; m <= 100; m++ {
		easy := PredictSuccess(m, entities.DifficultyEasy)
		medium := PredictSuccess(m, entities.DifficultyMedium)
		hard := PredictSuccess(m, entities.DifficultyHard)
		if easy < medium || medium < hard {
			t.Fatalf("mastery %d: prediction grows with difficulty: %v %v %v", m, easy, medium, hard)
		}
		if hard < 0 || easy > 1 {
			t.Fatalf("mastery %d: prediction outside [0,1]", m)
		}
	}
}

func TestExplainPrediction(t *testing.T) {
	want := "Predicted success probability is 57% based on current mastery (50%) and selected difficulty (medium)"
	if got := ExplainPrediction(0.57, 50, entities.DifficultyMedium); got != want {
		t.Fatalf("ExplainPrediction() = %q", got)
	}
}

func TestHintPolicy(t *testing.T) {
	h := NewHintPolicy(DefaultAdaptiveConfig())
	rules := entities.DefaultMasteryRules()

	p := entities.NewTopicProgress(50)
	p.Record(false, rules)
	if h.ShouldShowHint(*p) {
		t.Fatal("hint shown after a single attempt")
	}

	p.Record(false, rules)
	if !h.ShouldShowHint(*p) {
		t.Fatal("hint not shown after two consecutive wrong answers")
	}
	if got := h.HintReasoning("Fractions", *p); got != "Hint shown due to repeated difficulty in Fractions (recent error rate 100%)" {
		t.Fatalf("HintReasoning() = %q", got)
	}

	q := entities.NewTopicProgress(50)
	q.Record(true, rules)
	q.Record(false, rules)
	q.Record(true, rules)
	if h.ShouldShowHint(*q) {
		t.Fatal("hint shown with a low error rate")
	}
	if got := h.HintReasoning("Fractions", *q); got != noHintReasoning {
		t.Fatalf("HintReasoning() = %q", got)
	}
}

func subjectWith(masteries map[string]int, attempted ...string) *entities.SubjectProgress {
	names := make([]string, 0, len(masteries))
	for name := range masteries {
		names = append(names, name)
	}
	sp := entities.NewSubjectProgress("Mathematics", names, 50)
	for name, m := range masteries {
		sp.Topics[name].Mastery = m
	}
	for _, name := range attempted {
		sp.Topics[name].Attempts = 1
	}
	return sp
}

func TestTopicSelectorForcedTopicWins(t *testing.T) {
	s := NewTopicSelector(fixedRand{f: 0}, 0.7)
	sp := subjectWith(map[string]int{"A": 10, "B": 90}, "A")

	got, err := s.Select(sp, "B")
	if err != nil {
		t.Fatal(err)
	}
	if got.Topic != "B" || got.Strategy != StrategyForced || got.Reasoning != "User-selected topic" {
		t.Fatalf("Select() = %+v", got)
	}

	if _, err := s.Select(sp, "Z"); !errors.Is(err, ErrUnknownTopic) {
		t.Fatalf("Select(unknown) error = %v", err)
	}
}

func TestTopicSelectorStrategies(t *testing.T) {
	tests := []struct {
		name         string
		rng          fixedRand
		masteries    map[string]int
		attempted    []string
		wantTopic    string
		wantStrategy Strategy
	}{
		{
			name:         "greedy picks the weakest attempted topic",
			rng:          fixedRand{f: 0.1},
			masteries:    map[string]int{"A": 60, "B": 45, "C": 20},
			attempted:    []string{"A", "B"},
			wantTopic:    "B",
			wantStrategy: StrategyGreedy,
		},
		{
			name:         "greedy breaks mastery ties by name",
			rng:          fixedRand{f: 0.1},
			masteries:    map[string]int{"B": 40, "A": 40},
			attempted:    []string{"A", "B"},
			wantTopic:    "A",
			wantStrategy: StrategyGreedy,
		},
		{
			name:         "random when the draw misses the greedy probability",
			rng:          fixedRand{f: 0.7, i: 2},
			masteries:    map[string]int{"A": 60, "B": 45, "C": 20},
			attempted:    []string{"A", "B"},
			wantTopic:    "C",
			wantStrategy: StrategyRandom,
		},
		{
			name:         "random when nothing was attempted",
			rng:          fixedRand{f: 0.0, i: 1},
			masteries:    map[string]int{"A": 60, "B": 45, "C": 20},
			wantTopic:    "B",
			wantStrategy: StrategyRandom,
		},
		{
			name:         "graduated topics are skipped",
			rng:          fixedRand{f: 0.9, i: 0},
			masteries:    map[string]int{"A": 100, "B": 45},
			attempted:    []string{"A"},
			wantTopic:    "B",
			wantStrategy: StrategyRandom,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewTopicSelector(tc.rng, 0.7)
			got, err := s.Select(subjectWith(tc.masteries, tc.attempted...), "")
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if got.Topic != tc.wantTopic || got.Strategy != tc.wantStrategy {
				t.Fatalf("Select() = %+v, want %s/%s", got, tc.wantTopic, tc.wantStrategy)
			}
		})
	}
}

func TestTopicSelectorGreedyPrefersHigherErrorRate(t *testing.T) {
	sp := subjectWith(map[string]int{"A": 40, "B": 40})
	sp.Topics["A"].Attempts = 2
	sp.Topics["A"].RecentResults = []bool{true, false}
	sp.Topics["B"].Attempts = 2
	sp.Topics["B"].RecentResults = []bool{false, false}

	got, err := NewTopicSelector(fixedRand{f: 0}, 0.7).Select(sp, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Topic != "B" {
		t.Fatalf("Select() = %s, want B", got.Topic)
	}
}

func TestTopicSelectorGraduated(t *testing.T) {
	s := NewTopicSelector(fixedRand{}, 0.7)
	sp := subjectWith(map[string]int{"A": 100, "B": 100}, "A", "B")

	if _, err := s.Select(sp, ""); !errors.Is(err, errGraduated) {
		t.Fatalf("Select() error = %v, want errGraduated", err)
	}
	if _, err := s.Select(sp, "A"); !errors.Is(err, errGraduated) {
		t.Fatalf("Select(forced) error = %v, want errGraduated", err)
	}
}

func TestFocusTopic(t *testing.T) {
	if got := FocusTopic(subjectWith(map[string]int{"B": 50, "A": 50, "C": 50})); got != "A" {
		t.Fatalf("FocusTopic(untouched) = %s, want A", got)
	}

	sp := subjectWith(map[string]int{"A": 70, "B": 30, "C": 10}, "A", "B")
	if got := FocusTopic(sp); got != "B" {
		t.Fatalf("FocusTopic() = %s, want B", got)
	}

	if got := FocusTopic(entities.NewSubjectProgress("Empty", nil, 50)); got != "" {
		t.Fatalf("FocusTopic(empty) = %q", got)
	}
}
