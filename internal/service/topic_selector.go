package service

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

// Strategy tells how a topic was chosen.
type Strategy string

const (
	StrategyForced Strategy = "forced"
	StrategyGreedy Strategy = "greedy"
	StrategyRandom Strategy = "random"
)

// RandomSource is the randomness used by the topic selector.
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// TopicChoice is the outcome of a topic selection.
type TopicChoice struct {
	Topic     string
	Strategy  Strategy
	Reasoning string
}

// TopicSelector picks the next topic to practise.
type TopicSelector struct {
	mu                sync.Mutex // guards rng, which is not safe for concurrent use
	rng               RandomSource
	greedyProbability float64
}

// NewTopicSelector creates a selector. A nil rng is replaced by a time-seeded source.
func NewTopicSelector(rng RandomSource, greedyProbability float64) *TopicSelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &TopicSelector{
		rng:               rng,
		greedyProbability: greedyProbability,
	}
}

// Select picks a topic of the subject.
//
// A forced topic always wins. Otherwise, with the greedy probability, the weakest
// attempted topic is taken, and a uniformly random one in every other case.
// Graduated topics are never offered; errGraduated is returned when none is left.
func (s *TopicSelector) Select(sp *entities.SubjectProgress, forcedTopic string) (TopicChoice, error) {
	if forcedTopic != "" {
		p, ok := sp.Topic(forcedTopic)
		if !ok {
			return TopicChoice{}, fmt.Errorf("%w: %s", ErrUnknownTopic, forcedTopic)
		}
		if p.Graduated() {
			return TopicChoice{}, errGraduated
		}
		return TopicChoice{Topic: forcedTopic, Strategy: StrategyForced, Reasoning: "User-selected topic"}, nil
	}

	var candidates, attempted []string
	for _, name := range sp.TopicNames() {
		p := sp.Topics[name]
		if p.Graduated() {
			continue
		}
		candidates = append(candidates, name)
		if p.Attempts > 0 {
			attempted = append(attempted, name)
		}
	}
	if len(candidates) == 0 {
		return TopicChoice{}, errGraduated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Float64() < s.greedyProbability && len(attempted) > 0 {
		topic := weakestTopic(sp, attempted)
		return TopicChoice{Topic: topic, Strategy: StrategyGreedy, Reasoning: greedyReasoning(topic, sp.Topics[topic])}, nil
	}

	topic := candidates[s.rng.Intn(len(candidates))]
	return TopicChoice{
		Topic:     topic,
		Strategy:  StrategyRandom,
		Reasoning: fmt.Sprintf("%s picked at random to keep practice varied", topic),
	}, nil
}

// FocusTopic returns the topic that needs attention most: the weakest attempted topic,
// or the weakest topic overall when nothing has been attempted. Empty when the subject has no topics.
func FocusTopic(sp *entities.SubjectProgress) string {
	names := sp.TopicNames()
	if len(names) == 0 {
		return ""
	}

	var attempted []string
	for _, name := range names {
		if sp.Topics[name].Attempts > 0 {
			attempted = append(attempted, name)
		}
	}
	if len(attempted) > 0 {
		return weakestTopic(sp, attempted)
	}

	return weakestTopic(sp, names)
}

// weakestTopic orders by mastery ascending, recent error rate descending, then name.
func weakestTopic(sp *entities.SubjectProgress, names []string) string {
	ordered := append([]string(nil), names...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := sp.Topics[ordered[i]], sp.Topics[ordered[j]]
		if a.Mastery != b.Mastery {
			return a.Mastery < b.Mastery
		}
		if ea, eb := a.RecentErrorRate(), b.RecentErrorRate(); ea != eb {
			return ea > eb
		}
		return ordered[i] < ordered[j]
	})

	return ordered[0]
}

func greedyReasoning(topic string, p *entities.TopicProgress) string {
	return fmt.Sprintf(
		"%s has the lowest mastery (%d%%) among practised topics and a recent error rate of %d%%",
		topic, p.Mastery, int(math.Round(p.RecentErrorRate()*100)),
	)
}

// explainFocus describes why a topic deserves attention.
func explainFocus(topic string, p *entities.TopicProgress) string {
	var reasons []string
	if p.Mastery < 50 {
		reasons = append(reasons, "low overall mastery")
	}
	if len(p.RecentResults) > 0 && p.RecentErrorRate() > 0.4 {
		reasons = append(reasons, "frequent recent errors")
	}
	if p.Attempts < 5 {
		reasons = append(reasons, "limited practice so far")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "balanced difficulty with room for improvement")
	}

	return topic + " was selected because of " + strings.Join(reasons, " and ") + "."
}
