package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

// Practice statuses.
const (
	StatusContinue  = "continue"
	StatusGraduated = "graduated"
)

// Reasoning explains each decision behind a served question.
type Reasoning struct {
	Topic      string
	Difficulty string
	Prediction string
	Hint       string
}

// NextQuestion is the outcome of a next-question request.
// Only Status, Subject and Topic (when forced) are set for a graduated subject.
type NextQuestion struct {
	Status           string
	Subject          string
	Topic            string
	Question         entities.Question
	TargetDifficulty entities.Difficulty // band derived from mastery, may differ from Question.Difficulty after widening
	Mastery          int
	PredictedSuccess float64
	ShowHint         bool
	Strategy         Strategy
	Reasoning        Reasoning
}

// PracticeService serves adaptive questions and records answers.
type PracticeService struct {
	bank      QuestionBank
	store     LearnerStore
	journal   AttemptJournal
	selector  *TopicSelector
	hints     HintPolicy
	validator *AnswerValidator
	cfg       AdaptiveConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewPracticeService creates a new PracticeService. journal may be nil.
func NewPracticeService(
	bank QuestionBank,
	store LearnerStore,
	journal AttemptJournal,
	selector *TopicSelector,
	cfg AdaptiveConfig,
	logger *zap.Logger,
) *PracticeService {
	return &PracticeService{
		bank:      bank,
		store:     store,
		journal:   journal,
		selector:  selector,
		hints:     NewHintPolicy(cfg),
		validator: NewAnswerValidator(),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// NextQuestion selects the topic, difficulty and question for the learner.
// forcedTopic may be empty.
func (s *PracticeService) NextQuestion(
	ctx context.Context,
	sessionID, subject, forcedTopic string,
) (*NextQuestion, error) {
	topics, ok := s.bank.Topics(subject)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	if forcedTopic != "" && !slices.Contains(topics, forcedTopic) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, forcedTopic)
	}

	var out *NextQuestion
	err := s.store.Update(ctx, sessionID, func(l *entities.Learner) error {
		sp := l.EnsureSubject(subject, topics, s.cfg.Mastery.InitialMastery)

		choice, err := s.selector.Select(sp, forcedTopic)
		if errors.Is(err, errGraduated) {
			out = &NextQuestion{Status: StatusGraduated, Subject: subject, Topic: forcedTopic}
			return nil
		}
		if err != nil {
			return err
		}

		progress := *sp.Topics[choice.Topic]
		target := SelectDifficulty(progress.Mastery)

		q, err := s.pickQuestion(sp, subject, choice.Topic, target, progress.Mastery)
		if err != nil {
			return err
		}
		sp.MarkSeen(q.ID)
		l.UpdatedAt = s.now()

		p := PredictSuccessWeight(progress.Mastery, q.EffectiveWeight())
		out = &NextQuestion{
			Status:           StatusContinue,
			Subject:          subject,
			Topic:            choice.Topic,
			Question:         q,
			TargetDifficulty: target,
			Mastery:          progress.Mastery,
			PredictedSuccess: p,
			ShowHint:         s.hints.ShouldShowHint(progress),
			Strategy:         choice.Strategy,
			Reasoning: Reasoning{
				Topic:      choice.Reasoning,
				Difficulty: DifficultyReasoning(progress.Mastery),
				Prediction: ExplainPrediction(p, progress.Mastery, q.Difficulty),
				Hint:       s.hints.HintReasoning(choice.Topic, progress),
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Status == StatusContinue {
		s.logger.Debug("question selected",
			zap.String("session_id", sessionID),
			zap.String("subject", subject),
			zap.String("topic", out.Topic),
			zap.Int("question_id", out.Question.ID),
			zap.String("strategy", string(out.Strategy)),
			zap.Float64("predicted_success", out.PredictedSuccess),
		)
	}

	return out, nil
}

// pickQuestion filters the topic by difficulty, widening to medium and then to any
// difficulty, and returns the best ranked unseen candidate.
func (s *PracticeService) pickQuestion(
	sp *entities.SubjectProgress,
	subject, topic string,
	target entities.Difficulty,
	mastery int,
) (entities.Question, error) {
	all := s.bank.Questions(subject, topic)

	candidates := filterByDifficulty(all, target)
	if len(candidates) == 0 {
		candidates = filterByDifficulty(all, entities.DifficultyMedium)
	}
	if len(candidates) == 0 {
		candidates = all
	}
	if len(candidates) == 0 {
		return entities.Question{}, fmt.Errorf("%w: %s/%s", ErrNoQuestionsAvailable, subject, topic)
	}

	unseen := make([]entities.Question, 0, len(candidates))
	for _, q := range candidates {
		if !sp.Seen[q.ID] {
			unseen = append(unseen, q)
		}
	}
	if len(unseen) == 0 {
		ids := make([]int, len(candidates))
		for i, q := range candidates {
			ids[i] = q.ID
		}
		sp.Forget(ids)
		unseen = candidates
	}

	rankQuestions(unseen, mastery, s.cfg.TargetSuccess)
	return unseen[0], nil
}

func filterByDifficulty(questions []entities.Question, d entities.Difficulty) []entities.Question {
	var out []entities.Question
	for _, q := range questions {
		if q.Difficulty == d {
			out = append(out, q)
		}
	}
	return out
}

// rankQuestions orders questions by how close their predicted success is to target, then by id.
func rankQuestions(questions []entities.Question, mastery int, target float64) {
	distance := func(q entities.Question) float64 {
		return math.Abs(PredictSuccessWeight(mastery, q.EffectiveWeight()) - target)
	}

	sort.SliceStable(questions, func(i, j int) bool {
		di, dj := distance(questions[i]), distance(questions[j])
		if di != dj {
			return di < dj
		}
		return questions[i].ID < questions[j].ID
	})
}
