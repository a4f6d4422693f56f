package service

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

// Submission is an answer sent by a learner.
// Either Correct or QuestionID with Answer must be set.
type Submission struct {
	Subject    string // optional, resolved from the topic when empty
	Topic      string // optional when QuestionID is set
	Correct    *bool  // client-reported result
	QuestionID int
	Answer     *string // validated against the question when set
}

// SubmissionResult describes the effect of a recorded attempt.
type SubmissionResult struct {
	Subject        string
	Topic          string
	Correct        bool
	UpdatedMastery int
	NextDifficulty entities.Difficulty
	ShowHint       bool
	Hint           string // set when ShowHint and the question is known
	Feedback       string
	Solution       string // set on incorrect answers to a known question
	Graduated      bool   // topic reached full mastery
}

// Submit records an attempt and returns the updated learner view of the topic.
func (s *PracticeService) Submit(ctx context.Context, sessionID string, sub Submission) (*SubmissionResult, error) {
	var (
		question *entities.Question
		correct  bool
	)

	if sub.QuestionID != 0 {
		q, ok := s.bank.GetByID(sub.QuestionID)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrQuestionNotFound, sub.QuestionID)
		}
		if sub.Topic != "" && sub.Topic != q.Topic {
			return nil, fmt.Errorf("%w: question %d does not belong to %s", ErrInvalidSubmission, q.ID, sub.Topic)
		}
		if sub.Subject != "" && sub.Subject != q.Subject {
			return nil, fmt.Errorf("%w: question %d does not belong to %s", ErrInvalidSubmission, q.ID, sub.Subject)
		}
		sub.Topic, sub.Subject = q.Topic, q.Subject
		question = &q
	}

	switch {
	case sub.Answer != nil && question != nil:
		correct = s.validator.Validate(*sub.Answer, question.Answer)
	case sub.Correct != nil:
		correct = *sub.Correct
	default:
		return nil, fmt.Errorf("%w: either correct or question_id with answer is required", ErrInvalidSubmission)
	}

	if sub.Topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidSubmission)
	}

	subject, topics, err := s.resolveSubject(sub.Subject, sub.Topic)
	if err != nil {
		return nil, err
	}

	var (
		rec      entities.AttemptRecord
		progress entities.TopicProgress
	)
	err = s.store.Update(ctx, sessionID, func(l *entities.Learner) error {
		l.EnsureSubject(subject, topics, s.cfg.Mastery.InitialMastery)
		rec = l.RecordAttempt(subject, sub.Topic, sub.QuestionID, correct, s.cfg.Mastery, s.now())
		progress = *l.Subjects[subject].Topics[sub.Topic]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.journalAttempt(ctx, sessionID, rec, progress)

	res := &SubmissionResult{
		Subject:        subject,
		Topic:          sub.Topic,
		Correct:        correct,
		UpdatedMastery: progress.Mastery,
		NextDifficulty: SelectDifficulty(progress.Mastery),
		ShowHint:       s.hints.ShouldShowHint(progress),
		Feedback:       learningFeedback(sub.Topic, correct),
		Graduated:      progress.Graduated(),
	}
	if question != nil {
		if res.ShowHint {
			res.Hint = question.Hint
		}
		if !correct {
			res.Solution = question.Solution
		}
	}

	return res, nil
}

// resolveSubject validates subject and topic, inferring the subject from the topic when empty.
func (s *PracticeService) resolveSubject(subject, topic string) (string, []string, error) {
	if subject == "" {
		subjects := s.bank.SubjectsForTopic(topic)
		switch len(subjects) {
		case 0:
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
		case 1:
			subject = subjects[0]
		default:
			return "", nil, fmt.Errorf("%w: topic %s exists in several subjects, subject is required", ErrInvalidSubmission, topic)
		}
	}

	topics, ok := s.bank.Topics(subject)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	if !slices.Contains(topics, topic) {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	return subject, topics, nil
}

func (s *PracticeService) journalAttempt(
	ctx context.Context,
	sessionID string,
	rec entities.AttemptRecord,
	progress entities.TopicProgress,
) {
	if s.journal == nil {
		return
	}

	if err := s.journal.Record(ctx, sessionID, rec, progress); err != nil {
		s.logger.Warn("failed to journal attempt",
			zap.String("session_id", sessionID),
			zap.String("subject", rec.Subject),
			zap.String("topic", rec.Topic),
			zap.Error(err),
		)
	}
}

func learningFeedback(topic string, correct bool) string {
	if correct {
		return fmt.Sprintf("Mastery in %s increased due to correct response", topic)
	}
	return fmt.Sprintf("Mastery in %s decreased due to incorrect response", topic)
}
