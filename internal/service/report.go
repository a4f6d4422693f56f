package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

const (
	strengthThreshold = 75
	weaknessThreshold = 50
)

// SubjectReport summarises a learner's standing in a subject.
type SubjectReport struct {
	Subject         string
	MasteryOverview map[string]int
	Strengths       []string // "Topic (N%)", mastery >= 75
	WeakAreas       []string // "Topic (N%)", mastery < 50
	FocusTopic      string
	Reasoning       string
}

// TopicSnapshot is a read-only view of one topic.
type TopicSnapshot struct {
	Mastery         int
	Attempts        int
	CorrectAttempts int
	Accuracy        *float64 // nil without attempts
	RecentResults   []bool
	Difficulty      entities.Difficulty
}

// LearnerSnapshot is the full state of a learner session.
type LearnerSnapshot struct {
	SessionID string
	Subjects  map[string]map[string]TopicSnapshot
	History   []entities.AttemptRecord
}

// SubjectInfo lists a subject with its topics.
type SubjectInfo struct {
	Name   string
	Topics []string
}

// ReportService builds read-only views of learner state.
type ReportService struct {
	bank  QuestionBank
	store LearnerStore
	cfg   AdaptiveConfig
}

// NewReportService creates a new ReportService.
func NewReportService(bank QuestionBank, store LearnerStore, cfg AdaptiveConfig) *ReportService {
	return &ReportService{
		bank:  bank,
		store: store,
		cfg:   cfg,
	}
}

// Subjects lists every subject of the bank with its topics.
func (s *ReportService) Subjects() []SubjectInfo {
	subjects := s.bank.Subjects()
	out := make([]SubjectInfo, 0, len(subjects))
	for _, name := range subjects {
		topics, _ := s.bank.Topics(name)
		out = append(out, SubjectInfo{Name: name, Topics: topics})
	}
	return out
}

// SubjectReport builds the mastery report of a subject. It never mutates learner state.
func (s *ReportService) SubjectReport(ctx context.Context, sessionID, subject string) (*SubjectReport, error) {
	topics, ok := s.bank.Topics(subject)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}

	var report *SubjectReport
	err := s.store.View(ctx, sessionID, func(l *entities.Learner) error {
		sp := l.EnsureSubject(subject, topics, s.cfg.Mastery.InitialMastery)
		report = buildReport(sp)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

func buildReport(sp *entities.SubjectProgress) *SubjectReport {
	names := sp.TopicNames()

	byMastery := append([]string(nil), names...)
	sort.SliceStable(byMastery, func(i, j int) bool {
		mi, mj := sp.Topics[byMastery[i]].Mastery, sp.Topics[byMastery[j]].Mastery
		if mi != mj {
			return mi > mj
		}
		return byMastery[i] < byMastery[j]
	})

	strengths := []string{}
	weak := []string{}
	for _, name := range byMastery {
		m := sp.Topics[name].Mastery
		switch {
		case m >= strengthThreshold:
			strengths = append(strengths, fmt.Sprintf("%s (%d%%)", name, m))
		case m < weaknessThreshold:
			weak = append(weak, fmt.Sprintf("%s (%d%%)", name, m))
		}
	}

	r := &SubjectReport{
		Subject:         sp.Subject,
		MasteryOverview: sp.MasteryOverview(),
		Strengths:       strengths,
		WeakAreas:       weak,
	}

	r.FocusTopic = FocusTopic(sp)
	if r.FocusTopic != "" {
		r.Reasoning = explainFocus(r.FocusTopic, sp.Topics[r.FocusTopic])
	}

	return r
}

// Snapshot returns the whole learner state.
func (s *ReportService) Snapshot(ctx context.Context, sessionID string) (*LearnerSnapshot, error) {
	var snap *LearnerSnapshot
	err := s.store.View(ctx, sessionID, func(l *entities.Learner) error {
		snap = &LearnerSnapshot{
			SessionID: l.SessionID,
			Subjects:  make(map[string]map[string]TopicSnapshot, len(l.Subjects)),
			History:   append([]entities.AttemptRecord{}, l.History...),
		}

		for subject, sp := range l.Subjects {
			topics := make(map[string]TopicSnapshot, len(sp.Topics))
			for name, p := range sp.Topics {
				ts := TopicSnapshot{
					Mastery:         p.Mastery,
					Attempts:        p.Attempts,
					CorrectAttempts: p.CorrectAttempts,
					RecentResults:   append([]bool{}, p.RecentResults...),
					Difficulty:      SelectDifficulty(p.Mastery),
				}
				if acc, ok := p.Accuracy(); ok {
					ts.Accuracy = &acc
				}
				topics[name] = ts
			}
			snap.Subjects[subject] = topics
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}
