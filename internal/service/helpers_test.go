package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
	"github.com/aliskhannn/adaptive-quiz/internal/repository"
	"github.com/aliskhannn/adaptive-quiz/internal/storage"
)

const testBank = `{
  "Mathematics": {
    "Fractions": [
      {"id": 1, "difficulty": "easy",   "question": "1/4 + 1/4 = ?", "answer": "1/2", "hint": "Add the numerators.", "solution": "2/4 = 1/2"},
      {"id": 2, "difficulty": "medium", "question": "2/3 of 9 = ?",  "answer": "6",   "hint": "Divide by 3 first.", "solution": "9/3*2 = 6"},
      {"id": 3, "difficulty": "medium", "question": "1/2 + 1/3 = ?", "answer": "5/6", "hint": "Common denominator.", "solution": "3/6 + 2/6 = 5/6", "weight": 0.5},
      {"id": 4, "difficulty": "hard",   "question": "3/4 / 9/8 = ?", "answer": "2/3", "hint": "Multiply by the reciprocal.", "solution": "3/4 * 8/9 = 2/3"}
    ],
    "Decimals": [
      {"id": 5, "difficulty": "hard", "question": "0.125 as a fraction?", "answer": "1/8", "hint": "h", "solution": "s"}
    ],
    "Ratios": [
      {"id": 8, "difficulty": "easy",   "question": "Simplify 2:4", "answer": "1:2", "hint": "h", "solution": "s"},
      {"id": 9, "difficulty": "medium", "question": "Simplify 6:9", "answer": "2:3", "hint": "h", "solution": "s"}
    ],
    "Geometry": []
  },
  "Science": {
    "Cells": [
      {"id": 7, "difficulty": "medium", "question": "Powerhouse of the cell?", "answer": "mitochondria", "hint": "h", "solution": "s"}
    ]
  }
}`

// fixedRand always returns the same draw.
type fixedRand struct {
	f float64
	i int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(n int) int   { return r.i % n }

type fakeJournal struct {
	mu      sync.Mutex
	records []entities.AttemptRecord
	err     error
}

func (j *fakeJournal) Record(_ context.Context, _ string, rec entities.AttemptRecord, _ entities.TopicProgress) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return j.err
}

type fixture struct {
	practice *PracticeService
	reports  *ReportService
	journal  *fakeJournal
	store    *storage.LearnerStorage
}

func newFixture(t *testing.T, rng RandomSource) *fixture {
	t.Helper()

	bank, err := repository.ParseQuestionBank([]byte(testBank))
	if err != nil {
		t.Fatalf("ParseQuestionBank() error = %v", err)
	}

	cfg := DefaultAdaptiveConfig()
	store := storage.NewLearnerStorage(time.Hour, NewLearnerFactory(bank, cfg.Mastery.InitialMastery))
	journal := &fakeJournal{}

	return &fixture{
		practice: NewPracticeService(bank, store, journal, NewTopicSelector(rng, cfg.GreedyProbability), cfg, zap.NewNop()),
		reports:  NewReportService(bank, store, cfg),
		journal:  journal,
		store:    store,
	}
}

func (f *fixture) answer(t *testing.T, session, subject, topic string, correct bool, n int) *SubmissionResult {
	t.Helper()

	var res *SubmissionResult
	for i := 0; i < n; i++ {
		c := correct
		var err error
		res, err = f.practice.Submit(context.Background(), session, Submission{Subject: subject, Topic: topic, Correct: &c})
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	return res
}
