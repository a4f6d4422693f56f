package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
)

// recordingTx records Exec calls and fails the call numbered failOn (1-based).
type recordingTx struct {
	pgx.Tx

	sqls   []string
	args   [][]any
	failOn int
}

func (r *recordingTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sqls = append(r.sqls, sql)
	r.args = append(r.args, args)
	if len(r.sqls) == r.failOn {
		return pgconn.CommandTag{}, errors.New("connection reset")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

type fakeTransactor struct {
	tx         *recordingTx
	committed  bool
	rolledBack bool
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if err := fn(ctx, f.tx); err != nil {
		f.rolledBack = true
		return err
	}
	f.committed = true
	return nil
}

func journalRecord() (entities.AttemptRecord, entities.TopicProgress) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := entities.AttemptRecord{
		Timestamp:    at,
		Subject:      "Mathematics",
		Topic:        "Fractions",
		QuestionID:   3,
		Correct:      true,
		MasteryAfter: 55,
	}
	progress := entities.TopicProgress{Mastery: 55, Attempts: 1, CorrectAttempts: 1}
	return rec, progress
}

func TestJournalServiceRecord(t *testing.T) {
	tr := &fakeTransactor{tx: &recordingTx{}}
	rec, progress := journalRecord()

	if err := NewJournalService(tr).Record(context.Background(), "s1", rec, progress); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if !tr.committed || tr.rolledBack {
		t.Fatalf("committed = %v, rolledBack = %v", tr.committed, tr.rolledBack)
	}
	if len(tr.tx.sqls) != 2 {
		t.Fatalf("exec calls = %d, want 2", len(tr.tx.sqls))
	}
	if !strings.Contains(tr.tx.sqls[0], "practice_attempts") {
		t.Fatalf("first statement = %q, want practice_attempts insert", tr.tx.sqls[0])
	}
	if !strings.Contains(tr.tx.sqls[1], "topic_mastery_snapshots") {
		t.Fatalf("second statement = %q, want snapshot upsert", tr.tx.sqls[1])
	}
	for i, args := range tr.tx.args {
		if args[0] != "s1" {
			t.Fatalf("statement %d session = %v, want s1", i, args[0])
		}
	}
}

func TestJournalServiceRecordRollsBack(t *testing.T) {
	tests := []struct {
		name      string
		failOn    int
		wantExecs int
		wantErr   string
	}{
		{name: "attempt insert fails", failOn: 1, wantExecs: 1, wantErr: "journal attempt"},
		{name: "snapshot upsert fails", failOn: 2, wantExecs: 2, wantErr: "journal snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransactor{tx: &recordingTx{failOn: tt.failOn}}
			rec, progress := journalRecord()

			err := NewJournalService(tr).Record(context.Background(), "s1", rec, progress)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Record() error = %v, want %q", err, tt.wantErr)
			}
			if tr.committed || !tr.rolledBack {
				t.Fatalf("committed = %v, rolledBack = %v", tr.committed, tr.rolledBack)
			}
			if len(tr.tx.sqls) != tt.wantExecs {
				t.Fatalf("exec calls = %d, want %d", len(tr.tx.sqls), tt.wantExecs)
			}
		})
	}
}
