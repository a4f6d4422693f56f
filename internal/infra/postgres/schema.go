package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS practice_attempts (
		id            BIGSERIAL PRIMARY KEY,
		session_id    TEXT        NOT NULL,
		subject       TEXT        NOT NULL,
		topic         TEXT        NOT NULL,
		question_id   INTEGER,
		correct       BOOLEAN     NOT NULL,
		mastery_after SMALLINT    NOT NULL CHECK (mastery_after BETWEEN 0 AND 100),
		answered_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS practice_attempts_session_idx
		ON practice_attempts (session_id, answered_at)`,
	`CREATE TABLE IF NOT EXISTS topic_mastery_snapshots (
		session_id       TEXT        NOT NULL,
		subject          TEXT        NOT NULL,
		topic            TEXT        NOT NULL,
		mastery          SMALLINT    NOT NULL CHECK (mastery BETWEEN 0 AND 100),
		attempts         INTEGER     NOT NULL,
		correct_attempts INTEGER     NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (session_id, subject, topic)
	)`,
}

// EnsureSchema creates the journal tables when they do not exist.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
