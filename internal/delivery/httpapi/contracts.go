package httpapi

import (
	"context"

	"github.com/aliskhannn/adaptive-quiz/internal/service"
)

type PracticeService interface {
	NextQuestion(ctx context.Context, sessionID, subject, forcedTopic string) (*service.NextQuestion, error)
	Submit(ctx context.Context, sessionID string, sub service.Submission) (*service.SubmissionResult, error)
}

type ReportService interface {
	Subjects() []service.SubjectInfo
	SubjectReport(ctx context.Context, sessionID, subject string) (*service.SubjectReport, error)
	Snapshot(ctx context.Context, sessionID string) (*service.LearnerSnapshot, error)
}
