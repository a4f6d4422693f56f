package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
	"github.com/aliskhannn/adaptive-quiz/internal/service"
	"github.com/aliskhannn/adaptive-quiz/internal/storage"
)

// Bot is the subset of *tgbotapi.BotAPI used by the handler.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type PracticeService interface {
	NextQuestion(ctx context.Context, sessionID, subject, forcedTopic string) (*service.NextQuestion, error)
	Submit(ctx context.Context, sessionID string, sub service.Submission) (*service.SubmissionResult, error)
}

type ReportService interface {
	Subjects() []service.SubjectInfo
	SubjectReport(ctx context.Context, sessionID, subject string) (*service.SubjectReport, error)
}

type QuestionLookup interface {
	GetByID(id int) (entities.Question, bool)
}

type PendingStore interface {
	Store(userID int64, q storage.PendingQuestion)
	Get(userID int64) (storage.PendingQuestion, bool)
	Take(userID int64) (storage.PendingQuestion, bool)
}
