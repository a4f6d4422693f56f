package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handler struct {
	bot       Bot
	logger    *zap.Logger
	practice  PracticeService
	reports   ReportService
	questions QuestionLookup
	pending   PendingStore
	now       func() time.Time
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	practice PracticeService,
	reports ReportService,
	questions QuestionLookup,
	pending PendingStore,
) *Handler {
	return &Handler{
		bot:       bot,
		logger:    logger,
		practice:  practice,
		reports:   reports,
		questions: questions,
		pending:   pending,
		now:       time.Now,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if update.Message.IsCommand() {
		args := update.Message.CommandArguments()

		switch update.Message.Command() {
		case "start":
			h.send(newHTMLMessage(chatID, msgWelcome))

		case "help":
			h.send(newHTMLMessage(chatID, msgCommands))

		case "subjects":
			h.send(newHTMLMessage(chatID, renderSubjects(h.reports.Subjects())))

		case "practice":
			_ = h.withErrorHandling(h.practiceHandler(userID, args))(ctx, chatID)

		case "report":
			_ = h.withErrorHandling(h.reportHandler(userID, args))(ctx, chatID)

		default:
			h.send(newHTMLMessage(chatID, msgUnknownCommand))
		}

		return
	}

	_ = h.withErrorHandling(h.answerHandler(userID, update.Message.Text))(ctx, chatID)
}

// sessionID maps a Telegram user to a learner session.
func sessionID(userID int64) string {
	return fmt.Sprintf("tg:%d", userID)
}

func (h *Handler) sendError(chatID int64, err string) {
	msg := newHTMLMessage(chatID, err)
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
