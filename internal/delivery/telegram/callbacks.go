package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Remove the user's "clock".
	defer func() {
		if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			h.logger.Warn("callback answer error", zap.Error(err))
		}
	}()

	if cb.Message == nil || cb.From == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	data := decodeCallback(cb.Data)

	switch data.Action {
	case actionHint:
		h.questionTextCallback(chatID, data, func(hint, _ string) string {
			if hint == "" {
				return msgNoHint
			}
			return "💡 " + esc(hint)
		})

	case actionSolution:
		h.questionTextCallback(chatID, data, func(_, solution string) string {
			if solution == "" {
				return msgNoSolution
			}
			return "📖 " + esc(solution)
		})

	case actionNext:
		if len(data.Params) == 0 || len(data.Params) > 2 {
			h.logger.Warn("invalid next callback", zap.String("data", data.Raw))
			return
		}
		subject, topic := data.Params[0], ""
		if len(data.Params) == 2 {
			topic = data.Params[1]
		}
		_ = h.withErrorHandling(func(ctx context.Context, chatID int64) error {
			return h.sendNextQuestion(ctx, chatID, cb.From.ID, subject, topic)
		})(ctx, chatID)

	default:
		h.logger.Debug("unknown callback", zap.String("data", data.Raw))
	}
}

func (h *Handler) questionTextCallback(chatID int64, data callbackData, render func(hint, solution string) string) {
	id, ok := data.questionID()
	if !ok {
		h.logger.Warn("invalid question callback", zap.String("data", data.Raw))
		return
	}

	q, ok := h.questions.GetByID(id)
	if !ok {
		h.send(newHTMLMessage(chatID, msgQuestionExpired))
		return
	}

	h.send(newHTMLMessage(chatID, render(q.Hint, q.Solution)))
}
