package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/aliskhannn/adaptive-quiz/internal/service"
	"github.com/aliskhannn/adaptive-quiz/internal/storage"
)

func (h *Handler) practiceHandler(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		subject, topic, ok := parseSubjectArgs(h.reports.Subjects(), args)
		if !ok {
			h.send(newHTMLMessage(chatID, msgSubjectRequired))
			return nil
		}
		return h.sendNextQuestion(ctx, chatID, userID, subject, topic)
	}
}

func (h *Handler) reportHandler(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		subject, _, ok := parseSubjectArgs(h.reports.Subjects(), args)
		if !ok {
			h.send(newHTMLMessage(chatID, msgSubjectRequired))
			return nil
		}

		report, err := h.reports.SubjectReport(ctx, sessionID(userID), subject)
		if err != nil {
			if text, ok := userMessage(err); ok {
				h.send(newHTMLMessage(chatID, text))
				return nil
			}
			return err
		}

		h.send(newHTMLMessage(chatID, renderReport(report)))
		return nil
	}
}

// answerHandler checks a plain text message against the pending question.
func (h *Handler) answerHandler(userID int64, text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		answer := strings.TrimSpace(text)
		if answer == "" {
			h.send(newHTMLMessage(chatID, msgEmptyAnswer))
			return nil
		}

		p, ok := h.pending.Take(userID)
		if !ok {
			h.send(newHTMLMessage(chatID, msgNoPendingQuestion))
			return nil
		}

		res, err := h.practice.Submit(ctx, sessionID(userID), service.Submission{
			Subject:    p.Subject,
			Topic:      p.Topic,
			QuestionID: p.QuestionID,
			Answer:     &answer,
		})
		if err != nil {
			if text, ok := userMessage(err); ok {
				h.send(newHTMLMessage(chatID, text))
				return nil
			}
			h.pending.Store(userID, p)
			return err
		}

		msg := newHTMLMessage(chatID, renderResult(res))
		msg.ReplyMarkup = resultKeyboard(p.QuestionID, res.Correct, p.Subject, p.FocusTopic)
		h.send(msg)

		return nil
	}
}

func (h *Handler) sendNextQuestion(ctx context.Context, chatID, userID int64, subject, topic string) error {
	q, err := h.practice.NextQuestion(ctx, sessionID(userID), subject, topic)
	if err != nil {
		if text, ok := userMessage(err); ok {
			h.send(newHTMLMessage(chatID, text))
			return nil
		}
		return err
	}

	if q.Status == service.StatusGraduated {
		h.send(newHTMLMessage(chatID, renderGraduated(q.Subject, q.Topic)))
		return nil
	}

	h.pending.Store(userID, storage.PendingQuestion{
		QuestionID: q.Question.ID,
		Subject:    q.Subject,
		Topic:      q.Topic,
		FocusTopic: topic,
		SentAt:     h.now(),
	})

	msg := newHTMLMessage(chatID, renderQuestion(q))
	if kb := questionKeyboard(q.Question.ID, q.ShowHint && q.Question.Hint != ""); kb != nil {
		msg.ReplyMarkup = kb
	}
	h.send(msg)

	return nil
}

// parseSubjectArgs splits "<subject> [topic]" where both names may contain spaces.
// The longest prefix naming a known subject wins; names match case-insensitively.
// With a single subject the arguments may name just a topic.
func parseSubjectArgs(subjects []service.SubjectInfo, args string) (subject, topic string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		if len(subjects) == 1 {
			return subjects[0].Name, "", true
		}
		return "", "", false
	}

	for n := len(fields); n > 0; n-- {
		candidate := strings.Join(fields[:n], " ")
		for _, s := range subjects {
			if strings.EqualFold(s.Name, candidate) {
				return s.Name, matchName(s.Topics, strings.Join(fields[n:], " ")), true
			}
		}
	}

	joined := strings.Join(fields, " ")
	if len(subjects) == 1 {
		return subjects[0].Name, matchName(subjects[0].Topics, joined), true
	}

	return joined, "", true
}

// matchName returns the canonical spelling of name, or name itself when unknown.
func matchName(names []string, name string) string {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n
		}
	}
	return name
}

func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrUnknownSubject):
		return msgUnknownSubject, true
	case errors.Is(err, service.ErrUnknownTopic):
		return msgUnknownTopic, true
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		return msgNoQuestions, true
	case errors.Is(err, service.ErrQuestionNotFound), errors.Is(err, service.ErrInvalidSubmission):
		return msgQuestionExpired, true
	case errors.Is(err, service.ErrConcurrentUpdate):
		return msgTryAgain, true
	default:
		return "", false
	}
}
