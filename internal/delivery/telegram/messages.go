package telegram

import (
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/adaptive-quiz/internal/service"
)

const (
	msgWelcome = "👋 <b>Adaptive practice</b>\n\n" +
		"I pick questions that match your level and focus on the topics you find hardest.\n\n" +
		msgCommands

	msgCommands = "/subjects - list subjects and topics\n" +
		"/practice &lt;subject&gt; [topic] - get a question\n" +
		"/report &lt;subject&gt; - see your mastery\n" +
		"/help - show this message"

	msgSubjectRequired   = "Choose a subject: /practice &lt;subject&gt; [topic].\nSee /subjects for the list."
	msgUnknownSubject    = "Unknown subject. See /subjects for the list."
	msgUnknownTopic      = "Unknown topic for this subject. See /subjects for the list."
	msgNoQuestions       = "There are no questions for this topic yet."
	msgNoPendingQuestion = "There is no open question. Send /practice to get one."
	msgEmptyAnswer       = "Reply with your answer as text."
	msgQuestionExpired   = "This question is no longer available."
	msgNoHint            = "There is no hint for this question."
	msgNoSolution        = "There is no worked solution for this question."
	msgInternalError     = "Something went wrong. Please try again later."
	msgTryAgain          = "Your progress was updated elsewhere at the same time. Please try again."
	msgUnknownCommand    = "Unknown command.\n\n" + msgCommands
)

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func renderSubjects(subjects []service.SubjectInfo) string {
	if len(subjects) == 0 {
		return "No subjects are available."
	}

	var b strings.Builder
	b.WriteString("📚 <b>Subjects</b>\n")
	for _, s := range subjects {
		fmt.Fprintf(&b, "\n<b>%s</b>\n", esc(s.Name))
		for _, t := range s.Topics {
			fmt.Fprintf(&b, "• %s\n", esc(t))
		}
	}
	return b.String()
}

func renderQuestion(q *service.NextQuestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s · %s</b> (%s)\n\n", esc(q.Subject), esc(q.Topic), q.Question.Difficulty)
	b.WriteString(esc(q.Question.Prompt))
	fmt.Fprintf(&b, "\n\n<i>Mastery %d%%, predicted success %.0f%%</i>", q.Mastery, q.PredictedSuccess*100)
	fmt.Fprintf(&b, "\n<i>%s</i>", esc(q.Reasoning.Topic))
	b.WriteString("\n\nReply with your answer.")
	return b.String()
}

func renderGraduated(subject, topic string) string {
	if topic != "" {
		return fmt.Sprintf("🎓 You have fully mastered <b>%s</b> in %s.", esc(topic), esc(subject))
	}
	return fmt.Sprintf("🎓 You have fully mastered every topic in <b>%s</b>.", esc(subject))
}

func renderResult(r *service.SubmissionResult) string {
	var b strings.Builder
	if r.Correct {
		b.WriteString("✅ <b>Correct!</b>\n")
	} else {
		b.WriteString("❌ <b>Not quite.</b>\n")
	}
	b.WriteString(esc(r.Feedback))
	fmt.Fprintf(&b, "\n\n%s mastery: <b>%d%%</b>, next difficulty: %s",
		esc(r.Topic), r.UpdatedMastery, r.NextDifficulty)

	if r.ShowHint && r.Hint != "" {
		fmt.Fprintf(&b, "\n\n💡 %s", esc(r.Hint))
	}
	if r.Graduated {
		b.WriteString("\n\n" + renderGraduated(r.Subject, r.Topic))
	}
	return b.String()
}

func renderReport(r *service.SubjectReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s</b>\n\n", esc(r.Subject))

	topics := make([]string, 0, len(r.MasteryOverview))
	for t := range r.MasteryOverview {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	for _, t := range topics {
		fmt.Fprintf(&b, "%s %s: %d%%\n", progressBar(r.MasteryOverview[t]), esc(t), r.MasteryOverview[t])
	}

	if len(r.Strengths) > 0 {
		fmt.Fprintf(&b, "\n💪 Strengths: %s", esc(strings.Join(r.Strengths, ", ")))
	}
	if len(r.WeakAreas) > 0 {
		fmt.Fprintf(&b, "\n📉 Weak areas: %s", esc(strings.Join(r.WeakAreas, ", ")))
	}
	if r.FocusTopic != "" {
		fmt.Fprintf(&b, "\n\n🎯 Focus next on <b>%s</b>\n<i>%s</i>", esc(r.FocusTopic), esc(r.Reasoning))
	}
	return b.String()
}

// progressBar renders mastery as five cells.
func progressBar(mastery int) string {
	filled := mastery / 20
	if filled > 5 {
		filled = 5
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 5-filled)
}
