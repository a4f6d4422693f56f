package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/adaptive-quiz/internal/domain/entities"
	"github.com/aliskhannn/adaptive-quiz/internal/service"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// statusFor maps service errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnknownSubject):
		return http.StatusNotFound, "unknown_subject"
	case errors.Is(err, service.ErrUnknownTopic):
		return http.StatusNotFound, "unknown_topic"
	case errors.Is(err, service.ErrQuestionNotFound):
		return http.StatusNotFound, "question_not_found"
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		return http.StatusNotFound, "no_questions"
	case errors.Is(err, service.ErrInvalidSubmission):
		return http.StatusBadRequest, "invalid_submission"
	case errors.Is(err, service.ErrConcurrentUpdate):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

type aiReasoning struct {
	TopicReasoning      string `json:"topic_reasoning"`
	DifficultyReasoning string `json:"difficulty_reasoning"`
	MLReasoning         string `json:"ml_reasoning"`
	HintReasoning       string `json:"hint_reasoning"`
}

type questionResponse struct {
	Status           string      `json:"status"`
	Subject          string      `json:"subject"`
	Topic            string      `json:"topic"`
	QuestionID       int         `json:"question_id"`
	Question         string      `json:"question"`
	Difficulty       string      `json:"difficulty"`
	TargetDifficulty string      `json:"target_difficulty"`
	Mastery          int         `json:"mastery"`
	PredictedSuccess float64     `json:"predicted_success"`
	ShowHint         bool        `json:"show_hint"`
	Hint             string      `json:"hint,omitempty"`
	Strategy         string      `json:"strategy"`
	AIReasoning      aiReasoning `json:"ai_reasoning"`
}

type graduatedResponse struct {
	Status  string `json:"status"`
	Subject string `json:"subject"`
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message"`
}

func newQuestionResponse(nq *service.NextQuestion) any {
	if nq.Status == service.StatusGraduated {
		msg := "Every topic of " + nq.Subject + " is mastered"
		if nq.Topic != "" {
			msg = nq.Topic + " is mastered"
		}
		return graduatedResponse{
			Status:  nq.Status,
			Subject: nq.Subject,
			Topic:   nq.Topic,
			Message: msg,
		}
	}

	resp := questionResponse{
		Status:           nq.Status,
		Subject:          nq.Subject,
		Topic:            nq.Topic,
		QuestionID:       nq.Question.ID,
		Question:         nq.Question.Prompt,
		Difficulty:       string(nq.Question.Difficulty),
		TargetDifficulty: string(nq.TargetDifficulty),
		Mastery:          nq.Mastery,
		PredictedSuccess: nq.PredictedSuccess,
		ShowHint:         nq.ShowHint,
		Strategy:         string(nq.Strategy),
		AIReasoning: aiReasoning{
			TopicReasoning:      nq.Reasoning.Topic,
			DifficultyReasoning: nq.Reasoning.Difficulty,
			MLReasoning:         nq.Reasoning.Prediction,
			HintReasoning:       nq.Reasoning.Hint,
		},
	}
	if nq.ShowHint {
		resp.Hint = nq.Question.Hint
	}
	return resp
}

type submitRequest struct {
	Subject    string  `json:"subject"`
	Topic      string  `json:"topic"`
	Correct    *bool   `json:"correct"`
	QuestionID int     `json:"question_id"`
	Answer     *string `json:"answer"`
}

func serviceSubmission(req submitRequest) service.Submission {
	return service.Submission{
		Subject:    req.Subject,
		Topic:      req.Topic,
		Correct:    req.Correct,
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
	}
}

type submitResponse struct {
	Subject          string `json:"subject"`
	Topic            string `json:"topic"`
	Correct          bool   `json:"correct"`
	UpdatedMastery   int    `json:"updated_mastery"`
	Difficulty       string `json:"difficulty"`
	ShowHint         bool   `json:"show_hint"`
	Hint             string `json:"hint,omitempty"`
	LearningFeedback string `json:"learning_feedback"`
	Solution         string `json:"solution,omitempty"`
	Graduated        bool   `json:"graduated"`
}

func newSubmitResponse(r *service.SubmissionResult) submitResponse {
	return submitResponse{
		Subject:          r.Subject,
		Topic:            r.Topic,
		Correct:          r.Correct,
		UpdatedMastery:   r.UpdatedMastery,
		Difficulty:       string(r.NextDifficulty),
		ShowHint:         r.ShowHint,
		Hint:             r.Hint,
		LearningFeedback: r.Feedback,
		Solution:         r.Solution,
		Graduated:        r.Graduated,
	}
}

type reportResponse struct {
	Subject         string         `json:"subject"`
	MasteryOverview map[string]int `json:"mastery_overview"`
	Strengths       []string       `json:"strengths"`
	WeakAreas       []string       `json:"weak_areas"`
	FocusTopic      string         `json:"focus_topic"`
	AIReasoning     string         `json:"ai_reasoning"`
}

func newReportResponse(r *service.SubjectReport) reportResponse {
	return reportResponse{
		Subject:         r.Subject,
		MasteryOverview: r.MasteryOverview,
		Strengths:       r.Strengths,
		WeakAreas:       r.WeakAreas,
		FocusTopic:      r.FocusTopic,
		AIReasoning:     r.Reasoning,
	}
}

type subjectResponse struct {
	Name   string   `json:"name"`
	Topics []string `json:"topics"`
}

type topicState struct {
	Mastery         int      `json:"mastery"`
	Attempts        int      `json:"attempts"`
	CorrectAttempts int      `json:"correct_attempts"`
	Accuracy        *float64 `json:"accuracy"`
	RecentResults   []bool   `json:"recent_results"`
	Difficulty      string   `json:"difficulty"`
}

type attemptEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Subject      string    `json:"subject"`
	Topic        string    `json:"topic"`
	QuestionID   int       `json:"question_id,omitempty"`
	Correct      bool      `json:"correct"`
	MasteryAfter int       `json:"mastery_after"`
}

type stateResponse struct {
	SessionID string                           `json:"session_id"`
	Subjects  map[string]map[string]topicState `json:"subjects"`
	History   []attemptEntry                   `json:"history"`
}

func newStateResponse(s *service.LearnerSnapshot) stateResponse {
	resp := stateResponse{
		SessionID: s.SessionID,
		Subjects:  make(map[string]map[string]topicState, len(s.Subjects)),
		History:   make([]attemptEntry, 0, len(s.History)),
	}

	for subject, topics := range s.Subjects {
		out := make(map[string]topicState, len(topics))
		for name, t := range topics {
			out[name] = topicState{
				Mastery:         t.Mastery,
				Attempts:        t.Attempts,
				CorrectAttempts: t.CorrectAttempts,
				Accuracy:        t.Accuracy,
				RecentResults:   t.RecentResults,
				Difficulty:      string(t.Difficulty),
			}
		}
		resp.Subjects[subject] = out
	}

	for _, rec := range s.History {
		resp.History = append(resp.History, newAttemptEntry(rec))
	}

	return resp
}

func newAttemptEntry(rec entities.AttemptRecord) attemptEntry {
	return attemptEntry{
		Timestamp:    rec.Timestamp,
		Subject:      rec.Subject,
		Topic:        rec.Topic,
		QuestionID:   rec.QuestionID,
		Correct:      rec.Correct,
		MasteryAfter: rec.MasteryAfter,
	}
}
