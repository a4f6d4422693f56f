package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aliskhannn/adaptive-quiz/internal/repository"
	"github.com/aliskhannn/adaptive-quiz/internal/service"
	"github.com/aliskhannn/adaptive-quiz/internal/storage"
)

const testBank = `{
  "Mathematics": {
    "Fractions": [
      {"id": 1, "difficulty": "easy",   "question": "1/4 + 1/4 = ?", "answer": "1/2", "hint": "Add the numerators.", "solution": "2/4 = 1/2"},
      {"id": 2, "difficulty": "medium", "question": "2/3 of 9 = ?",  "answer": "6",   "hint": "Divide by 3 first.", "solution": "9/3*2 = 6"}
    ],
    "Geometry": []
  },
  "Science": {
    "Cells": [
      {"id": 7, "difficulty": "medium", "question": "Powerhouse of the cell?", "answer": "mitochondria", "hint": "h", "solution": "s"}
    ]
  }
}`

const cookieName = "quiz_session"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bank, err := repository.ParseQuestionBank([]byte(testBank))
	if err != nil {
		t.Fatal(err)
	}

	cfg := service.DefaultAdaptiveConfig()
	store := storage.NewLearnerStorage(time.Hour, service.NewLearnerFactory(bank, cfg.Mastery.InitialMastery))
	selector := service.NewTopicSelector(rand.New(rand.NewSource(1)), cfg.GreedyProbability)
	log := zap.NewNop()

	h := NewHandler(
		service.NewPracticeService(bank, store, nil, selector, cfg, log),
		service.NewReportService(bank, store, cfg),
		log,
	)

	return NewRouter(RouterConfig{
		Handler:     h,
		Logger:      log,
		CORSOrigins: []string{"http://localhost:3000"},
		CookieName:  cookieName,
	})
}

func do(t *testing.T, r *gin.Engine, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestNextQuestionSetsSessionAndReturnsReasoning(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/next_question?subject=Mathematics&topic=Fractions", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	sessionCookie(t, rec)

	got := decode[questionResponse](t, rec)
	if got.Status != "continue" || got.QuestionID != 2 || got.Difficulty != "medium" || got.Strategy != "forced" {
		t.Fatalf("unexpected body: %+v", got)
	}
	if got.PredictedSuccess != 0.57 || got.AIReasoning.TopicReasoning != "User-selected topic" {
		t.Fatalf("unexpected prediction: %+v", got)
	}
	if got.Hint != "" {
		t.Fatal("hint leaked without show_hint")
	}
}

func TestSubmitKeepsSessionState(t *testing.T) {
	r := newTestRouter(t)

	first := do(t, r, http.MethodGet, "/api/state", "", nil)
	cookie := sessionCookie(t, first)

	for i := 0; i < 3; i++ {
		rec := do(t, r, http.MethodPost, "/api/submit", `{"topic":"Fractions","correct":true}`, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if i == 2 {
			got := decode[submitResponse](t, rec)
			if got.UpdatedMastery != 65 || got.Difficulty != "medium" || got.Subject != "Mathematics" {
				t.Fatalf("unexpected body: %+v", got)
			}
		}
	}

	rec := do(t, r, http.MethodGet, "/api/state", "", cookie)
	state := decode[stateResponse](t, rec)
	if len(state.History) != 3 || state.Subjects["Mathematics"]["Fractions"].Mastery != 65 {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestSubmitWithAnswer(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/submit", `{"question_id":1,"answer":"3/4"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decode[submitResponse](t, rec)
	if got.Correct || got.Solution != "2/4 = 1/2" || got.UpdatedMastery != 47 {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestErrorsUseEnvelope(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown subject", http.MethodGet, "/api/next_question?subject=History", "", http.StatusNotFound, "unknown_subject"},
		{"unknown topic", http.MethodGet, "/api/practice/Mathematics/Algebra", "", http.StatusNotFound, "unknown_topic"},
		{"no questions", http.MethodGet, "/api/practice/Mathematics/Geometry", "", http.StatusNotFound, "no_questions"},
		{"subject required", http.MethodGet, "/api/next_question", "", http.StatusBadRequest, "subject_required"},
		{"malformed body", http.MethodPost, "/api/submit", `{"topic":`, http.StatusBadRequest, "invalid_body"},
		{"missing result", http.MethodPost, "/api/submit", `{"topic":"Fractions"}`, http.StatusBadRequest, "invalid_submission"},
		{"unknown report", http.MethodGet, "/api/subject_report/History", "", http.StatusNotFound, "unknown_subject"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, r, tc.method, tc.target, tc.body, nil)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tc.status, rec.Body.String())
			}
			got := decode[ErrorEnvelope](t, rec)
			if got.Error.Code != tc.code || got.Error.Message == "" {
				t.Fatalf("unexpected envelope: %+v", got)
			}
		})
	}
}

func TestPracticeGraduated(t *testing.T) {
	r := newTestRouter(t)

	first := do(t, r, http.MethodGet, "/api/subjects", "", nil)
	cookie := sessionCookie(t, first)
	for i := 0; i < 10; i++ {
		do(t, r, http.MethodPost, "/api/submit", `{"subject":"Science","topic":"Cells","correct":true}`, cookie)
	}

	rec := do(t, r, http.MethodGet, "/api/practice/Science/Cells", "", cookie)
	got := decode[graduatedResponse](t, rec)
	if rec.Code != http.StatusOK || got.Status != "graduated" || got.Topic != "Cells" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, got)
	}
}

func TestSubjectReport(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/subject_report/Mathematics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[reportResponse](t, rec)
	if got.FocusTopic != "Fractions" || got.MasteryOverview["Geometry"] != 50 || got.Strengths == nil {
		t.Fatalf("unexpected report: %+v", got)
	}
}

func TestSubjectsList(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/subjects", "", nil)

	got := decode[struct {
		Subjects []subjectResponse `json:"subjects"`
	}](t, rec)
	if len(got.Subjects) != 2 || got.Subjects[1].Name != "Science" {
		t.Fatalf("unexpected subjects: %+v", got)
	}
}

func TestInvalidSessionCookieIsReplaced(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/state", "", &http.Cookie{Name: cookieName, Value: "not-a-uuid"})
	if c := sessionCookie(t, rec); c.Value == "not-a-uuid" {
		t.Fatal("invalid session id was accepted")
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/submit", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow-origin header: got=%q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("credentials not allowed: %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("%w: History", service.ErrUnknownSubject), http.StatusNotFound, "unknown_subject"},
		{fmt.Errorf("%w: Algebra", service.ErrUnknownTopic), http.StatusNotFound, "unknown_topic"},
		{service.ErrNoQuestionsAvailable, http.StatusNotFound, "no_questions"},
		{service.ErrInvalidSubmission, http.StatusBadRequest, "invalid_submission"},
		{fmt.Errorf("%w: s1", service.ErrConcurrentUpdate), http.StatusConflict, "conflict"},
		{errors.New("redis down"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		status, code := statusFor(tt.err)
		if status != tt.wantStatus || code != tt.wantCode {
			t.Errorf("statusFor(%v) = %d %q, want %d %q", tt.err, status, code, tt.wantStatus, tt.wantCode)
		}
	}
}
