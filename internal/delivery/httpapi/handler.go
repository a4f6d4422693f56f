package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errSubjectRequired = errors.New("subject is required")

// Handler serves the practice API.
type Handler struct {
	practice PracticeService
	reports  ReportService
	logger   *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(practice PracticeService, reports ReportService, logger *zap.Logger) *Handler {
	return &Handler{
		practice: practice,
		reports:  reports,
		logger:   logger,
	}
}

// NextQuestion handles GET /api/next_question?subject=S&topic=T.
func (h *Handler) NextQuestion(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		subject = h.defaultSubject()
	}
	if subject == "" {
		respondError(c, http.StatusBadRequest, "subject_required", errSubjectRequired)
		return
	}

	h.serveQuestion(c, subject, c.Query("topic"))
}

// Practice handles GET /api/practice/:subject/:topic.
func (h *Handler) Practice(c *gin.Context) {
	h.serveQuestion(c, c.Param("subject"), c.Param("topic"))
}

func (h *Handler) serveQuestion(c *gin.Context, subject, topic string) {
	nq, err := h.practice.NextQuestion(c.Request.Context(), sessionID(c), subject, topic)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, newQuestionResponse(nq))
}

// Submit handles POST /api/submit.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	res, err := h.practice.Submit(c.Request.Context(), sessionID(c), serviceSubmission(req))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, newSubmitResponse(res))
}

// SubjectReport handles GET /api/subject_report/:subject.
func (h *Handler) SubjectReport(c *gin.Context) {
	r, err := h.reports.SubjectReport(c.Request.Context(), sessionID(c), c.Param("subject"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, newReportResponse(r))
}

// Subjects handles GET /api/subjects.
func (h *Handler) Subjects(c *gin.Context) {
	subjects := h.reports.Subjects()
	out := make([]subjectResponse, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, subjectResponse{Name: s.Name, Topics: s.Topics})
	}

	c.JSON(http.StatusOK, gin.H{"subjects": out})
}

// State handles GET /api/state.
func (h *Handler) State(c *gin.Context) {
	snap, err := h.reports.Snapshot(c.Request.Context(), sessionID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, newStateResponse(snap))
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// defaultSubject returns the only subject of the bank, or "" when there are several.
func (h *Handler) defaultSubject() string {
	subjects := h.reports.Subjects()
	if len(subjects) == 1 {
		return subjects[0].Name
	}
	return ""
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("session_id", sessionID(c)),
			zap.Error(err),
		)
		respondError(c, status, code, errors.New("internal error"))
		return
	}

	_ = c.Error(err)
	respondError(c, status, code, err)
}
