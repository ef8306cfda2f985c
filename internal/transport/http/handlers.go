package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sustainability-quiz-service/internal/app"
	"sustainability-quiz-service/internal/domain"
	"sustainability-quiz-service/internal/logger"
)

const (
	defaultLimit = 10
	maxLimit     = app.ExportLimit
	defaultDays  = 7
	maxDays      = 365
)

// Handler serves the quiz, analytics and auth endpoints.
type Handler struct {
	quiz      *app.QuizService
	analytics *app.AnalyticsService
	auth      *app.AuthService
	log       *logger.Logger
}

func NewHandler(quiz *app.QuizService, analytics *app.AnalyticsService, auth *app.AuthService, log *logger.Logger) *Handler {
	return &Handler{quiz: quiz, analytics: analytics, auth: auth, log: log.With("component", "http")}
}

type startRequest struct {
	SessionID      string `json:"sessionId" binding:"required"`
	Age            int    `json:"age" binding:"required,min=16,max=100"`
	Gender         string `json:"gender" binding:"required,quizgender"`
	TotalQuestions int    `json:"totalQuestions" binding:"required,min=1"`
}

type responseRequest struct {
	SessionID      string   `json:"sessionId" binding:"required"`
	QuestionNumber int      `json:"questionNumber" binding:"required,min=1"`
	QuestionID     int      `json:"questionId" binding:"required,min=1"`
	QuestionText   string   `json:"questionText" binding:"required"`
	Answer         string   `json:"answer" binding:"required,oneof=yes no"`
	Reasons        []string `json:"reasons" binding:"dive,max=200"`
}

type completeRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

const (
	msgInvalidSession  = "Invalid session data"
	msgInvalidResponse = "Invalid response data"
	msgInvalidID       = "Invalid session ID"
)

func (h *Handler) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handler) questions(c *gin.Context) {
	qs, err := h.quiz.Questions(c.Request.Context())
	if err != nil {
		h.respondError(c, "load questions", "Invalid request", "Failed to fetch questions", err)
		return
	}
	c.JSON(http.StatusOK, qs)
}

func (h *Handler) startSession(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgInvalidSession})
		return
	}
	session, err := h.quiz.StartSession(c.Request.Context(), domain.NewSession{
		SessionID:      req.SessionID,
		Age:            req.Age,
		Gender:         req.Gender,
		TotalQuestions: req.TotalQuestions,
	})
	if err != nil {
		h.respondError(c, "start session", msgInvalidSession, "Failed to start session", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) recordResponse(c *gin.Context) {
	var req responseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgInvalidResponse})
		return
	}
	resp, err := h.quiz.RecordResponse(c.Request.Context(), domain.NewResponse{
		SessionID:      req.SessionID,
		QuestionNumber: req.QuestionNumber,
		QuestionID:     req.QuestionID,
		QuestionText:   req.QuestionText,
		Answer:         domain.Answer(req.Answer),
		Reasons:        req.Reasons,
	})
	if err != nil {
		h.respondError(c, "record response", msgInvalidResponse, "Failed to record response", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) completeSession(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: msgInvalidID})
		return
	}
	if err := h.quiz.CompleteSession(c.Request.Context(), req.SessionID); err != nil {
		h.respondError(c, "complete session", msgInvalidID, "Failed to complete session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) sessionResponses(c *gin.Context) {
	rs, err := h.quiz.SessionResponses(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.respondError(c, "list responses", msgInvalidID, "Failed to fetch responses", err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (h *Handler) overview(c *gin.Context) {
	v, err := h.analytics.Overview(c.Request.Context())
	if err != nil {
		h.respondError(c, "overview", "Invalid request", "Failed to fetch analytics", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) demographics(c *gin.Context) {
	v, err := h.analytics.Demographics(c.Request.Context())
	if err != nil {
		h.respondError(c, "demographics", "Invalid request", "Failed to fetch demographics", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) questionStats(c *gin.Context) {
	v, err := h.analytics.QuestionStats(c.Request.Context())
	if err != nil {
		h.respondError(c, "question stats", "Invalid request", "Failed to fetch question stats", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) recent(c *gin.Context) {
	limit := queryInt(c, "limit", defaultLimit, maxLimit)
	v, err := h.analytics.RecentResponses(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, "recent responses", "Invalid request", "Failed to fetch recent responses", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) reasons(c *gin.Context) {
	v, err := h.analytics.TopReasons(c.Request.Context())
	if err != nil {
		h.respondError(c, "top reasons", "Invalid request", "Failed to fetch reasons", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) trend(c *gin.Context) {
	days := queryInt(c, "days", defaultDays, maxDays)
	v, err := h.analytics.Trend(c.Request.Context(), days)
	if err != nil {
		h.respondError(c, "trend", "Invalid request", "Failed to fetch trend", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) simpleStats(c *gin.Context) {
	v, err := h.analytics.SimpleStats(c.Request.Context())
	if err != nil {
		h.respondError(c, "simple stats", "Invalid request", "Failed to fetch statistics", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) detailedQuestionStats(c *gin.Context) {
	v, err := h.analytics.DetailedQuestionStats(c.Request.Context())
	if err != nil {
		h.respondError(c, "detailed question stats", "Invalid request", "Failed to fetch question statistics", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) exportCSV(c *gin.Context) {
	rows, err := h.analytics.ExportCSVRows(c.Request.Context())
	if err != nil {
		h.respondError(c, "export rows", "Invalid request", "Failed to generate export", err)
		return
	}
	data, err := app.ExportCSV(rows)
	if err != nil {
		h.respondError(c, "render csv", "Invalid request", "Failed to generate export", err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+app.ExportFilename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid login data"})
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, "login", "Invalid login data", "Failed to log in", err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *Handler) currentUser(c *gin.Context) {
	p, ok := PrincipalFrom(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
		return
	}
	u, err := h.auth.CurrentUser(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, "current user", "Invalid request", "Failed to fetch user", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// queryInt reads a positive integer parameter. Missing or unparsable values yield def; values above max are clamped.
func queryInt(c *gin.Context, key string, def, max int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
