package http

import (
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"sustainability-quiz-service/internal/domain"
)

var registerOnce sync.Once

// registerValidators adds the quizgender binding rule to gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("quizgender", func(fl validator.FieldLevel) bool {
				return domain.ValidGender(fl.Field().String())
			})
		}
	})
}

// RouterConfig carries the HTTP-level settings.
type RouterConfig struct {
	CORSOrigins []string
}

// NewRouter wires every endpoint. Analytics and export require an admin principal.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.log))
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.GET("/healthz", h.health)

	api := r.Group("/api")

	quiz := api.Group("/quiz")
	quiz.GET("/questions", h.questions)
	quiz.POST("/start", h.startSession)
	quiz.POST("/response", h.recordResponse)
	quiz.POST("/complete", h.completeSession)
	quiz.GET("/session/:sessionId/responses", h.sessionResponses)

	stats := api.Group("/stats")
	stats.GET("/simple", h.simpleStats)
	stats.GET("/questions", h.detailedQuestionStats)

	auth := api.Group("/auth")
	auth.POST("/login", h.login)
	auth.GET("/user", RequireAuth(h.auth), h.currentUser)

	admin := api.Group("", RequireAuth(h.auth), RequireRole(domain.RoleAdmin))
	analytics := admin.Group("/analytics")
	analytics.GET("/overview", h.overview)
	analytics.GET("/demographics", h.demographics)
	analytics.GET("/questions", h.questionStats)
	analytics.GET("/recent", h.recent)
	analytics.GET("/reasons", h.reasons)
	analytics.GET("/trend", h.trend)
	admin.GET("/export/csv", h.exportCSV)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
