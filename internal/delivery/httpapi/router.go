package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig contains everything the router needs.
type RouterConfig struct {
	Handler      *Handler
	Logger       *zap.Logger
	CORSOrigins  []string
	CookieName   string
	CookieSecure bool
}

// NewRouter builds the gin engine with all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(CORS(cfg.CORSOrigins))
	}

	r.GET("/healthz", cfg.Handler.Health)

	api := r.Group("/api")
	api.Use(Session(cfg.CookieName, cfg.CookieSecure))
	{
		api.GET("/subjects", cfg.Handler.Subjects)
		api.GET("/next_question", cfg.Handler.NextQuestion)
		api.GET("/practice/:subject/:topic", cfg.Handler.Practice)
		api.POST("/submit", cfg.Handler.Submit)
		api.GET("/subject_report/:subject", cfg.Handler.SubjectReport)
		api.GET("/state", cfg.Handler.State)
	}

	return r
}
