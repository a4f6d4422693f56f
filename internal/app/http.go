package app

import (
	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/adaptive-quiz/internal/delivery/httpapi"
)

// Router wires the HTTP handlers.
func (a *App) Router() *gin.Engine {
	a.Log.Info("wiring http router")

	if a.Cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	return httpapi.NewRouter(httpapi.RouterConfig{
		Handler:      httpapi.NewHandler(a.Practice, a.Reports, a.Log),
		Logger:       a.Log,
		CORSOrigins:  a.Cfg.HTTP.CORSOrigins,
		CookieName:   a.Cfg.HTTP.CookieName,
		CookieSecure: a.Cfg.HTTP.CookieSecure,
	})
}
