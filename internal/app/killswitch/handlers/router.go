package handlers

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/wuyiadepoju/billing-killswitch/internal/logger"
)

// NewRouter mounts the kill switch on every method and path.
func NewRouter(h *KillSwitch, lg *logger.Logging) *gin.Engine {
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		sentrygin.New(sentrygin.Options{Repanic: true}),
		lg.Middleware(),
	)

	engine.Any("/*path", h.Handle)

	return engine
}
