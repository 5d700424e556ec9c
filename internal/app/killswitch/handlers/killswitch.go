package handlers

import (
	"context"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/domain"
	"github.com/wuyiadepoju/billing-killswitch/internal/logger"
)

// NotificationExecutor handles a raw push body
type NotificationExecutor interface {
	Execute(ctx context.Context, body []byte) domain.Result
}

// KillSwitch serves the push endpoint that disables billing
type KillSwitch struct {
	executor       NotificationExecutor
	loggerProvider logger.Provider
}

// NewKillSwitch creates the push endpoint handler
func NewKillSwitch(executor NotificationExecutor, loggerProvider logger.Provider) *KillSwitch {
	return &KillSwitch{
		executor:       executor,
		loggerProvider: loggerProvider,
	}
}

// Handle accepts any method on any path. An unreadable body is handled
// as an absent one.
func (h *KillSwitch) Handle(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	body, err := ctx.GetRawData()
	if err != nil {
		h.loggerProvider(reqCtx).Warningf("failed to read request body: %s", err)
		body = nil
	}

	res := h.executor.Execute(reqCtx, body)

	if res.Err != nil && res.Status >= http.StatusInternalServerError {
		if hub := sentrygin.GetHubFromContext(ctx); hub != nil {
			hub.CaptureException(res.Err)
		}
	}

	ctx.String(res.Status, res.Body)
}
