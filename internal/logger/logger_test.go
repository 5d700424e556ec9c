package logger

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingWritesLocalLines(t *testing.T) {
	var out bytes.Buffer

	lg := NewLocalLogging(&out, logging.Default)
	l := lg.NewLogger("")

	l.Debugf("payload %s", "{}")
	l.Infof("incident %v", "abc123")
	l.Criticalf("Billing disabled for project %s.", "my-project")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[debug] payload {}", lines[0])
	assert.Equal(t, "[info] incident abc123", lines[1])
	assert.Equal(t, "[critical] Billing disabled for project my-project.", lines[2])
	assert.Equal(t, logging.Critical, l.Severity())
}

func TestLoggingFiltersBelowMinSeverity(t *testing.T) {
	var out bytes.Buffer

	lg := NewLocalLogging(&out, logging.Warning)
	l := lg.NewLogger("")

	l.Debugf("hidden")
	l.Infof("hidden")
	l.Warningf("shown")

	assert.Equal(t, "[warning] shown\n", out.String())
}

func TestNewLoggerUsesTraceHeader(t *testing.T) {
	lg := NewLocalLogging(&bytes.Buffer{}, logging.Default)

	l := lg.NewLogger("105445aa7843bc8bf206b12000100000/1;o=1")
	assert.True(t, strings.HasSuffix(l.Trace(), "/traces/105445aa7843bc8bf206b12000100000"))

	zero := lg.NewLogger("00000000000000000000000000000000/1")
	assert.NotContains(t, zero.Trace(), "00000000000000000000000000000000")
	assert.NotEqual(t, l.Trace(), zero.Trace())
}

func TestMiddlewareStoresLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	lg := NewLocalLogging(&bytes.Buffer{}, logging.Default)

	var fromRequest, fromGin ILogger

	engine := gin.New()
	engine.Use(lg.Middleware())
	engine.GET("/", func(ctx *gin.Context) {
		fromRequest, _ = FromContext(ctx.Request.Context())
		fromGin, _ = FromContext(ctx)
		ctx.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "test987/uselessSuffix?")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, fromRequest)
	assert.Same(t, fromRequest, fromGin)
	assert.True(t, strings.HasSuffix(fromRequest.Trace(), "/traces/test987"))
}

func TestLoggerProviderFallsBackToNewLogger(t *testing.T) {
	lg := NewLocalLogging(&bytes.Buffer{}, logging.Default)

	l := lg.Logger(context.Background())
	assert.NotNil(t, l)

	stored := lg.NewLogger("")
	assert.Same(t, stored, lg.Logger(NewContext(context.Background(), stored)))
}
