package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/domain"
	"github.com/wuyiadepoju/billing-killswitch/internal/logger"
)

// MockExecutor is a mock implementation of NotificationExecutor
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, body []byte) domain.Result {
	args := m.Called(ctx, body)
	return args.Get(0).(domain.Result)
}

func newTestRouter(executor NotificationExecutor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	lg := logger.NewLocalLogging(&bytes.Buffer{}, logging.Default)

	return NewRouter(NewKillSwitch(executor, lg.Logger), lg)
}

func TestHandle_WritesResult(t *testing.T) {
	testCases := []struct {
		name   string
		method string
		path   string
		result domain.Result
	}{
		{
			name:   "billing disabled",
			method: http.MethodPost,
			path:   "/",
			result: domain.Result{Body: domain.BodyBillingDisabled, Status: http.StatusOK},
		},
		{
			name:   "no incident data on arbitrary path",
			method: http.MethodPut,
			path:   "/some/where",
			result: domain.Result{Body: domain.BodyNoIncidentData, Status: http.StatusBadRequest, Err: domain.ErrNoIncidentData},
		},
		{
			name:   "error hides cause",
			method: http.MethodPost,
			path:   "/push",
			result: domain.Result{Body: domain.BodyError, Status: http.StatusInternalServerError, Err: errors.New("secret detail")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			executor := new(MockExecutor)
			executor.On("Execute", mock.Anything, []byte(`{"message":{}}`)).Return(tc.result).Once()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{"message":{}}`))
			newTestRouter(executor).ServeHTTP(w, req)

			assert.Equal(t, tc.result.Status, w.Code)
			assert.Equal(t, tc.result.Body, w.Body.String())
			assert.NotContains(t, w.Body.String(), "secret")
			assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
			executor.AssertExpectations(t)
		})
	}
}

func TestHandle_PassesRequestLogger(t *testing.T) {
	executor := new(MockExecutor)
	executor.On("Execute", mock.MatchedBy(func(ctx context.Context) bool {
		l, ok := logger.FromContext(ctx)
		return ok && strings.HasSuffix(l.Trace(), "/traces/abc")
	}), mock.Anything).Return(domain.Result{Body: domain.BodyBillingDisabled, Status: http.StatusOK})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(logger.TraceHeader, "abc/1;o=1")
	newTestRouter(executor).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	executor.AssertExpectations(t)
}
