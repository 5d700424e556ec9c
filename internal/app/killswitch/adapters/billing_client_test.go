package adapters

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/billing/apiv1/billingpb"
	"cloud.google.com/go/logging"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/domain"
	"github.com/wuyiadepoju/billing-killswitch/internal/logger"
)

// MockUpdater is a mock implementation of ProjectBillingUpdater
type MockUpdater struct {
	mock.Mock
}

func (m *MockUpdater) UpdateProjectBillingInfo(ctx context.Context, req *billingpb.UpdateProjectBillingInfoRequest, opts ...gax.CallOption) (*billingpb.ProjectBillingInfo, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingpb.ProjectBillingInfo), args.Error(1)
}

func detachRequestFor(projectID string) interface{} {
	return mock.MatchedBy(func(req *billingpb.UpdateProjectBillingInfoRequest) bool {
		return req.GetName() == "projects/"+projectID &&
			req.GetProjectBillingInfo() != nil &&
			req.GetProjectBillingInfo().GetBillingAccountName() == ""
	})
}

func newTestClient(updater ProjectBillingUpdater, timeout time.Duration) (*CloudBillingClient, *bytes.Buffer) {
	var out bytes.Buffer
	lg := logger.NewLocalLogging(&out, logging.Default)

	return NewCloudBillingClient(updater, lg.Logger, timeout), &out
}

func TestDisableBilling_Success(t *testing.T) {
	ctx := context.Background()
	updater := new(MockUpdater)
	client, out := newTestClient(updater, 0)

	updater.On("UpdateProjectBillingInfo", mock.Anything, detachRequestFor("my-project")).
		Return(&billingpb.ProjectBillingInfo{Name: "projects/my-project/billingInfo", ProjectId: "my-project"}, nil).
		Once()

	outcome, err := client.DisableBilling(ctx, "my-project")

	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomeDisabled, outcome)
	assert.Contains(t, out.String(), "[critical] Billing disabled for project my-project.")
	updater.AssertExpectations(t)
}

func TestDisableBilling_PermissionDenied(t *testing.T) {
	ctx := context.Background()
	updater := new(MockUpdater)
	client, out := newTestClient(updater, 0)

	updater.On("UpdateProjectBillingInfo", mock.Anything, detachRequestFor("my-project")).
		Return(nil, status.Error(codes.PermissionDenied, "caller lacks billing.resourceAssociations.delete"))

	outcome, err := client.DisableBilling(ctx, "my-project")

	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomePermissionDenied, outcome)
	assert.Contains(t, out.String(), "[error] Failed to disable billing, check permissions.")
	assert.NotContains(t, out.String(), "[critical]")
}

func TestDisableBilling_OtherErrorsPropagate(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{name: "grpc unavailable", err: status.Error(codes.Unavailable, "connection refused")},
		{name: "grpc not found", err: status.Error(codes.NotFound, "project not found")},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			updater := new(MockUpdater)
			client, _ := newTestClient(updater, 0)

			updater.On("UpdateProjectBillingInfo", mock.Anything, mock.Anything).Return(nil, tc.err)

			outcome, err := client.DisableBilling(context.Background(), "my-project")

			require.Error(t, err)
			assert.Equal(t, domain.OutcomeFailed, outcome)
			assert.ErrorIs(t, err, domain.ErrBillingUpdate)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestDisableBilling_EmptyProjectID(t *testing.T) {
	updater := new(MockUpdater)
	client, _ := newTestClient(updater, 0)

	outcome, err := client.DisableBilling(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrEmptyProjectID)
	assert.Equal(t, domain.OutcomeFailed, outcome)
	updater.AssertNotCalled(t, "UpdateProjectBillingInfo", mock.Anything, mock.Anything)
}

func TestDisableBilling_AppliesTimeout(t *testing.T) {
	updater := new(MockUpdater)
	client, _ := newTestClient(updater, 5*time.Second)

	updater.On("UpdateProjectBillingInfo", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 5*time.Second
	}), mock.Anything).Return(&billingpb.ProjectBillingInfo{}, nil).Once()

	outcome, err := client.DisableBilling(context.Background(), "my-project")

	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomeDisabled, outcome)
	updater.AssertExpectations(t)
}
