package adapters

import (
	"context"
	"fmt"
	"time"

	billing "cloud.google.com/go/billing/apiv1"
	"cloud.google.com/go/billing/apiv1/billingpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/contracts"
	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/domain"
	"github.com/wuyiadepoju/billing-killswitch/internal/logger"
)

var _ contracts.BillingClient = (*CloudBillingClient)(nil)

// ProjectBillingUpdater is the part of the Cloud Billing API client used here
type ProjectBillingUpdater interface {
	UpdateProjectBillingInfo(ctx context.Context, req *billingpb.UpdateProjectBillingInfoRequest, opts ...gax.CallOption) (*billingpb.ProjectBillingInfo, error)
}

// CloudBillingClient implements the billing client interface using the Cloud Billing API
type CloudBillingClient struct {
	client         ProjectBillingUpdater
	loggerProvider logger.Provider
	timeout        time.Duration
}

// NewCloudBillingClient creates a new Cloud Billing client. A zero timeout
// leaves the deadline to the caller's context and the library defaults.
func NewCloudBillingClient(client ProjectBillingUpdater, loggerProvider logger.Provider, timeout time.Duration) *CloudBillingClient {
	return &CloudBillingClient{
		client:         client,
		loggerProvider: loggerProvider,
		timeout:        timeout,
	}
}

// DialCloudBilling opens the gRPC Cloud Billing client. endpoint may be empty.
func DialCloudBilling(ctx context.Context, endpoint string, opts ...option.ClientOption) (*billing.CloudBillingClient, error) {
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	client, err := billing.NewCloudBillingClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud billing client: %w", err)
	}

	return client, nil
}

// DisableBilling removes the billing account from the project
func (c *CloudBillingClient) DisableBilling(ctx context.Context, projectID string) (domain.DisableOutcome, error) {
	log := c.loggerProvider(ctx)

	if projectID == "" {
		return domain.OutcomeFailed, domain.ErrEmptyProjectID
	}

	req := &billingpb.UpdateProjectBillingInfoRequest{
		Name: domain.ProjectResourceName(projectID),
		ProjectBillingInfo: &billingpb.ProjectBillingInfo{
			// no billing account
			BillingAccountName: "",
		},
	}

	log.Debugf("Project Billing Info to update: %v", req.GetProjectBillingInfo())

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.UpdateProjectBillingInfo(ctx, req)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.PermissionDenied {
			log.Errorf("Failed to disable billing, check permissions. Error: %s", err)
			return domain.OutcomePermissionDenied, nil
		}

		return domain.OutcomeFailed, fmt.Errorf("%w for %s: %w", domain.ErrBillingUpdate, req.GetName(), err)
	}

	log.Infof("Disable billing response: %v", resp)
	log.Criticalf("Billing disabled for project %s.", projectID)

	return domain.OutcomeDisabled, nil
}
