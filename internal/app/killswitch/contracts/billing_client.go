package contracts

import (
	"context"

	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/domain"
)

// BillingClient defines the interface for external billing service interactions
type BillingClient interface {
	// DisableBilling detaches the billing account of the project.
	// A permission denied response is reported as OutcomePermissionDenied
	// with a nil error; any other failure returns OutcomeFailed and the error.
	DisableBilling(ctx context.Context, projectID string) (domain.DisableOutcome, error)
}
