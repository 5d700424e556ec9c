package disable_billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/contracts"
	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/domain"
	"github.com/wuyiadepoju/billing-killswitch/internal/logger"
)

// Interactor handles the disable billing use case
type Interactor struct {
	billingClient     contracts.BillingClient
	loggerProvider    logger.Provider
	clock             domain.Clock
	projectID         string
	strictPermissions bool
}

// NewInteractor creates a new disable billing interactor. With
// strictPermissions set, a permission denied billing update is reported as
// an error instead of "Billing disabled".
func NewInteractor(billingClient contracts.BillingClient, loggerProvider logger.Provider, clock domain.Clock, projectID string, strictPermissions bool) *Interactor {
	return &Interactor{
		billingClient:     billingClient,
		loggerProvider:    loggerProvider,
		clock:             clock,
		projectID:         projectID,
		strictPermissions: strictPermissions,
	}
}

// Execute handles a Pub/Sub push body
func (i *Interactor) Execute(ctx context.Context, body []byte) (res domain.Result) {
	log := i.loggerProvider(ctx)

	defer i.recoverResult(log, &res)

	req, err := domain.ParsePushRequest(body)
	if err != nil {
		return i.fail(log, err)
	}

	if req.Message.MessageID != "" {
		log.SetLabel("message_id", req.Message.MessageID)
	}

	data, err := req.Message.DecodeData()
	if err != nil {
		return i.fail(log, err)
	}

	return i.process(ctx, log, data)
}

// Process handles an already decoded notification payload
func (i *Interactor) Process(ctx context.Context, data []byte) (res domain.Result) {
	log := i.loggerProvider(ctx)

	defer i.recoverResult(log, &res)

	return i.process(ctx, log, data)
}

func (i *Interactor) process(ctx context.Context, log logger.ILogger, data []byte) domain.Result {
	// 1. Decode and validate the incident
	notification, err := domain.ParseIncidentNotification(data)
	if err != nil {
		return i.fail(log, err)
	}

	log.Debugf("Decoded Incident: %s", notification.Pretty())

	incident := notification.Incident
	log.Infof("Valid incident received: %v", incident.ID())

	if policy := incident.PolicyName(); policy != "" {
		log.SetLabel("policy_name", policy)
	}

	// 2. Detach the billing account
	outcome, err := i.billingClient.DisableBilling(ctx, i.projectID)
	if err != nil {
		return i.fail(log, err)
	}

	// 3. Map the outcome
	switch outcome {
	case domain.OutcomeDisabled:
		event := domain.BillingDisabledEvent{
			ProjectID:  i.projectID,
			IncidentID: incident.ID(),
			DisabledAt: i.clock.Now(),
		}
		log.Infof("Billing disabled for project %s at %s, incident %v", event.ProjectID, event.DisabledAt.Format(time.RFC3339), event.IncidentID)
	case domain.OutcomePermissionDenied:
		if i.strictPermissions {
			return i.fail(log, domain.ErrPermissionDenied)
		}
		log.Warningf("Billing was not disabled for project %s: permission denied", i.projectID)
	default:
		return i.fail(log, fmt.Errorf("%w: unexpected outcome %s", domain.ErrBillingUpdate, outcome))
	}

	return domain.Result{Body: domain.BodyBillingDisabled, Status: http.StatusOK}
}

func (i *Interactor) fail(log logger.ILogger, err error) domain.Result {
	res := statusFor(err)

	switch {
	case res.Status >= http.StatusInternalServerError:
		log.Errorf("Error processing request: %s", err)
	case errors.Is(err, domain.ErrInvalidIncidentFormat):
		log.Warningf("Invalid incident structure received")
	default:
		log.Debugf("Rejected notification: %s", err)
	}

	return res
}

func (i *Interactor) recoverResult(log logger.ILogger, res *domain.Result) {
	if r := recover(); r != nil {
		*res = i.fail(log, fmt.Errorf("panic: %v", r))
	}
}

// statusFor maps a processing error to the response of the push endpoint
func statusFor(err error) domain.Result {
	switch {
	case errors.Is(err, domain.ErrNoIncidentData):
		return domain.Result{Body: domain.BodyNoIncidentData, Status: http.StatusBadRequest, Err: err}
	case errors.Is(err, domain.ErrInvalidIncidentFormat):
		return domain.Result{Body: domain.BodyInvalidIncidentFormat, Status: http.StatusBadRequest, Err: err}
	default:
		// ErrMalformedEnvelope, ErrBase64Decode, ErrTextDecode, ErrPayloadParse,
		// ErrMalformedIncident and billing errors
		return domain.Result{Body: domain.BodyError, Status: http.StatusInternalServerError, Err: err}
	}
}
