package domain

import "fmt"

// DisableOutcome is the result class of a billing detach attempt
type DisableOutcome int

const (
	OutcomeFailed DisableOutcome = iota
	OutcomeDisabled
	OutcomePermissionDenied
)

func (o DisableOutcome) String() string {
	switch o {
	case OutcomeDisabled:
		return "disabled"
	case OutcomePermissionDenied:
		return "permission_denied"
	default:
		return "failed"
	}
}

// ProjectResourceName returns the Cloud Billing resource name of a project
func ProjectResourceName(projectID string) string {
	return fmt.Sprintf("projects/%s", projectID)
}
