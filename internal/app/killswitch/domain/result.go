package domain

import "net/http"

// Response bodies returned to the push endpoint caller
const (
	BodyBillingDisabled       = "Billing disabled"
	BodyNoIncidentData        = "No incident data"
	BodyInvalidIncidentFormat = "Invalid incident format"
	BodyError                 = "Error"
)

// Result is what a handled notification maps to. Err stays server side.
type Result struct {
	Body   string
	Status int
	Err    error
}

func (r Result) OK() bool {
	return r.Status == http.StatusOK
}
