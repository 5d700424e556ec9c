package domain

import "time"

// BillingDisabledEvent is emitted when the project's billing account was detached
type BillingDisabledEvent struct {
	ProjectID  string
	IncidentID any
	DisabledAt time.Time
}
