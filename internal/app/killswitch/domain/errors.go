package domain

import "errors"

var (
	ErrNoIncidentData        = errors.New("no incident data")
	ErrMalformedEnvelope     = errors.New("malformed push envelope")
	ErrBase64Decode          = errors.New("incident data is not valid base64")
	ErrTextDecode            = errors.New("incident data is not valid UTF-8")
	ErrPayloadParse          = errors.New("incident data is not valid JSON")
	ErrInvalidIncidentFormat = errors.New("invalid incident format")
	ErrMalformedIncident     = errors.New("incident is not a usable JSON object")
	ErrBillingUpdate         = errors.New("billing update failed")
	ErrPermissionDenied      = errors.New("permission denied disabling billing")
	ErrEmptyProjectID        = errors.New("project ID cannot be empty")
)
