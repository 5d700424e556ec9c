package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Incident is the alerting incident object. Only its presence is validated,
// the fields are read for logging.
type Incident map[string]any

// IncidentNotification is the decoded payload of an alert notification
type IncidentNotification struct {
	Incident Incident
	Raw      json.RawMessage
}

// ParseIncidentNotification decodes a notification payload. The payload
// must be UTF-8 JSON. An object, array or string without an "incident"
// member yields ErrInvalidIncidentFormat. Only an object may carry the
// incident, and its value must itself be an object.
func ParseIncidentNotification(data []byte) (*IncidentNotification, error) {
	if !utf8.Valid(data) {
		return nil, ErrTextDecode
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadParse, err)
	}

	switch p := payload.(type) {
	case map[string]any:
		value, ok := p["incident"]
		if !ok {
			return nil, ErrInvalidIncidentFormat
		}

		incident, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrMalformedIncident, value)
		}

		return &IncidentNotification{Incident: incident, Raw: data}, nil
	case []any:
		for _, v := range p {
			if v == "incident" {
				return nil, fmt.Errorf("%w: payload is an array", ErrMalformedIncident)
			}
		}

		return nil, ErrInvalidIncidentFormat
	case string:
		if strings.Contains(p, "incident") {
			return nil, fmt.Errorf("%w: payload is a string", ErrMalformedIncident)
		}

		return nil, ErrInvalidIncidentFormat
	default:
		return nil, fmt.Errorf("%w: payload is %T", ErrPayloadParse, payload)
	}
}

// Pretty returns the indented payload, falling back to the raw bytes
func (n *IncidentNotification) Pretty() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, n.Raw, "", "  "); err != nil {
		return string(n.Raw)
	}

	return buf.String()
}

// ID returns incident_id, or nil when the incident has none
func (i Incident) ID() any {
	return i["incident_id"]
}

func (i Incident) PolicyName() string {
	return i.stringField("policy_name")
}

func (i Incident) State() string {
	return i.stringField("state")
}

func (i Incident) stringField(key string) string {
	if s, ok := i[key].(string); ok {
		return s
	}

	return ""
}
