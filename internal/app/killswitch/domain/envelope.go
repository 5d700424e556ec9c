package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// PushRequest is the body Pub/Sub sends to a push endpoint
type PushRequest struct {
	Message      PushMessage
	Subscription string
}

// PushMessage carries the base64 encoded application payload. Only Data is
// required, the other fields are read best-effort for logging.
type PushMessage struct {
	Data       string
	MessageID  string
	Attributes map[string]string
}

// ParsePushRequest decodes an inbound push body. Keys are matched exactly.
// A body that is not a JSON object, or lacks message.data, yields
// ErrNoIncidentData. A message that is not an object, or data that is not a
// string, yields ErrMalformedEnvelope.
func ParsePushRequest(body []byte) (*PushRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &fields); err != nil || fields == nil {
		return nil, ErrNoIncidentData
	}

	rawMessage, ok := fields["message"]
	if !ok {
		return nil, ErrNoIncidentData
	}

	var message map[string]json.RawMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil || message == nil {
		return nil, fmt.Errorf("%w: message is not an object", ErrMalformedEnvelope)
	}

	rawData, ok := message["data"]
	if !ok || isFalsy(rawData) {
		return nil, ErrNoIncidentData
	}

	req := &PushRequest{
		Subscription: looseString(fields["subscription"]),
		Message: PushMessage{
			MessageID: looseString(message["messageId"]),
		},
	}

	if err := json.Unmarshal(rawData, &req.Message.Data); err != nil {
		return nil, fmt.Errorf("%w: data is not a string", ErrMalformedEnvelope)
	}

	// attributes of the wrong shape are dropped
	if err := json.Unmarshal(message["attributes"], &req.Message.Attributes); err != nil {
		req.Message.Attributes = nil
	}

	return req, nil
}

// DecodeData returns the raw payload carried by the message
func (m *PushMessage) DecodeData() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(m.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBase64Decode, err)
	}

	return data, nil
}

// isFalsy reports whether raw is null, false, zero, or an empty string,
// array or object.
func isFalsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}

	return false
}

// looseString returns a JSON string value, or the literal text of any other
// scalar. Missing or structured values yield "".
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	if raw[0] == '{' || raw[0] == '[' || string(raw) == "null" {
		return ""
	}

	return string(raw)
}
