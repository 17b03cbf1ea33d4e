package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the wrapper every portal resource endpoint responds with.
// Success is a pointer so bare JSON bodies, which carry no success field, are
// not mistaken for failures.
type Envelope struct {
	Success   *bool             `json:"success,omitempty"`
	Message   string            `json:"message,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
}

// Failed reports an explicit success:false
func (e *Envelope) Failed() bool {
	return e.Success != nil && !*e.Success
}

// HasData reports whether data is present and not JSON null
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// message prefers the human readable message over the error code
func (e *Envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// decodeEnvelope reads body as an Envelope. ok is false when body is JSON but
// not an object, which happens for endpoints returning bare arrays.
func decodeEnvelope(body []byte) (env *Envelope, ok bool, err error) {
	env = &Envelope{}
	if err := json.Unmarshal(body, env); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, false, fmt.Errorf("decode response: %w", err)
		}
		if typeErr.Field == "" {
			return nil, false, nil
		}
		// A mistyped field still leaves the rest of the envelope usable
	}
	return env, true, nil
}

// errorDetails extracts message and field errors from an error response body.
// Validation failures put the field map in errors or, from Spring's handler,
// in data.
func errorDetails(body []byte) (string, map[string]string) {
	if len(body) == 0 {
		return "", nil
	}
	var raw struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Errors  json.RawMessage `json:"errors"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", nil
	}
	msg := raw.Message
	if msg == "" {
		msg = raw.Error
	}
	fields := fieldMap(raw.Errors)
	if fields == nil {
		fields = fieldMap(raw.Data)
	}
	return msg, fields
}

func fieldMap(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}
