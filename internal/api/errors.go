package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAuthExpired is returned when an authenticated request comes back 401.
// The client fires its OnAuthExpired hook before returning it, so callers
// only need to route the user back to login.
var ErrAuthExpired = errors.New("authentication expired")

const (
	networkErrorMessage = "Network error occurred. Please try again."
	genericErrorMessage = "An error occurred. Please try again."
)

// Error is a non-2xx response from the backend. Status 0 means the request
// never reached the server. Fields carries per-field messages from 400
// responses so forms can surface them inline.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsNetwork reports whether err is a connectivity failure rather than a
// server response.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

func networkError() *Error {
	return &Error{Status: 0, Message: networkErrorMessage}
}

// decodeError turns a non-2xx response body into an *Error. The backend has
// produced several body shapes over time, so they are tried in order: a
// plain string, a {"detail": ...} object, per-field string arrays for the
// well-known auth fields, and finally any other key/value or key/array map.
func decodeError(status int, body []byte) *Error {
	out := &Error{Status: status, Message: genericErrorMessage}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return out
	}

	var asString string
	if err := json.Unmarshal(body, &asString); err == nil && asString != "" {
		out.Message = asString
		return out
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		// Not JSON at all; surface the raw text.
		out.Message = trimmed
		return out
	}

	if d, ok := raw["detail"]; ok {
		var detail string
		if err := json.Unmarshal(d, &detail); err == nil && detail != "" {
			out.Message = detail
			return out
		}
	}

	fields := map[string]string{}
	var parts []string

	appendField := func(key, label string) {
		v, ok := raw[key]
		if !ok {
			return
		}
		var arr []string
		if err := json.Unmarshal(v, &arr); err != nil || len(arr) == 0 {
			return
		}
		fields[key] = arr[0]
		if label == "" {
			parts = append(parts, strings.Join(arr, ", "))
		} else {
			parts = append(parts, label+": "+strings.Join(arr, ", "))
		}
	}

	appendField("username", "Username")
	appendField("email", "Email")
	appendField("password", "Password")
	appendField("non_field_errors", "")

	if len(parts) > 0 {
		out.Message = strings.Join(parts, ". ")
		out.Fields = fields
		return out
	}

	// Fall back to any other error messages in the response.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var arr []string
		if err := json.Unmarshal(raw[k], &arr); err == nil && len(arr) > 0 {
			fields[k] = arr[0]
			parts = append(parts, k+": "+strings.Join(arr, ", "))
			continue
		}
		var s string
		if err := json.Unmarshal(raw[k], &s); err == nil && s != "" {
			fields[k] = s
			parts = append(parts, k+": "+s)
		}
	}

	if len(parts) > 0 {
		out.Message = strings.Join(parts, ". ")
		out.Fields = fields
	}
	return out
}
