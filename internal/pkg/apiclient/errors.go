package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

// Kind classifies a failed call
type Kind string

const (
	KindNetwork         Kind = "network"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindServer          Kind = "server"
	KindDecode          Kind = "decode"
)

// APIError is the normalized form of every failed call. Response.Data keeps
// the raw server body for callers that need the original payload.
type APIError struct {
	Status   int
	Kind     Kind
	Messages []string
	Fields   map[string][]string
	Response struct {
		Data json.RawMessage
	}
	cause error
}

// Error returns the first message, falling back to the HTTP status text
func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return msg
	}
	if e.Status > 0 {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return "request failed"
}

// Message returns a single human-readable message for notifications
func (e *APIError) Message() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		k := keys[0]
		if len(e.Fields[k]) > 0 {
			return fmt.Sprintf("%s: %s", k, e.Fields[k][0])
		}
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return ""
}

// Unwrap maps the failure onto the application's sentinel errors
func (e *APIError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func (e *APIError) sentinel() error {
	switch e.Kind {
	case KindNetwork:
		return apperrors.ErrUpstreamUnavailable
	case KindUnauthenticated:
		return apperrors.ErrUnauthenticated
	case KindForbidden:
		return apperrors.ErrPermissionDenied
	case KindNotFound:
		return apperrors.ErrResourceNotFound
	case KindValidation:
		return apperrors.ErrBadRequest
	case KindConflict:
		return apperrors.ErrConflict
	}
	return apperrors.ErrUpstream
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 400 && status < 500:
		return KindValidation
	}
	return KindServer
}

func newTransportError(err error) *APIError {
	return &APIError{Kind: KindNetwork, cause: err}
}

func newDecodeError(status int, body []byte, err error) *APIError {
	e := &APIError{Status: status, Kind: KindDecode, cause: fmt.Errorf("decode response: %w", err)}
	e.Response.Data = json.RawMessage(body)
	return e
}

// newAPIError normalizes the API's error bodies: {"error": ...}, {"detail": ...},
// {"field": ["msg"]} / {"field": "msg"}, a bare list of messages, or plain text.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Kind: kindForStatus(status)}
	trimmed := strings.TrimSpace(string(body))
	if json.Valid(body) {
		e.Response.Data = json.RawMessage(body)
	}
	if trimmed == "" {
		e.Messages = []string{http.StatusText(status)}
		return e
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"error", "detail", "message"} {
			if raw, ok := obj[key]; ok {
				e.Messages = append(e.Messages, flatten(raw)...)
				delete(obj, key)
			}
		}
		if raw, ok := obj["non_field_errors"]; ok {
			e.Messages = append(e.Messages, flatten(raw)...)
			delete(obj, "non_field_errors")
		}
		for field, raw := range obj {
			if msgs := flatten(raw); len(msgs) > 0 {
				if e.Fields == nil {
					e.Fields = make(map[string][]string)
				}
				e.Fields[field] = msgs
			}
		}
		return e
	}

	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		for _, raw := range list {
			e.Messages = append(e.Messages, flatten(raw)...)
		}
		return e
	}

	e.Messages = []string{truncate(trimmed, maxRawMessage)}
	return e
}

// maxRawMessage bounds how much of a non-JSON error body is shown, in runes
const maxRawMessage = 200

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func flatten(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []string
		for _, item := range list {
			out = append(out, flatten(item)...)
		}
		return out
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			for _, m := range flatten(obj[k]) {
				out = append(out, k+": "+m)
			}
		}
		return out
	}
	if t := strings.TrimSpace(string(raw)); t != "" && t != "null" {
		return []string{t}
	}
	return nil
}
