package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GenericMessage is shown when the backend gave no usable message
const GenericMessage = "Ha ocurrido un error inesperado"

// Kind classifies a failed backend call
type Kind int

const (
	// KindTransport means no HTTP response was received
	KindTransport Kind = iota + 1
	// KindUnauthorized is a 401; the session must be torn down
	KindUnauthorized
	// KindValidation is any other 4xx; the message is the backend's
	KindValidation
	// KindServer is a 5xx
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is a failed backend call
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s error (%d): %s: %v", e.Kind, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("backend %s error (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether a mutation may be resent. An undecodable 2xx
// body is a server fault but the mutation already happened.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport || (e.Kind == KindServer && e.Status >= 500)
}

// AsError extracts a *Error from err
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsUnauthorized reports a 401 from the backend
func IsUnauthorized(err error) bool {
	be, ok := AsError(err)
	return ok && be.Kind == KindUnauthorized
}

// IsNotFound reports a 404 from the backend
func IsNotFound(err error) bool {
	be, ok := AsError(err)
	return ok && be.Status == http.StatusNotFound
}

// newStatusError classifies a non-2xx response
func newStatusError(status int, body []byte) *Error {
	e := &Error{Status: status, Message: extractMessage(body)}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthorized
	case status >= 500:
		e.Kind = KindServer
		e.Message = GenericMessage
	default:
		e.Kind = KindValidation
	}
	return e
}

func newTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: GenericMessage, Err: err}
}

// extractMessage reads {"message": ...} where message is a string or a
// list of strings. Anything else yields GenericMessage.
func extractMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Message) == 0 {
		return GenericMessage
	}

	var single string
	if err := json.Unmarshal(payload.Message, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			return single
		}
		return GenericMessage
	}

	var many []string
	if err := json.Unmarshal(payload.Message, &many); err == nil {
		parts := make([]string, 0, len(many))
		for _, m := range many {
			if m = strings.TrimSpace(m); m != "" {
				parts = append(parts, m)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return GenericMessage
}
