package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"expensetracker/internal/log"
)

// Kind classifies a gateway failure.
type Kind string

const (
	KindConnection Kind = "connection"
	KindClient     Kind = "client"
	KindServer     Kind = "server"
	KindEnvelope   Kind = "envelope"
)

var (
	ErrConnection = errors.New("connection failure")
	ErrClient     = errors.New("client failure")
	ErrServer     = errors.New("server error response")
	ErrEnvelope   = errors.New("unsuccessful response envelope")
)

const connectionMessage = "Unable to connect to server. Please check if the backend is running."

// OperationError is the single error type returned by every Client method.
// Message is suitable for showing to the user as is.
type OperationError struct {
	Op         string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s expenses: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s expenses: %s", e.Op, e.Message)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's Kind.
func (e *OperationError) Is(target error) bool {
	switch e.Kind {
	case KindConnection:
		return target == ErrConnection
	case KindClient:
		return target == ErrClient
	case KindServer:
		return target == ErrServer
	case KindEnvelope:
		return target == ErrEnvelope
	}
	return false
}

// UserMessage returns the text shown to users for err. Errors that did not
// come from the gateway fall back to err.Error().
func UserMessage(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Message
	}
	return err.Error()
}

func connectionError(op string, err error) *OperationError {
	return &OperationError{Op: op, Kind: KindConnection, Message: connectionMessage, Err: err}
}

func clientError(op string, err error) *OperationError {
	return &OperationError{Op: op, Kind: KindClient, Message: "Client error: " + err.Error(), Err: err}
}

// statusError reports a non-2xx response. detail is the envelope's error
// text when the body carried one.
func statusError(op string, status int, detail string) *OperationError {
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &OperationError{
		Op:         op,
		Kind:       KindServer,
		StatusCode: status,
		Message:    fmt.Sprintf("Server error: %d - %s", status, detail),
	}
}

func envelopeError(op string, status int, detail string) *OperationError {
	if detail == "" {
		detail = "request was not successful"
	}
	return &OperationError{
		Op:         op,
		Kind:       KindEnvelope,
		StatusCode: status,
		Message:    "Request failed: " + detail,
	}
}

func errorType(k Kind) string {
	switch k {
	case KindConnection:
		return log.ErrorTypeConnection
	case KindClient:
		return log.ErrorTypeClient
	case KindServer:
		return log.ErrorTypeServer
	default:
		return log.ErrorTypeEnvelope
	}
}
