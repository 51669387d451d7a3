package backend

import (
	"errors"
	"fmt"
)

// Sentinel kinds for backend errors, usable with errors.Is.
var (
	ErrRequest   = errors.New("backend request failed")
	ErrTransport = errors.New("backend transport failed")
)

// Fallback messages used when the backend does not supply a detail.
const (
	PredictionFailedMessage = "Prediction failed"
	StatsFailedMessage      = "Failed to load statistics"
	ModelInfoFailedMessage  = "Failed to load model info"
	ClusterInfoFailedMsg    = "Failed to load cluster info"
	HealthFailedMessage     = "Health check failed"
)

// RequestError is a non-2xx response. Its message is the backend's detail,
// or a generic fallback.
type RequestError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *RequestError) Error() string { return e.Detail }

// Is lets errors.Is(err, ErrRequest) match.
func (e *RequestError) Is(target error) bool { return target == ErrRequest }

// TransportError is a failure before a usable response was obtained: network
// errors, timeouts and undecodable bodies. Its message is the cause's.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return ErrTransport.Error()
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func transportErr(op string, format string, args ...any) error {
	return &TransportError{Op: op, Err: fmt.Errorf(format, args...)}
}
