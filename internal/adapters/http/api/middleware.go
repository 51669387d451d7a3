package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/segview/pkg/metrics"
)

// failure labels an error response in the error metrics.
type failure struct {
	kind     string
	severity string
}

// classifyStatus maps a response status to its error labels. 502 and 504
// mean the prediction API failed the console, not the console itself.
func classifyStatus(status int) (failure, bool) {
	switch {
	case status < http.StatusBadRequest:
		return failure{}, false
	case status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		return failure{kind: "upstream_error", severity: "medium"}, true
	case status >= http.StatusInternalServerError:
		return failure{kind: "server_error", severity: "high"}, true
	case status == http.StatusNotFound:
		return failure{kind: "not_found", severity: "low"}, true
	case status == http.StatusMethodNotAllowed:
		return failure{kind: "method_not_allowed", severity: "low"}, true
	default:
		return failure{kind: "client_error", severity: "low"}, true
	}
}

// MetricsMiddleware counts and times every request to the route labelled
// endpoint and records error responses by class.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(rec, r)
		elapsedMs := float64(time.Since(start)) / float64(time.Millisecond)

		code := strconv.Itoa(rec.Status())
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, elapsedMs)
		if f, ok := classifyStatus(rec.Status()); ok {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, f.kind)
			metrics.RecordErrorByType(f.kind, f.severity)
		}
	}
}

// statusRecorder keeps the first status sent. A handler that only writes a
// body has answered 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Status is the status the client received.
func (s *statusRecorder) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}
