// Package backend is the typed HTTP client for the segmentation backend's
// /api/v1 contract.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/segview/internal/domain/segment"
	"github.com/okian/segview/pkg/logger"
	"github.com/okian/segview/pkg/metrics"
)

// Endpoint paths relative to the API base.
const (
	PathPredict     = "/predict"
	PathClusters    = "/clusters"
	PathClusterInfo = "/clusters/info"
	PathModelInfo   = "/model/info"
	PathHealth      = "/health"
)

const (
	defaultTimeout  = 10 * time.Second
	maxBodyBytes    = 1 << 20
	requestIDHeader = "X-Request-ID"
)

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// New creates a client for apiBase, e.g. "http://localhost:8000/api/v1".
func New(apiBase string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(apiBase, "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Base returns the API base the client was built with.
func (c *Client) Base() string { return c.base }

// Predict submits one income/spending pair.
func (c *Client) Predict(ctx context.Context, req segment.PredictionRequest) (segment.PredictionResult, error) {
	var out segment.PredictionResult
	err := c.do(ctx, http.MethodPost, PathPredict, req, &out, PredictionFailedMessage)
	return out, err
}

// Clusters fetches per-cluster statistics in server order.
func (c *Client) Clusters(ctx context.Context) ([]segment.ClusterStat, error) {
	var out []segment.ClusterStat
	err := c.do(ctx, http.MethodGet, PathClusters, nil, &out, StatsFailedMessage)
	return out, err
}

// ModelInfo fetches model metadata.
func (c *Client) ModelInfo(ctx context.Context) (segment.ModelInfo, error) {
	var out segment.ModelInfo
	err := c.do(ctx, http.MethodGet, PathModelInfo, nil, &out, ModelInfoFailedMessage)
	return out, err
}

// ClusterInfo fetches segment descriptions and marketing strategies.
func (c *Client) ClusterInfo(ctx context.Context) (segment.ClusterInfo, error) {
	var out segment.ClusterInfo
	err := c.do(ctx, http.MethodGet, PathClusterInfo, nil, &out, ClusterInfoFailedMsg)
	return out, err
}

// Health fetches the backend health summary.
func (c *Client) Health(ctx context.Context) (segment.Health, error) {
	var out segment.Health
	err := c.do(ctx, http.MethodGet, PathHealth, nil, &out, HealthFailedMessage)
	return out, err
}

// do performs one exchange. Non-2xx responses become *RequestError; anything
// that prevents reading a usable response becomes *TransportError.
func (c *Client) do(ctx context.Context, method, path string, in, out any, fallback string) (err error) {
	op := "backend." + strings.TrimPrefix(strings.ReplaceAll(path, "/", "_"), "_")
	start := time.Now()
	outcome := "ok"
	defer func() {
		switch {
		case err == nil:
		case isRequestErr(err):
			outcome = "request_error"
		default:
			outcome = "transport_error"
		}
		metrics.RecordBackendCall(path, outcome, float64(time.Since(start).Milliseconds()))
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		data, mErr := json.Marshal(in)
		if mErr != nil {
			return transportErr(op, "failed to marshal request body: %w", mErr)
		}
		body = bytes.NewReader(data)
	}

	req, rErr := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if rErr != nil {
		return transportErr(op, "failed to create request: %w", rErr)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	resp, dErr := c.http.Do(req)
	if dErr != nil {
		c.logger.Debug(ctx, "backend call failed",
			logger.String("method", method), logger.String("path", path),
			logger.String("request_id", reqID), logger.Error(dErr))
		return &TransportError{Op: op, Err: dErr}
	}
	defer func() { _ = resp.Body.Close() }()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if readErr != nil {
		return transportErr(op, "failed to read response body: %w", readErr)
	}

	c.logger.Debug(ctx, "backend call finished",
		logger.String("method", method), logger.String("path", path),
		logger.String("request_id", reqID), logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if method != http.MethodPost {
			return &RequestError{Op: op, StatusCode: resp.StatusCode, Detail: fallback}
		}
		var eb errorBody
		if uErr := json.Unmarshal(data, &eb); uErr != nil {
			return transportErr(op, "failed to decode error response (status %d): %w", resp.StatusCode, uErr)
		}
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Detail: eb.message(fallback)}
	}

	if uErr := json.Unmarshal(data, out); uErr != nil {
		return transportErr(op, "failed to decode response: %w", uErr)
	}
	return nil
}

// errorBody accepts both a plain string detail and the list of validation
// issues the backend emits for rejected input.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func (b errorBody) message(fallback string) string {
	if len(b.Detail) == 0 {
		return fallback
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		if s == "" {
			return fallback
		}
		return s
	}
	var issues []validationIssue
	if err := json.Unmarshal(b.Detail, &issues); err == nil && len(issues) > 0 {
		msgs := make([]string, 0, len(issues))
		for _, is := range issues {
			if is.Msg == "" {
				continue
			}
			if len(is.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", is.Loc[len(is.Loc)-1], is.Msg))
				continue
			}
			msgs = append(msgs, is.Msg)
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return fallback
}

func isRequestErr(err error) bool {
	_, ok := err.(*RequestError)
	return ok
}
