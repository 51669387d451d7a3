package probe

import (
	"time"

	"github.com/okian/segview/internal/domain/segment"
)

// Config holds configuration for a probe run.
type Config struct {
	APIBase     string        // Backend API base, e.g. http://localhost:8000/api/v1
	Predictions int           // Number of sample predictions to submit
	Workers     int           // Concurrent prediction workers
	Timeout     time.Duration // Per-request timeout
	OutputFile  string        // JSON file for the collected samples; empty skips saving
	Verbose     bool          // Log every prediction
}

// Sample is one submitted prediction and its outcome.
type Sample struct {
	Request segment.PredictionRequest `json:"request"`
	Result  *segment.PredictionResult `json:"result,omitempty"`
	Error   string                    `json:"error,omitempty"`
	Latency time.Duration             `json:"latency_ns"`
}

// Stats holds run statistics.
type Stats struct {
	PredictionsSubmitted int
	PredictionsOK        int
	PredictionsFailed    int
	Mismatches           int
	ClustersReported     int
	ByCluster            map[string]int
	MeanLatency          time.Duration
	P95Latency           time.Duration
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
