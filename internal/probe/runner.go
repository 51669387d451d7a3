// Package probe exercises the prediction API end to end: health, a batch of
// concurrent predictions, cluster statistics and model info.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/segview/internal/adapters/backend"
	"github.com/okian/segview/internal/domain/segment"
	"github.com/okian/segview/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes the complete probe and returns its statistics. Prediction
// failures are counted, not fatal; an unhealthy backend or inconsistent
// answers fail the run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Get().Named("probe")
	st := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting probe",
		logger.String("apiBase", config.APIBase),
		logger.Int("predictions", config.Predictions),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
	)

	client := backend.New(config.APIBase,
		backend.WithTimeout(config.Timeout),
		backend.WithLogger(log.Named("backend")),
	)

	// Step 1: health
	health, err := client.Health(ctx)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if !health.ModelLoaded {
		return st, fmt.Errorf("%w: model not loaded (%s)", ErrUnhealthy, health.Message)
	}
	log.Info(ctx, "backend is healthy", logger.String("status", health.Status))

	// Step 2: model info, used to bound cluster ids
	info, err := client.ModelInfo(ctx)
	if err != nil {
		return st, fmt.Errorf("model info: %w", err)
	}

	// Step 3: predictions
	samples := submitPredictions(ctx, client, config, log)
	problems := summarize(samples, info.NClusters, st)

	// Step 4: cluster statistics
	clusters, err := client.Clusters(ctx)
	if err != nil {
		return st, fmt.Errorf("clusters: %w", err)
	}
	st.ClustersReported = len(clusters)
	if err := checkStats(clusters, info); err != nil {
		problems = append(problems, err)
	}

	if config.OutputFile != "" {
		if err := saveSamples(config.OutputFile, samples); err != nil {
			log.Warn(ctx, "failed to save samples", logger.Error(err))
		} else {
			log.Info(ctx, "samples saved", logger.String("file", config.OutputFile))
		}
	}

	st.EndTime = time.Now()
	st.Duration = st.EndTime.Sub(st.StartTime)
	displayFinalStats(ctx, log, info, st)

	if len(problems) > 0 {
		for _, p := range problems {
			log.Error(ctx, "inconsistency", logger.Error(p))
		}
		return st, errors.Join(problems...)
	}
	log.Info(ctx, "probe completed successfully")
	return st, nil
}

// submitPredictions sends the generated requests with at most config.Workers
// in flight and returns the samples in request order.
func submitPredictions(ctx context.Context, client *backend.Client, config *Config, log logger.Logger) []Sample {
	reqs := generateRequests(config.Predictions)
	samples := make([]Sample, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if config.Workers > 0 {
		g.SetLimit(config.Workers)
	}
	for i, req := range reqs {
		g.Go(func() error {
			start := time.Now()
			res, err := client.Predict(gctx, req)
			s := Sample{Request: req, Latency: time.Since(start)}
			if err != nil {
				s.Error = err.Error()
			} else {
				s.Result = &res
			}
			samples[i] = s
			if config.Verbose {
				log.Debug(gctx, "prediction",
					logger.Float64("income", req.AnnualIncome),
					logger.Int("spending", req.SpendingScore),
					logger.String("error", s.Error),
				)
			}
			return nil
		})
	}
	_ = g.Wait() // workers record failures in their sample
	return samples
}

// saveSamples writes the samples as a JSON array.
func saveSamples(filename string, samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal samples: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, info segment.ModelInfo, st *Stats) {
	fields := []logger.Field{
		logger.String("modelType", info.ModelType),
		logger.Int("nClusters", info.NClusters),
		logger.Int("submitted", st.PredictionsSubmitted),
		logger.Int("ok", st.PredictionsOK),
		logger.Int("failed", st.PredictionsFailed),
		logger.Int("mismatches", st.Mismatches),
		logger.Int("clustersReported", st.ClustersReported),
		logger.Duration("meanLatency", st.MeanLatency),
		logger.Duration("p95Latency", st.P95Latency),
		logger.Duration("duration", st.Duration),
	}
	for _, name := range clusterNames(st.ByCluster) {
		fields = append(fields, logger.Int("cluster."+name, st.ByCluster[name]))
	}
	log.Info(ctx, "final statistics", fields...)
}
