package probe

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/okian/segview/internal/domain/segment"
)

// verifySample checks that a result echoes its request and names a cluster
// the model knows about.
func verifySample(s Sample, nClusters int) error {
	if s.Result == nil {
		return nil
	}
	r := s.Result
	if r.AnnualIncome != s.Request.AnnualIncome || r.SpendingScore != s.Request.SpendingScore {
		return fmt.Errorf("%w: result echoes (%v, %d) for request (%v, %d)", ErrInconsistent,
			r.AnnualIncome, r.SpendingScore, s.Request.AnnualIncome, s.Request.SpendingScore)
	}
	if nClusters > 0 && (r.ClusterID < 0 || r.ClusterID >= nClusters) {
		return fmt.Errorf("%w: cluster_id %d outside [0, %d)", ErrInconsistent, r.ClusterID, nClusters)
	}
	return nil
}

// summarize fills the outcome counters and latency figures of st.
func summarize(samples []Sample, nClusters int, st *Stats) []error {
	var problems []error
	st.ByCluster = make(map[string]int)
	latencies := make(stats.Float64Data, 0, len(samples))

	for _, s := range samples {
		st.PredictionsSubmitted++
		if s.Result == nil {
			st.PredictionsFailed++
			continue
		}
		st.PredictionsOK++
		st.ByCluster[s.Result.ClusterName]++
		latencies = append(latencies, float64(s.Latency))
		if err := verifySample(s, nClusters); err != nil {
			st.Mismatches++
			problems = append(problems, err)
		}
	}

	if len(latencies) > 0 {
		if mean, err := latencies.Mean(); err == nil {
			st.MeanLatency = time.Duration(mean)
		}
		if p95, err := latencies.Percentile(95); err == nil {
			st.P95Latency = time.Duration(p95)
		}
	}
	return problems
}

// clusterNames returns the cluster names of a distribution in a stable order.
func clusterNames(by map[string]int) []string {
	names := make([]string, 0, len(by))
	for n := range by {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// checkStats flags cluster statistics the model info disagrees with.
func checkStats(cs []segment.ClusterStat, info segment.ModelInfo) error {
	if info.NClusters > 0 && len(cs) != info.NClusters {
		return fmt.Errorf("%w: /clusters reports %d clusters, model has %d", ErrInconsistent, len(cs), info.NClusters)
	}
	return nil
}
