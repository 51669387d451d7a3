package probe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/segview/internal/domain/segment"
	"github.com/okian/segview/pkg/logger"
)

func init() {
	if err := logger.InitWithWriter(io.Discard, "text"); err != nil {
		panic(err)
	}
}

// fakeAPI echoes predictions and assigns clusters by spending score.
type fakeAPI struct {
	modelLoaded bool
	nClusters   int
	badEcho     bool
	predicts    atomic.Int32
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	switch r.URL.Path {
	case "/api/v1/health":
		_ = enc.Encode(segment.Health{Status: "healthy", ModelLoaded: f.modelLoaded, Message: "warming up"})
	case "/api/v1/model/info":
		_ = enc.Encode(segment.ModelInfo{ModelLoaded: f.modelLoaded, ModelType: "KMeans", NClusters: f.nClusters})
	case "/api/v1/clusters":
		out := make([]segment.ClusterStat, f.nClusters)
		for i := range out {
			out[i] = segment.ClusterStat{ClusterName: "c", Count: 1}
		}
		_ = enc.Encode(out)
	case "/api/v1/predict":
		f.predicts.Add(1)
		var req segment.PredictionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		id := req.SpendingScore % f.nClusters
		name, _ := segment.KnownName(id)
		res := segment.PredictionResult{
			ClusterID: id, ClusterName: name,
			AnnualIncome: req.AnnualIncome, SpendingScore: req.SpendingScore,
		}
		if f.badEcho {
			res.SpendingScore++
		}
		_ = enc.Encode(res)
	default:
		http.NotFound(w, r)
	}
}

func TestGenerateRequests(t *testing.T) {
	Convey("Generated requests stay inside the accepted ranges", t, func() {
		for _, r := range generateRequests(500) {
			So(r.AnnualIncome, ShouldBeBetweenOrEqual, 0.0, 200.0)
			So(r.SpendingScore, ShouldBeBetweenOrEqual, 1, 100)
		}
	})
}

func TestRun(t *testing.T) {
	Convey("Given a healthy prediction API", t, func() {
		api := &fakeAPI{modelLoaded: true, nClusters: 5}
		srv := httptest.NewServer(api)
		defer srv.Close()

		out := filepath.Join(t.TempDir(), "samples", "out.json")
		cfg := &Config{APIBase: srv.URL + "/api/v1", Predictions: 25, Workers: 4, Timeout: 5 * time.Second, OutputFile: out}

		Convey("When the probe runs", func() {
			st, err := Run(context.Background(), cfg)

			Convey("Then every prediction succeeds and is consistent", func() {
				So(err, ShouldBeNil)
				So(api.predicts.Load(), ShouldEqual, 25)
				So(st.PredictionsSubmitted, ShouldEqual, 25)
				So(st.PredictionsOK, ShouldEqual, 25)
				So(st.Mismatches, ShouldEqual, 0)
				So(st.ClustersReported, ShouldEqual, 5)
				total := 0
				for _, n := range st.ByCluster {
					total += n
				}
				So(total, ShouldEqual, 25)
			})

			Convey("Then the samples are saved", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var samples []Sample
				So(json.Unmarshal(data, &samples), ShouldBeNil)
				So(samples, ShouldHaveLength, 25)
			})
		})

		Convey("When results do not echo their request", func() {
			api.badEcho = true
			st, err := Run(context.Background(), cfg)

			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
			So(st.Mismatches, ShouldEqual, 25)
		})
	})

	Convey("Given an API whose model is not loaded", t, func() {
		api := &fakeAPI{nClusters: 5}
		srv := httptest.NewServer(api)
		defer srv.Close()

		_, err := Run(context.Background(), &Config{APIBase: srv.URL + "/api/v1", Predictions: 3, Workers: 1, Timeout: time.Second})

		So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		So(api.predicts.Load(), ShouldEqual, 0)
	})

	Convey("Given an unreachable API", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := Run(context.Background(), &Config{APIBase: srv.URL + "/api/v1", Predictions: 1, Workers: 1, Timeout: time.Second})
		So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given mixed samples", t, func() {
		ok := segment.PredictionResult{ClusterID: 1, ClusterName: "VIP / Whale", AnnualIncome: 90, SpendingScore: 80}
		samples := []Sample{
			{Request: segment.PredictionRequest{AnnualIncome: 90, SpendingScore: 80}, Result: &ok, Latency: 10 * time.Millisecond},
			{Request: segment.PredictionRequest{AnnualIncome: 10, SpendingScore: 5}, Error: "Prediction failed"},
			{Request: segment.PredictionRequest{AnnualIncome: 90, SpendingScore: 80}, Result: &ok, Latency: 30 * time.Millisecond},
		}

		var st Stats
		problems := summarize(samples, 5, &st)

		So(problems, ShouldBeEmpty)
		So(st.PredictionsOK, ShouldEqual, 2)
		So(st.PredictionsFailed, ShouldEqual, 1)
		So(st.ByCluster["VIP / Whale"], ShouldEqual, 2)
		So(st.MeanLatency, ShouldEqual, 20*time.Millisecond)
	})

	Convey("A cluster id outside the model is flagged", t, func() {
		bad := segment.PredictionResult{ClusterID: 7, AnnualIncome: 1, SpendingScore: 1}
		err := verifySample(Sample{Request: segment.PredictionRequest{AnnualIncome: 1, SpendingScore: 1}, Result: &bad}, 5)
		So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
	})
}
