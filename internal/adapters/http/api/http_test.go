package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/segview/internal/adapters/http/api"
	"github.com/okian/segview/pkg/metrics"
)

type mockStats struct {
	stats map[string]interface{}
}

func (m *mockStats) GetStats() map[string]interface{} { return m.stats }

func newMux(stats api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(stats).Register(context.Background(), mux)
	return mux
}

func TestStatsHandler(t *testing.T) {
	Convey("Given the API server with a stats provider", t, func() {
		mux := newMux(&mockStats{stats: map[string]interface{}{
			"sessions": 3,
			"submits":  10,
		}})

		Convey("When GET /stats is requested", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it returns the provider's stats as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

				var body map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["sessions"], ShouldEqual, float64(3))
				So(body["submits"], ShouldEqual, float64(10))
			})
		})

		Convey("When POST /stats is requested", func() {
			req := httptest.NewRequest(http.MethodPost, "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is rejected with a JSON error", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, "GET, HEAD")

				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "method_not_allowed")
				So(body["message"], ShouldEqual, api.ErrMethodNotAllowed.Error())
			})
		})
	})
}

func TestHealthHandler(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux := newMux(&mockStats{})

		Convey("When a request has been served and /healthz is scraped", func() {
			metrics.RecordSubmitOutcome("success")

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then Prometheus exposition is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "segview_console_http_requests_total")
				So(body, ShouldContainSubstring, `endpoint="stats"`)
				So(body, ShouldContainSubstring, "segview_console_submit_outcomes_total")
			})
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped by the metrics middleware", t, func() {
		handler := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}, "export")

		Convey("When it is served", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/about/export.xlsx", nil))

			Convey("Then the status and body pass through", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "upstream down")
			})

			Convey("Then the error is counted by endpoint", func() {
				w := httptest.NewRecorder()
				newMux(&mockStats{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
				So(w.Body.String(), ShouldContainSubstring, `error_type="upstream_error"`)
			})
		})
	})
}

func scrape() string {
	w := httptest.NewRecorder()
	newMux(&mockStats{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return w.Body.String()
}

func TestMetricsMiddleware_Classification(t *testing.T) {
	Convey("Given handlers answering with different statuses", t, func() {
		serve := func(endpoint string, h http.HandlerFunc) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			api.MetricsMiddleware(h, endpoint).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			return w
		}

		Convey("When a handler redirects", func() {
			serve("mw_redirect", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
			})

			Convey("Then the request is counted without an error", func() {
				body := scrape()
				So(body, ShouldContainSubstring, `endpoint="mw_redirect",method="GET",status_code="303"`)
				So(body, ShouldNotContainSubstring, `endpoint="mw_redirect",error_type=`)
			})
		})

		Convey("When a handler only writes a body", func() {
			serve("mw_body", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok"))
			})

			So(scrape(), ShouldContainSubstring, `endpoint="mw_body",method="GET",status_code="200"`)
		})

		Convey("When a handler writes two statuses", func() {
			w := serve("mw_twice", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.WriteHeader(http.StatusInternalServerError)
			})

			Convey("Then the first one is recorded", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := scrape()
				So(body, ShouldContainSubstring, `endpoint="mw_twice",error_type="not_found",method="GET"`)
				So(body, ShouldNotContainSubstring, `endpoint="mw_twice",error_type="server_error"`)
			})
		})

		Convey("When a handler rejects the method", func() {
			serve("mw_method", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusMethodNotAllowed)
			})

			So(scrape(), ShouldContainSubstring, `endpoint="mw_method",error_type="method_not_allowed",method="GET"`)
		})

		Convey("When a handler times out on the backend", func() {
			serve("mw_timeout", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusGatewayTimeout)
			})

			So(scrape(), ShouldContainSubstring, `endpoint="mw_timeout",error_type="upstream_error",method="GET"`)
		})
	})
}
