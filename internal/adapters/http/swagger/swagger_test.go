package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegister(t *testing.T) {
	Convey("Given the docs routes on a mux", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)
		get := func(path string, header http.Header) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			for k, v := range header {
				req.Header[k] = v
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When the OpenAPI document is fetched", func() {
			w := get(SpecPath, nil)

			Convey("Then every backend operation the console calls is described", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/yaml; charset=utf-8")
				for _, path := range []string{"/predict:", "/clusters:", "/clusters/info:", "/model/info:", "/health:"} {
					So(w.Body.String(), ShouldContainSubstring, path)
				}
			})

			Convey("Then a repeat fetch with the ETag is not modified", func() {
				etag := w.Header().Get("ETag")
				So(etag, ShouldNotBeEmpty)

				again := get(SpecPath, http.Header{"If-None-Match": {etag}})
				So(again.Code, ShouldEqual, http.StatusNotModified)
				So(again.Body.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the docs page is fetched", func() {
			w := get(DocsPath, nil)

			Convey("Then ReDoc is pointed at the embedded document", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(w.Body.String(), ShouldContainSubstring, RedocCDN)
				So(w.Body.String(), ShouldContainSubstring, "Redoc.init('/openapi.yaml'")
			})
		})

		Convey("When the document is posted to", func() {
			req := httptest.NewRequest(http.MethodPost, SpecPath, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}
