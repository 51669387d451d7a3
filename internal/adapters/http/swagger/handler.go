// Package swagger serves the OpenAPI description of the prediction API the
// console consumes, rendered with ReDoc.
package swagger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/okian/segview/internal/adapters/http/api"
)

// RedocCDN is the ReDoc bundle loaded by the docs page.
const RedocCDN = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"

// Paths served by Register.
const (
	DocsPath = "/api-docs"
	SpecPath = "/openapi.yaml"
)

// specETag is derived from the embedded document, so it changes only with a
// new build.
var specETag = func() string {
	sum := sha256.Sum256(OpenAPI)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}()

// Register attaches the ReDoc page and the OpenAPI document to mux.
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET "+DocsPath, api.MetricsMiddleware(serveDocs, "api_docs"))
	mux.HandleFunc("GET "+SpecPath, api.MetricsMiddleware(serveSpec, "openapi"))
}

func serveDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsPage))
}

// serveSpec answers conditional requests with 304.
func serveSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", specETag)
	if r.Header.Get("If-None-Match") == specETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(OpenAPI)
}

const docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Segmentation API - ReDoc</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="` + RedocCDN + `"></script>
    <script>Redoc.init('` + SpecPath + `', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
