// Package site serves the console pages, the HTML fragments swapped in by
// the page script, the statistics export and the static assets.
package site

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/segview/internal/adapters/http/api"
	"github.com/okian/segview/internal/adapters/repository"
	service "github.com/okian/segview/internal/app"
	"github.com/okian/segview/internal/domain/form"
	"github.com/okian/segview/internal/render"
	"github.com/okian/segview/pkg/logger"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "segview_session"

// FragmentHeader marks requests issued by the page script. Those get the
// panels fragment instead of a full page.
const FragmentHeader = "X-Segview-Fragment"

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilename  = "cluster-statistics.xlsx"
	sessionMaxAge   = 24 * time.Hour
)

// Sessions is the session store backing the handler.
type Sessions = repository.SessionStore[*service.Controller]

// Handler serves the console.
type Handler struct {
	sessions *Sessions
	renderer *render.Renderer
	logger   logger.Logger

	appName      string
	appVersion   string
	aboutPath    string
	secureCookie bool
}

// New constructs a Handler.
func New(sessions *Sessions, renderer *render.Renderer, opts ...Option) *Handler {
	h := &Handler{
		sessions:   sessions,
		renderer:   renderer,
		logger:     logger.Nop(),
		appName:    "Customer Segmentation",
		appVersion: "1.0.0",
		aboutPath:  service.DefaultAboutPath,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the console routes to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /{$}", api.MetricsMiddleware(h.HandleIndex, "index"))
	mux.HandleFunc("GET "+h.aboutPath, api.MetricsMiddleware(h.HandleAbout, "about"))
	mux.HandleFunc("GET "+h.aboutPath+"/export.xlsx", api.MetricsMiddleware(h.HandleExport, "export"))
	mux.HandleFunc("POST /predict", api.MetricsMiddleware(h.HandlePredict, "predict"))
	mux.HandleFunc("POST /session/reset", api.MetricsMiddleware(h.HandleReset, "session_reset"))
	mux.HandleFunc("GET /fragments/clusters", api.MetricsMiddleware(h.HandleClustersFragment, "fragment_clusters"))
	mux.HandleFunc("GET /fragments/model-info", api.MetricsMiddleware(h.HandleModelInfoFragment, "fragment_model_info"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// HandleIndex renders the prediction form. Query parameters named after a
// range field preset that range, so "/?income=120&spending=30" links to a
// filled form.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	q := r.URL.Query()
	for _, b := range c.Bindings() {
		if v := q.Get(b.Name); v != "" {
			c.BindRange(b.InputID, v)
		}
	}
	page := c.PageLoad(r.Context(), "/")
	h.writePage(w, r, render.PageIndex, h.pageData("Predict", page, render.Panels{}))
}

// HandleAbout renders the statistics page.
func (h *Handler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	page := c.PageLoad(r.Context(), h.aboutPath)
	h.writePage(w, r, render.PageAbout, h.pageData("About", page, render.Panels{}))
}

// HandlePredict runs a submit. Script requests get the panels fragment; a
// plain form post gets the whole page with the outcome filled in.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)

	var in form.Input
	if err := r.ParseForm(); err != nil {
		// Unreadable bodies read as empty input and fail validation.
		h.logger.Debug(r.Context(), "parse predict form", logger.Error(err))
	} else {
		in = form.Input{Income: r.PostFormValue(form.FieldIncome), Spending: r.PostFormValue(form.FieldSpending)}
	}

	out := c.Submit(r.Context(), in)
	if r.Header.Get(FragmentHeader) != "" {
		html, err := h.renderer.PanelsFragment(out.Panels)
		if err != nil {
			h.renderFailed(w, r, err)
			return
		}
		writeHTML(w, string(html))
		return
	}

	page := service.Page{Bindings: c.Bindings(), Button: c.Button()}
	h.writePage(w, r, render.PageIndex, h.pageData("Predict", page, out.Panels))
}

// HandleReset drops the caller's session and expires its cookie. The next
// request starts from a fresh controller.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if ck, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), ck.Value); err != nil {
			h.logger.Debug(r.Context(), "reset unknown session", logger.Error(err))
		}
	}
	http.SetCookie(w, h.cookie("", -1))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleClustersFragment serves the cluster cards. A failed load yields an
// empty fragment.
func (h *Handler) HandleClustersFragment(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	writeHTML(w, string(c.LoadClusterStats(r.Context())))
}

// HandleModelInfoFragment serves the model info panel. A failed load yields
// an empty fragment.
func (h *Handler) HandleModelInfoFragment(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	writeHTML(w, string(c.LoadModelInfo(r.Context())))
}

// HandleExport streams the cluster statistics as an xlsx workbook.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	stats, err := c.ClusterStats(r.Context())
	if err != nil {
		h.logger.Warn(r.Context(), "export: load statistics", logger.Error(err))
		http.Error(w, fmt.Sprintf("%s: %s", ErrExport, err), http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteWorkbook(&buf, stats); err != nil {
		h.logger.Error(r.Context(), "export: write workbook", logger.Error(err))
		http.Error(w, ErrExport.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	_, _ = buf.WriteTo(w)
}

// GetStats aggregates the counters of every live session.
func (h *Handler) GetStats() map[string]interface{} {
	ctx := context.Background()
	var agg service.Stats
	h.sessions.Range(ctx, func(_ string, c *service.Controller) bool {
		s := c.Stats()
		agg.Submits += s.Submits
		agg.Successes += s.Successes
		agg.Failures += s.Failures
		agg.Rejected += s.Rejected
		return true
	})
	return map[string]interface{}{
		"sessions":        h.sessions.Len(ctx),
		"sessionsEvicted": h.sessions.Evicted(),
		"submits":         agg.Submits,
		"successes":       agg.Successes,
		"failures":        agg.Failures,
		"rejected":        agg.Rejected,
	}
}

// controller resolves the caller's session, issuing a cookie for new ones.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request) *service.Controller {
	var id string
	if ck, err := r.Cookie(SessionCookie); err == nil {
		id = ck.Value
	}
	newID, c, created := h.sessions.GetOrCreate(r.Context(), id)
	if created {
		http.SetCookie(w, h.cookie(newID, int(sessionMaxAge.Seconds())))
		h.logger.Debug(r.Context(), "session created", logger.String("session", newID))
	}
	return c
}

func (h *Handler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) pageData(title string, p service.Page, panels render.Panels) render.PageData {
	return render.PageData{
		Title:        title,
		AppName:      h.appName,
		AppVersion:   h.appVersion,
		AboutPath:    h.aboutPath,
		Banner:       p.Banner,
		Bindings:     p.Bindings,
		Button:       p.Button,
		Panels:       panels,
		ModelInfo:    p.ModelInfo,
		Overview:     p.Overview,
		ClusterStats: p.ClusterStats,
		Catalogue:    p.Catalogue,
	}
}

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, name string, data render.PageData) {
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, name, data); err != nil {
		h.renderFailed(w, r, err)
		return
	}
	writeHTML(w, buf.String())
}

func (h *Handler) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "render", logger.Error(err))
	http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
