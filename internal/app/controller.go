// Package service implements the segmentation console controller: the submit
// state machine, page-load dispatch and the background loaders that feed the
// about page.
package service

import (
	"context"
	"errors"
	"html/template"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/segview/internal/adapters/backend"
	"github.com/okian/segview/internal/domain/form"
	"github.com/okian/segview/internal/domain/segment"
	"github.com/okian/segview/internal/render"
	"github.com/okian/segview/pkg/logger"
	"github.com/okian/segview/pkg/metrics"
)

// DefaultAboutPath is the path of the statistics page.
const DefaultAboutPath = "/about"

// Health banner texts.
const (
	BannerModelNotLoaded = "The segmentation model is not loaded. Predictions will fail until it is."
	BannerUnreachable    = "The prediction service is unreachable."
)

// Submit outcomes reported to metrics.
const (
	outcomeSuccess    = "success"
	outcomeValidation = "validation_error"
	outcomeRequest    = "request_error"
	outcomeTransport  = "transport_error"
	outcomeRejected   = "rejected"
)

// Backend is the prediction API as seen by the controller.
type Backend interface {
	Predict(ctx context.Context, req segment.PredictionRequest) (segment.PredictionResult, error)
	Clusters(ctx context.Context) ([]segment.ClusterStat, error)
	ModelInfo(ctx context.Context) (segment.ModelInfo, error)
	ClusterInfo(ctx context.Context) (segment.ClusterInfo, error)
	Health(ctx context.Context) (segment.Health, error)
}

// State is the submit state of a controller.
type State int

const (
	Idle State = iota
	Submitting
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one submit.
type Outcome struct {
	State  State
	Result *segment.PredictionResult
	Err    error
	Panels render.Panels
}

// Stats are per-controller counters.
type Stats struct {
	Submits      int64     `json:"submits"`
	Successes    int64     `json:"successes"`
	Failures     int64     `json:"failures"`
	Rejected     int64     `json:"rejected"`
	State        string    `json:"state"`
	LastOutcome  string    `json:"lastOutcome"`
	LastActivity time.Time `json:"lastActivity"`
}

// Controller drives one browser session.
type Controller struct {
	backend  Backend
	renderer *render.Renderer
	logger   logger.Logger

	aboutPath string

	inFlight atomic.Bool

	mu           sync.Mutex
	state        State
	last         State
	bindings     []form.RangeBinding
	lastResult   template.HTML
	lastActivity time.Time

	submits   atomic.Int64
	successes atomic.Int64
	failures  atomic.Int64
	rejected  atomic.Int64
}

// New constructs a Controller in the Idle state.
func New(backend Backend, renderer *render.Renderer, opts ...Option) *Controller {
	c := &Controller{
		backend:   backend,
		renderer:  renderer,
		logger:    logger.Nop(),
		aboutPath: DefaultAboutPath,
		bindings:  form.DefaultBindings(),
		state:     Idle,
		last:      Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastActivity = time.Now()
	return c
}

// State returns the current state of the submit control.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastOutcome returns the terminal state of the most recent submit, or Idle
// when nothing was submitted yet.
func (c *Controller) LastOutcome() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Button returns the submit control view for the current state.
func (c *Controller) Button() render.Button {
	if c.State() == Submitting {
		return render.LoadingButton()
	}
	return render.IdleButton()
}

// Bindings returns the range bindings with their mirrored values.
func (c *Controller) Bindings() []form.RangeBinding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]form.RangeBinding(nil), c.bindings...)
}

// BindRange mirrors value into the display of the range input inputID.
func (c *Controller) BindRange(inputID, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, b := range c.bindings {
		if b.InputID == inputID {
			c.bindings[i] = b.Bind(value)
		}
	}
}

// Submit runs one prediction. Every failure is converted into the error
// panel; nothing is returned to the caller as an error.
func (c *Controller) Submit(ctx context.Context, in form.Input) Outcome {
	c.touch()
	if !c.inFlight.CompareAndSwap(false, true) {
		c.rejected.Add(1)
		metrics.RecordSubmitOutcome(outcomeRejected)
		c.logger.Warn(ctx, "submit rejected, another one is in flight")
		// The running submit owns the panels and state; leave them alone.
		return Outcome{State: Failure, Err: ErrSubmitInFlight, Panels: c.ShowError(ctx, InFlightMessage)}
	}
	defer c.inFlight.Store(false)

	c.submits.Add(1)
	c.mu.Lock()
	c.bindings = form.BindAll(c.bindings, in)
	c.mu.Unlock()

	req, err := in.Request()
	if err != nil {
		return c.finish(ctx, Outcome{State: Failure, Err: &ValidationError{Field: invalidField(in)}}, outcomeValidation)
	}

	c.mu.Lock()
	c.state = Submitting
	c.lastResult = ""
	c.mu.Unlock()
	defer c.setState(Idle)

	start := time.Now()
	res, err := c.backend.Predict(ctx, req)
	if err != nil {
		c.logger.Warn(ctx, "prediction failed",
			logger.Error(err),
			logger.Duration("elapsed", time.Since(start)),
		)
		return c.finish(ctx, Outcome{State: Failure, Err: err}, classify(err))
	}
	if res.ClusterName == "" {
		if name, ok := segment.KnownName(res.ClusterID); ok {
			res.ClusterName = name
		}
	}

	html, err := c.renderer.Result(res)
	if err != nil {
		c.logger.Error(ctx, "render result", logger.Error(err))
		return c.finish(ctx, Outcome{State: Failure, Err: err}, outcomeTransport)
	}
	c.logger.Debug(ctx, "prediction succeeded",
		logger.Int("clusterID", res.ClusterID),
		logger.String("clusterName", res.ClusterName),
		logger.Duration("elapsed", time.Since(start)),
	)
	return c.finish(ctx, Outcome{State: Success, Result: &res, Panels: render.Panels{Result: html}}, outcomeSuccess)
}

func (c *Controller) finish(ctx context.Context, out Outcome, outcome string) Outcome {
	if out.State == Success {
		c.successes.Add(1)
	} else {
		c.failures.Add(1)
		out.Panels = c.ShowError(ctx, out.Err.Error())
	}
	c.mu.Lock()
	c.last = out.State
	if out.State == Success {
		c.lastResult = out.Panels.Result
	}
	c.mu.Unlock()
	metrics.RecordSubmitOutcome(outcome)
	return out
}

// ShowError renders message into the error panel. A result left by an
// earlier submit stays visible next to it; a submit that reached the backend
// clears that result first.
func (c *Controller) ShowError(ctx context.Context, message string) render.Panels {
	html, err := c.renderer.Error(message)
	if err != nil {
		c.logger.Error(ctx, "render error panel", logger.Error(err))
		html = template.HTML(template.HTMLEscapeString("Error: " + message)) //nolint:gosec // escaped above
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return render.Panels{Result: c.lastResult, Error: html}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

// Page is what a page load contributes to the rendered page.
type Page struct {
	Bindings     []form.RangeBinding
	Button       render.Button
	Banner       string
	ModelInfo    template.HTML
	Overview     template.HTML
	ClusterStats template.HTML
	Catalogue    template.HTML
}

// PageLoad prepares a page. Range bindings are always applied; the
// statistics loaders run only for the about path. Loader failures leave
// their panel empty and never fail the page.
func (c *Controller) PageLoad(ctx context.Context, path string) Page {
	c.touch()
	p := Page{
		Bindings: c.Bindings(),
		Button:   c.Button(),
	}
	if path != c.aboutPath {
		p.Banner = c.healthBanner(ctx)
		return p
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, ok := c.clusterStats(gctx)
		if !ok {
			return nil
		}
		p.ClusterStats = c.fragment(gctx, "cluster_stats", func() (template.HTML, error) { return c.renderer.ClusterStats(stats) })
		if o, ok := segment.Summarize(stats); ok {
			p.Overview = c.fragment(gctx, "overview", func() (template.HTML, error) { return c.renderer.Overview(o) })
		}
		return nil
	})
	g.Go(func() error {
		p.ModelInfo = c.LoadModelInfo(gctx)
		return nil
	})
	g.Go(func() error {
		p.Catalogue = c.LoadClusterCatalogue(gctx)
		return nil
	})
	_ = g.Wait() // loaders never return an error
	return p
}

// LoadClusterStats fetches the cluster statistics and renders one card per
// cluster. On failure the result is empty.
func (c *Controller) LoadClusterStats(ctx context.Context) template.HTML {
	stats, ok := c.clusterStats(ctx)
	if !ok {
		return ""
	}
	return c.fragment(ctx, "cluster_stats", func() (template.HTML, error) { return c.renderer.ClusterStats(stats) })
}

// ClusterStats fetches the raw statistics for export.
func (c *Controller) ClusterStats(ctx context.Context) ([]segment.ClusterStat, error) {
	return c.backend.Clusters(ctx)
}

// LoadModelInfo fetches and renders the model info panel. On failure the
// result is empty.
func (c *Controller) LoadModelInfo(ctx context.Context) template.HTML {
	info, err := c.backend.ModelInfo(ctx)
	if err != nil {
		c.loaderFailed(ctx, "model_info", err)
		return ""
	}
	return c.fragment(ctx, "model_info", func() (template.HTML, error) { return c.renderer.ModelInfo(info) })
}

// LoadClusterCatalogue fetches and renders segment descriptions. On failure
// the result is empty.
func (c *Controller) LoadClusterCatalogue(ctx context.Context) template.HTML {
	ci, err := c.backend.ClusterInfo(ctx)
	if err != nil {
		c.loaderFailed(ctx, "cluster_info", err)
		return ""
	}
	return c.fragment(ctx, "cluster_catalogue", func() (template.HTML, error) { return c.renderer.ClusterCatalogue(ci) })
}

func (c *Controller) clusterStats(ctx context.Context) ([]segment.ClusterStat, bool) {
	stats, err := c.backend.Clusters(ctx)
	if err != nil {
		c.loaderFailed(ctx, "clusters", err)
		return nil, false
	}
	return stats, true
}

func (c *Controller) healthBanner(ctx context.Context) string {
	h, err := c.backend.Health(ctx)
	if err != nil {
		c.loaderFailed(ctx, "health", err)
		return BannerUnreachable
	}
	if !h.ModelLoaded {
		return BannerModelNotLoaded
	}
	return ""
}

func (c *Controller) fragment(ctx context.Context, name string, fn func() (template.HTML, error)) template.HTML {
	html, err := fn()
	if err != nil {
		c.logger.Error(ctx, "render fragment", logger.String("fragment", name), logger.Error(err))
		return ""
	}
	return html
}

func (c *Controller) loaderFailed(ctx context.Context, loader string, err error) {
	metrics.RecordLoaderFailure(loader)
	c.logger.Warn(ctx, "loader failed", logger.String("loader", loader), logger.Error(err))
}

// Stats returns a snapshot of the controller counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Submits:      c.submits.Load(),
		Successes:    c.successes.Load(),
		Failures:     c.failures.Load(),
		Rejected:     c.rejected.Load(),
		State:        c.state.String(),
		LastOutcome:  c.last.String(),
		LastActivity: c.lastActivity,
	}
}

func classify(err error) string {
	if errors.Is(err, backend.ErrRequest) {
		return outcomeRequest
	}
	return outcomeTransport
}

func invalidField(in form.Input) string {
	if _, err := (form.Input{Income: in.Income, Spending: "0"}).Request(); err != nil {
		return form.FieldIncome
	}
	return form.FieldSpending
}
