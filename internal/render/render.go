// Package render turns backend entities into HTML fragments and pages.
//
// All backend-supplied text goes through html/template, so names,
// descriptions and error details are escaped.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/okian/segview/internal/domain/form"
	"github.com/okian/segview/internal/domain/segment"
)

//go:embed templates/*.html
var templateFS embed.FS

// Button labels of the submit control.
const (
	IdleLabel    = "Predict Segment"
	LoadingLabel = "Analyzing..."
)

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("segview").Funcs(template.FuncMap{
		"num":     formatNumber,
		"deref":   func(p *float64) float64 { return *p },
		"percent": func(f float64) string { return formatNumber(math.Round(f*1000)/10) + "%" },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// formatNumber prints a float the way the page script would: no trailing
// zeros and no exponent for ordinary magnitudes.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type resultView struct {
	segment.PredictionResult
	Accent string
	Style  template.CSS
}

// Result renders the prediction panel tinted with the cluster's accent.
func (r *Renderer) Result(res segment.PredictionResult) (template.HTML, error) {
	accent := segment.AccentColor(res.ClusterID)
	return r.fragment("result", resultView{
		PredictionResult: res,
		Accent:           accent,
		// accent always comes from the fixed palette.
		Style: template.CSS(fmt.Sprintf("background: linear-gradient(135deg, %s 0%%, %sdd 100%%);", accent, accent)),
	})
}

// Error renders the error panel content for message.
func (r *Renderer) Error(message string) (template.HTML, error) {
	return r.fragment("error", message)
}

// ClusterStats renders one card per stat, in the given order.
func (r *Renderer) ClusterStats(stats []segment.ClusterStat) (template.HTML, error) {
	return r.fragment("cluster_stats", stats)
}

// ModelInfo renders model type, cluster count and the load status badge.
func (r *Renderer) ModelInfo(info segment.ModelInfo) (template.HTML, error) {
	return r.fragment("model_info", info)
}

type catalogueEntry struct {
	ID int
	segment.ClusterProfile
	Swatch template.CSS
}

// ClusterCatalogue renders segment descriptions ordered by cluster id.
func (r *Renderer) ClusterCatalogue(ci segment.ClusterInfo) (template.HTML, error) {
	entries := make([]catalogueEntry, 0, len(ci))
	for _, id := range ci.SortedIDs() {
		entries = append(entries, catalogueEntry{
			ID:             id,
			ClusterProfile: ci[id],
			Swatch:         template.CSS("background: " + segment.AccentColor(id) + ";"),
		})
	}
	return r.fragment("cluster_catalogue", entries)
}

// Overview renders the aggregate strip of the about page.
func (r *Renderer) Overview(o segment.Overview) (template.HTML, error) {
	return r.fragment("overview", o)
}

// Button is the view state of the submit control.
type Button struct {
	Disabled bool
	Loading  bool
	Label    string
}

// IdleButton is the enabled control.
func IdleButton() Button { return Button{Label: IdleLabel} }

// LoadingButton is the disabled control shown while a submit is in flight.
func LoadingButton() Button { return Button{Disabled: true, Loading: true, Label: LoadingLabel} }

// Panels holds the result and error panel contents. An empty value means
// the panel is hidden.
type Panels struct {
	Result template.HTML
	Error  template.HTML
}

// PanelsFragment renders both panels with their visibility.
func (r *Renderer) PanelsFragment(p Panels) (template.HTML, error) {
	return r.fragment("panels", p)
}

// Page names.
const (
	PageIndex = "index.html"
	PageAbout = "about.html"
)

// PageData feeds the page templates. Fragment fields are pre-rendered.
type PageData struct {
	Title      string
	AppName    string
	AppVersion string
	AboutPath  string
	Banner     string

	Bindings []form.RangeBinding
	Button   Button
	Panels   Panels

	ModelInfo    template.HTML
	Overview     template.HTML
	ClusterStats template.HTML
	Catalogue    template.HTML
}

// Page renders a full page into w. Output is buffered so a failing template
// never leaves a partial page behind.
func (r *Renderer) Page(w io.Writer, name string, data PageData) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExecute, name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExecute, name, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}
