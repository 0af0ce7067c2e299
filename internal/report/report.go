// Package report composes the static HTML report and writes it to disk.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/couchcryptid/irrigation-report/internal/chart"
	"github.com/couchcryptid/irrigation-report/internal/domain"
	"github.com/couchcryptid/irrigation-report/internal/geomap"
)

// DefaultPath is where the report is written unless configured otherwise.
const DefaultPath = "irrigation_data_visualization.html"

// dateRangeRe recovers the span printed in the explanatory paragraph.
var dateRangeRe = regexp.MustCompile(`<span class="span-start">(\d{4}-\d{2}-\d{2})</span> to <span class="span-end">(\d{4}-\d{2}-\d{2})</span>`)

// Renderer turns a dataset into the HTML document.
type Renderer struct {
	Map geomap.Options
}

// NewRenderer creates a Renderer with the given map options.
func NewRenderer(mapOpts geomap.Options) *Renderer {
	return &Renderer{Map: mapOpts}
}

// Render builds the chart and map for ds and executes the page template.
func (r *Renderer) Render(ds domain.Dataset) ([]byte, error) {
	if len(ds.Series) == 0 {
		return nil, errors.New("render report: dataset has no series")
	}

	figJSON, err := chart.Build(ds).JSON()
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	frag, err := geomap.Render(ds.Location, r.Map)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, map[string]any{
		"RunID":      ds.RunID,
		"Title":      chart.ReportTitle(ds.Location.Name),
		"Name":       ds.Location.Name,
		"Address":    ds.Location.Address,
		"PlotlyJS":   plotlyCDN,
		"LeafletCSS": leafletCSSCDN,
		"LeafletJS":  leafletJSCDN,
		"Map":        frag.HTML,
		"Start":      ds.Span.Start.Format(domain.DateLayout),
		"End":        ds.Span.End.Format(domain.DateLayout),
		// json.Marshal escapes <, > and & so the figure cannot close the script element.
		"Figure": template.JS(figJSON), //nolint:gosec // marshaled JSON
	})
	if err != nil {
		return nil, fmt.Errorf("render report: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the report to path, creating parent directories and replacing any
// existing file.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // report is meant to be shared
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ParseDateRange returns the start and end dates stated in a rendered report.
func ParseDateRange(html []byte) (domain.Span, error) {
	m := dateRangeRe.FindSubmatch(html)
	if m == nil {
		return domain.Span{}, errors.New("report has no date range paragraph")
	}
	start, err := time.Parse(domain.DateLayout, string(m[1]))
	if err != nil {
		return domain.Span{}, fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.Parse(domain.DateLayout, string(m[2]))
	if err != nil {
		return domain.Span{}, fmt.Errorf("parse end date: %w", err)
	}
	return domain.NewSpan(start, end), nil
}
