// Package chart builds Plotly figure specifications for the stacked series panels.
//
// The output mirrors what Plotly's make_subplots produces for a single-column grid: one
// x/y axis pair per row, rows stacked top to bottom with a fixed vertical gap, and each
// subplot title drawn as a paper-anchored annotation above its row.
package chart

import (
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/irrigation-report/internal/domain"
)

const (
	// DefaultHeight is the figure height in pixels.
	DefaultHeight = 900

	gridColor = "#EBF0F8"
	lineColor = "#2a3f5f"
)

// Figure is a Plotly figure: the traces and the layout that places them.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single scatter trace drawn as a line.
type Trace struct {
	Type  string    `json:"type"`
	Mode  string    `json:"mode"`
	Name  string    `json:"name"`
	X     []string  `json:"x"`
	Y     []float64 `json:"y"`
	XAxis string    `json:"xaxis"`
	YAxis string    `json:"yaxis"`
}

// Title is a Plotly title object.
type Title struct {
	Text string `json:"text"`
}

// Font is a Plotly font object.
type Font struct {
	Size  int    `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Annotation is a text label placed in paper coordinates.
type Annotation struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	XAnchor   string  `json:"xanchor"`
	YAnchor   string  `json:"yanchor"`
	ShowArrow bool    `json:"showarrow"`
	Font      Font    `json:"font"`
}

// Axis is a Plotly cartesian axis.
type Axis struct {
	Anchor    string     `json:"anchor"`
	Domain    [2]float64 `json:"domain"`
	Type      string     `json:"type,omitempty"`
	Range     []string   `json:"range,omitempty"`
	GridColor string     `json:"gridcolor"`
	LineColor string     `json:"linecolor"`
	ZeroLine  bool       `json:"zeroline"`
}

// Layout is the figure layout. Axes are keyed by their layout name ("xaxis", "yaxis2", ...)
// and flattened into the layout object on marshal.
type Layout struct {
	Title        Title           `json:"title"`
	Height       int             `json:"height"`
	ShowLegend   bool            `json:"showlegend"`
	PaperBGColor string          `json:"paper_bgcolor"`
	PlotBGColor  string          `json:"plot_bgcolor"`
	Font         Font            `json:"font"`
	Annotations  []Annotation    `json:"annotations"`
	Axes         map[string]Axis `json:"-"`
}

// MarshalJSON flattens Axes next to the fixed layout fields.
func (l Layout) MarshalJSON() ([]byte, error) {
	type plain Layout
	base, err := json.Marshal(plain(l))
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage, len(l.Axes)+8)
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for name, axis := range l.Axes {
		raw, err := json.Marshal(axis)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", name, err)
		}
		fields[name] = raw
	}
	return json.Marshal(fields)
}

// JSON serializes the figure as the {data, layout} object Plotly.newPlot consumes.
func (f Figure) JSON() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal figure: %w", err)
	}
	return data, nil
}

// ReportTitle is the chart and page title for a location.
func ReportTitle(location string) string {
	return "Irrigation Data Visualization for " + location
}

// Build lays the dataset's series out in stacked rows, one panel per metric, all sharing
// the dataset's date range.
func Build(ds domain.Dataset) Figure {
	n := len(ds.Series)
	domains := rowDomains(n, defaultSpacing(n))
	xRange := []string{ds.Span.Start.Format(domain.DateLayout), ds.Span.End.Format(domain.DateLayout)}

	fig := Figure{
		Data: make([]Trace, 0, n),
		Layout: Layout{
			Title:        Title{Text: ReportTitle(ds.Location.Name)},
			Height:       DefaultHeight,
			ShowLegend:   false,
			PaperBGColor: "white",
			PlotBGColor:  "white",
			Font:         Font{Color: lineColor},
			Annotations:  make([]Annotation, 0, n),
			Axes:         make(map[string]Axis, 2*n),
		},
	}

	for i, s := range ds.Series {
		xRef, yRef := axisName("x", i), axisName("y", i)

		x := make([]string, len(s.Points))
		y := make([]float64, len(s.Points))
		for j, p := range s.Points {
			x[j] = p.Date.Format(domain.DateLayout)
			y[j] = p.Value
		}
		fig.Data = append(fig.Data, Trace{
			Type:  "scatter",
			Mode:  "lines",
			Name:  s.Metric.Label(),
			X:     x,
			Y:     y,
			XAxis: xRef,
			YAxis: yRef,
		})

		fig.Layout.Axes[axisName("xaxis", i)] = Axis{
			Anchor:    yRef,
			Domain:    [2]float64{0, 1},
			Type:      "date",
			Range:     xRange,
			GridColor: gridColor,
			LineColor: gridColor,
		}
		fig.Layout.Axes[axisName("yaxis", i)] = Axis{
			Anchor:    xRef,
			Domain:    domains[i],
			GridColor: gridColor,
			LineColor: gridColor,
		}
		fig.Layout.Annotations = append(fig.Layout.Annotations, Annotation{
			Text:    s.Metric.Label(),
			X:       0.5,
			Y:       domains[i][1],
			XRef:    "paper",
			YRef:    "paper",
			XAnchor: "center",
			YAnchor: "bottom",
			Font:    Font{Size: 16},
		})
	}
	return fig
}

// defaultSpacing matches make_subplots: 0.3 / rows.
func defaultSpacing(rows int) float64 {
	if rows <= 1 {
		return 0
	}
	return 0.3 / float64(rows)
}

// rowDomains returns the [bottom, top] paper interval of each row, top row first.
func rowDomains(rows int, spacing float64) [][2]float64 {
	if rows == 0 {
		return nil
	}
	h := (1 - spacing*float64(rows-1)) / float64(rows)
	out := make([][2]float64, rows)
	for i := range rows {
		top := 1 - float64(i)*(h+spacing)
		out[i] = [2]float64{max(top-h, 0), top}
	}
	return out
}

// axisName numbers every axis after the first: "x", "x2" on traces and "xaxis", "xaxis2"
// in the layout.
func axisName(prefix string, i int) string {
	if i == 0 {
		return prefix
	}
	return fmt.Sprintf("%s%d", prefix, i+1)
}
