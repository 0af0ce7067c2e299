package domain

import (
	"time"
)

// Point is one daily sample of a series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Params describes the synthetic signal of one metric.
type Params struct {
	Base      float64 `json:"base"`      // vertical offset
	Amplitude float64 `json:"amplitude"` // half-range of the sinusoid
	Frequency float64 `json:"frequency"` // full cycles across the span
}

// Metric names a generated series and the parameters that shape it.
type Metric struct {
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Params Params `json:"params"`
}

// Label is the display title used for chart panels, e.g. "Humidity (%)".
func (m Metric) Label() string {
	if m.Unit == "" {
		return m.Name
	}
	return m.Name + " (" + m.Unit + ")"
}

// Series is an ordered daily time series for a single metric.
type Series struct {
	Metric Metric  `json:"metric"`
	Points []Point `json:"points"`
}

// Dates returns the timestamps of every point in order.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// Values returns the values of every point in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Location is a named WGS-84 point used for the map and report labels.
type Location struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"` // filled by reverse geocoding when available
}

// HasCoords reports whether the location carries a non-null-island coordinate.
func (l Location) HasCoords() bool {
	return l.Lat != 0 || l.Lon != 0
}

// Dataset bundles everything one report is rendered from.
type Dataset struct {
	RunID       string    `json:"run_id"`
	Location    Location  `json:"location"`
	Span        Span      `json:"span"`
	Series      []Series  `json:"series"`
	GeneratedAt time.Time `json:"generated_at"`
}
