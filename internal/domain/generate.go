package domain

import (
	"fmt"
	"math"
)

// DefaultMetrics is the catalog rendered into the irrigation report, in panel order.
var DefaultMetrics = []Metric{
	{Name: "Precipitation", Unit: "mm/day", Params: Params{Base: 5, Amplitude: 3, Frequency: 2}},
	{Name: "Evapotranspiration", Unit: "mm/day", Params: Params{Base: 3, Amplitude: 1, Frequency: 1.5}},
	{Name: "Humidity", Unit: "%", Params: Params{Base: 60, Amplitude: 20, Frequency: 1}},
}

// Generate produces one point per day of span: a sinusoidal trend that completes
// p.Frequency cycles across the span, plus Normal(0, |p.Amplitude|/4) noise.
func Generate(span Span, p Params, noise Noise) ([]Point, error) {
	if err := span.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	dates := span.Dates()
	n := float64(len(dates))
	sigma := math.Abs(p.Amplitude) / 4

	points := make([]Point, len(dates))
	for t, d := range dates {
		trend := p.Base + p.Amplitude*math.Sin(2*math.Pi*p.Frequency*float64(t)/n)
		var eps float64
		if sigma > 0 {
			eps = sigma * noise.NormFloat64()
		}
		points[t] = Point{Date: d, Value: trend + eps}
	}
	return points, nil
}

// Validate rejects parameters that would produce non-finite values.
func (p Params) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"base", p.Base},
		{"amplitude", p.Amplitude},
		{"frequency", p.Frequency},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidParams, f.name)
		}
	}
	if p.Frequency < 0 {
		return fmt.Errorf("%w: frequency %g is negative", ErrInvalidParams, p.Frequency)
	}
	return nil
}

// GenerateSeries runs Generate for a catalog metric.
func GenerateSeries(span Span, m Metric, noise Noise) (Series, error) {
	points, err := Generate(span, m.Params, noise)
	if err != nil {
		return Series{}, fmt.Errorf("generate %s: %w", m.Name, err)
	}
	return Series{Metric: m, Points: points}, nil
}

// GenerateAll generates every metric over the same span, drawing from a shared noise source.
func GenerateAll(span Span, metrics []Metric, noise Noise) ([]Series, error) {
	out := make([]Series, 0, len(metrics))
	for _, m := range metrics {
		s, err := GenerateSeries(span, m, noise)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
