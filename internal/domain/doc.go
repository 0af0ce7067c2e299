// Package domain models the mock climate series rendered into the irrigation report.
//
// # Signal Model
//
// Each metric is a daily series over an inclusive span of UTC calendar days. For a span of
// N days and day index t in [0, N), the value is
//
//	trend(t) = base + amplitude * sin(2π * frequency * t / N)
//	value(t) = trend(t) + noise(t),   noise(t) ~ Normal(0, |amplitude| / 4)
//
// Frequency is the number of complete oscillations across the whole span, so the shape of
// the trend does not depend on the span's length in days. Noise is drawn once per day from
// an injected [Noise] source; pass a seed to [NewNoise] for reproducible output.
//
// # Default Metrics
//
//	Precipitation (mm/day):       base 5,  amplitude 3,  frequency 2
//	Evapotranspiration (mm/day):  base 3,  amplitude 1,  frequency 1.5
//	Humidity (%):                 base 60, amplitude 20, frequency 1
//
// # Report Window
//
// The production window runs 5×365 days into the past and 5×365 days into the future from
// the reference time, truncated to whole UTC days. See [Window].
//
// # Invalid Input
//
// A span whose end precedes its start has no days and would divide by zero in the trend
// formula; [Generate] rejects it with [ErrInvalidSpan] instead. A single-day span is valid
// and yields base plus noise.
package domain
