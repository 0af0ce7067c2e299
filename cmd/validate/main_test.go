package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/irrigation-report/internal/domain"
	"github.com/couchcryptid/irrigation-report/internal/export"
	"github.com/couchcryptid/irrigation-report/internal/geomap"
	"github.com/couchcryptid/irrigation-report/internal/report"
)

func generated(t *testing.T) domain.Dataset {
	t.Helper()
	span := domain.Window(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), 365, 365)
	seed := uint64(5)
	series, err := domain.GenerateAll(span, domain.DefaultMetrics, domain.NewNoise(&seed))
	require.NoError(t, err)
	return domain.Dataset{
		RunID:    "run-validate",
		Location: domain.Location{Name: "Bengaluru", Lat: 12.9716, Lon: 77.5946},
		Span:     span,
		Series:   series,
	}
}

func TestPhases_PassForGeneratedDataset(t *testing.T) {
	ds := generated(t)
	html, err := report.NewRenderer(geomap.Options{}).Render(ds)
	require.NoError(t, err)

	for _, p := range []*phase{validateSpan(ds), validateSeriesShape(ds), validateNoise(ds), validateReport(ds, html)} {
		assert.True(t, p.passed(), "%s: %v", p.name, p.errors)
	}
}

func TestValidateSeriesShape_DetectsGap(t *testing.T) {
	ds := generated(t)
	pts := ds.Series[1].Points
	ds.Series[1].Points = append(pts[:10:10], pts[11:]...)

	p := validateSeriesShape(ds)

	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "Evapotranspiration")
}

func TestValidateNoise_DetectsMissingNoise(t *testing.T) {
	ds := generated(t)
	s := ds.Series[2]
	n := len(s.Points)
	for i := range s.Points {
		s.Points[i].Value = trend(s.Metric.Params, i, n)
	}

	p := validateNoise(ds)

	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "Humidity: residual std")
}

func TestValidateReport_DetectsSpanMismatch(t *testing.T) {
	ds := generated(t)
	html, err := report.NewRenderer(geomap.Options{}).Render(ds)
	require.NoError(t, err)

	ds.Span.End = ds.Span.End.AddDate(0, 0, 1)
	p := validateReport(ds, html)

	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "report states")
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	ds := generated(t)

	datasetPath := filepath.Join(dir, "series.json")
	require.NoError(t, export.WriteFile(datasetPath, ds, export.FormatJSON))

	html, err := report.NewRenderer(geomap.Options{}).Render(ds)
	require.NoError(t, err)
	reportPath := filepath.Join(dir, report.DefaultPath)
	require.NoError(t, report.WriteFile(reportPath, html))

	assert.Equal(t, 0, run(datasetPath, reportPath))
	assert.Equal(t, 1, run(filepath.Join(dir, "missing.json"), ""))

	require.NoError(t, os.WriteFile(reportPath, []byte("<html></html>"), 0o600))
	assert.Equal(t, 1, run(datasetPath, reportPath))
}
