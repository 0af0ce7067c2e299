package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/irrigation-report/internal/export"
	"github.com/couchcryptid/irrigation-report/internal/observability"
	"github.com/couchcryptid/irrigation-report/internal/report"
)

var now = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

var runIDRe = regexp.MustCompile(`<meta name="report-run-id" content="[^"]*">`)

// execute runs the CLI with a fake clock and isolated metrics, returning stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("MAPBOX_TOKEN", "")
	t.Setenv("KAFKA_BROKERS", "")

	cmd := newRootCmd(observability.NewMetricsForTesting, clockwork.NewFakeClockAt(now))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_DefaultsToGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), report.DefaultPath)

	out, err := execute(t, "--output", path, "--days-back", "10", "--days-forward", "10", "--seed", "1")
	require.NoError(t, err)

	assert.Equal(t, "HTML file created successfully: "+path+"\n", out)
	html, err := os.ReadFile(path)
	require.NoError(t, err)

	span, err := report.ParseDateRange(html)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-09", span.Start.Format("2006-01-02"))
	assert.Equal(t, "2026-10-29", span.End.Format("2006-01-02"))
}

func TestGenerate_SeededReportsAreIdentical(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.html")
	second := filepath.Join(dir, "second.html")
	common := []string{"generate", "--days-back", "30", "--days-forward", "30", "--seed", "42", "--map-id", "map_fixed"}

	_, err := execute(t, append(common, "--output", first)...)
	require.NoError(t, err)
	_, err = execute(t, append(common, "--output", second)...)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)

	// Only the run id differs between seeded runs.
	strip := func(html []byte) string {
		return runIDRe.ReplaceAllString(string(html), "")
	}
	assert.Equal(t, strip(a), strip(b))
}

func TestGenerate_Summary(t *testing.T) {
	path := filepath.Join(t.TempDir(), report.DefaultPath)

	out, err := execute(t, "generate", "--summary", "--output", path, "--days-back", "5", "--days-forward", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Precipitation")
	assert.Contains(t, out, "Humidity")
	assert.Contains(t, out, "HTML file created successfully: "+path)
}

func TestGenerate_LocationOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), report.DefaultPath)

	_, err := execute(t, "--output", path, "--days-back", "1", "--days-forward", "1",
		"--location", "Pune", "--lat", "18.5204", "--lon", "73.8567")
	require.NoError(t, err)

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1>Irrigation Data Visualization for Pune</h1>")
	assert.Contains(t, string(html), "18.5204")
}

func TestGenerate_InvalidLatitude(t *testing.T) {
	_, err := execute(t, "--output", filepath.Join(t.TempDir(), "x.html"), "--lat", "100")
	require.Error(t, err)
}

func TestSetup_InstallsConfiguredLoggerAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("LOG_FORMAT", "json")

	_, err := execute(t, "--output", filepath.Join(t.TempDir(), "x.html"), "--days-back", "1", "--days-forward", "1")
	require.NoError(t, err)

	_, ok := slog.Default().Handler().(*slog.JSONHandler)
	assert.True(t, ok, "default logger should use the configured JSON handler")
}

func TestGenerate_InvalidSeed(t *testing.T) {
	_, err := execute(t, "--output", filepath.Join(t.TempDir(), "x.html"), "--seed", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOISE_SEED")
}

func TestExport_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.json")

	out, err := execute(t, "export", "--format", "json", "--out", path, "--days-back", "3", "--days-forward", "3", "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Dataset exported: "+path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	ds, err := export.ReadJSON(f)
	require.NoError(t, err)

	assert.Equal(t, 7, ds.Span.Days())
	require.Len(t, ds.Series, 3)
	for _, s := range ds.Series {
		assert.Len(t, s.Points, 7)
	}
}

func TestExport_CSVToStdout(t *testing.T) {
	out, err := execute(t, "export", "--format", "csv", "--out", "-", "--days-back", "0", "--days-forward", "1")
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 1+3*2)
	assert.Equal(t, "run_id,location,metric,unit,date,value", string(lines[0]))
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := execute(t, "export", "--format", "xlsx")
	require.Error(t, err)
}
