package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/irrigation-report/internal/domain"
)

func testDataset(t *testing.T) domain.Dataset {
	t.Helper()
	span := domain.NewSpan(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC))
	seed := uint64(11)
	series, err := domain.GenerateAll(span, domain.DefaultMetrics, domain.NewNoise(&seed))
	require.NoError(t, err)
	return domain.Dataset{
		RunID:    "run-export",
		Location: domain.Location{Name: "Bengaluru", Lat: 12.9716, Lon: 77.5946},
		Span:     span,
		Series:   series,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{" parquet ", FormatParquet, false},
		{"xlsx", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRows_SeriesThenDateOrder(t *testing.T) {
	ds := testDataset(t)

	rows := Rows(ds)

	require.Len(t, rows, 30)
	assert.Equal(t, "Precipitation", rows[0].Metric)
	assert.Equal(t, "Evapotranspiration", rows[10].Metric)
	assert.Equal(t, "Humidity", rows[29].Metric)
	assert.Equal(t, ds.Span.Start, rows[10].Date)
	assert.Equal(t, ds.Span.End, rows[29].Date)
}

func TestWriteCSV(t *testing.T) {
	ds := testDataset(t)
	var buf bytes.Buffer

	require.NoError(t, WriteCSV(&buf, ds))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 31)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"run-export", "Bengaluru", "Precipitation", "mm/day", "2020-01-01"}, records[1][:5])
	assert.Equal(t, "2020-01-10", records[30][4])
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	ds := testDataset(t)
	var buf bytes.Buffer

	require.NoError(t, WriteJSON(&buf, ds))
	got, err := ReadJSON(&buf)
	require.NoError(t, err)

	assert.Equal(t, ds.RunID, got.RunID)
	assert.Equal(t, ds.Location, got.Location)
	assert.True(t, ds.Span.Start.Equal(got.Span.Start))
	require.Len(t, got.Series, 3)
	assert.Equal(t, ds.Series[2].Values(), got.Series[2].Values())
}

func TestReadJSON_Invalid(t *testing.T) {
	_, err := ReadJSON(bytes.NewBufferString("{not json"))
	require.Error(t, err)
}

func TestWriteFile_Parquet(t *testing.T) {
	ds := testDataset(t)
	path := filepath.Join(t.TempDir(), "out", "series.parquet")

	require.NoError(t, WriteFile(path, ds, FormatParquet))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[Row](file)
	defer reader.Close()

	got := make([]Row, reader.NumRows())
	n, err := reader.Read(got)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	want := Rows(ds)
	require.Equal(t, len(want), n)
	for i := range want {
		assert.Equal(t, want[i].Metric, got[i].Metric)
		assert.Equal(t, want[i].Unit, got[i].Unit)
		assert.True(t, want[i].Date.Equal(got[i].Date), "row %d date", i)
		assert.InDelta(t, want[i].Value, got[i].Value, 0)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(io.Discard, testDataset(t), Format("xml"))
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ds := domain.Dataset{Series: []domain.Series{
		{
			Metric: domain.Metric{Name: "Humidity", Unit: "%"},
			Points: []domain.Point{{Date: day, Value: 2}, {Date: day, Value: 4}, {Date: day, Value: 4}, {Date: day, Value: 4},
				{Date: day, Value: 5}, {Date: day, Value: 5}, {Date: day, Value: 7}, {Date: day, Value: 9}},
		},
		{Metric: domain.Metric{Name: "Empty"}},
	}}

	stats := Summarize(ds)

	require.Len(t, stats, 2)
	assert.Equal(t, "Humidity", stats[0].Metric)
	assert.Equal(t, 8, stats[0].Count)
	assert.InDelta(t, 2.0, stats[0].Min, 0)
	assert.InDelta(t, 9.0, stats[0].Max, 0)
	assert.InDelta(t, 5.0, stats[0].Mean, 1e-12)
	assert.InDelta(t, 2.0, stats[0].StdDev, 1e-12)
	assert.Zero(t, stats[1].Count)
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, RenderSummary(&buf, Summarize(testDataset(t))))

	out := buf.String()
	for _, m := range domain.DefaultMetrics {
		assert.Contains(t, out, m.Name)
	}
	assert.Contains(t, out, "mm/day")
}
