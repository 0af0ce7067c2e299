// Package export writes generated datasets in tabular formats for use outside the
// HTML report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/irrigation-report/internal/domain"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// Formats lists the supported formats in help-text order.
var Formats = []Format{FormatCSV, FormatJSON, FormatParquet}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or parquet)", s)
}

// Row is one point flattened with its series and run metadata.
type Row struct {
	RunID    string    `parquet:"run_id,snappy"`
	Location string    `parquet:"location,snappy"`
	Metric   string    `parquet:"metric,snappy"`
	Unit     string    `parquet:"unit,snappy"`
	Date     time.Time `parquet:"date,snappy"`
	Value    float64   `parquet:"value,snappy"`
}

var csvHeader = []string{"run_id", "location", "metric", "unit", "date", "value"}

// Rows flattens every series of ds in series order, then date order.
func Rows(ds domain.Dataset) []Row {
	var rows []Row
	for _, s := range ds.Series {
		for _, p := range s.Points {
			rows = append(rows, Row{
				RunID:    ds.RunID,
				Location: ds.Location.Name,
				Metric:   s.Metric.Name,
				Unit:     s.Metric.Unit,
				Date:     p.Date,
				Value:    p.Value,
			})
		}
	}
	return rows
}

// Write encodes ds to w in the given format.
func Write(w io.Writer, ds domain.Dataset, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, ds)
	case FormatJSON:
		return WriteJSON(w, ds)
	case FormatParquet:
		return WriteParquet(w, ds)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// WriteFile creates path (and its parent directories) and writes ds to it.
func WriteFile(path string, ds domain.Dataset, f Format) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()
	return Write(file, ds, f)
}

// WriteCSV writes one row per point with a header line.
func WriteCSV(w io.Writer, ds domain.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range Rows(ds) {
		rec := []string{
			r.RunID,
			r.Location,
			r.Metric,
			r.Unit,
			r.Date.Format(domain.DateLayout),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the whole dataset, including location and span, as indented JSON.
func WriteJSON(w io.Writer, ds domain.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return nil
}

// ReadJSON decodes a dataset written by WriteJSON.
func ReadJSON(r io.Reader) (domain.Dataset, error) {
	var ds domain.Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// WriteParquet writes the flattened rows with the schema inferred from Row.
func WriteParquet(w io.Writer, ds domain.Dataset) error {
	writer := parquet.NewGenericWriter[Row](w)
	if _, err := writer.Write(Rows(ds)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
