// Command validate re-checks an exported dataset, and optionally the HTML report
// rendered from it, against the properties every generated report must hold: one
// point per calendar day across the span, noise consistent with the configured
// amplitude, and a report whose stated date range matches the series.
//
// Usage:
//
//	go run ./cmd/irrigation export --format json --out data/series.json
//	go run ./cmd/validate \
//	  -dataset data/series.json \
//	  -report irrigation_data_visualization.html
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/couchcryptid/irrigation-report/internal/chart"
	"github.com/couchcryptid/irrigation-report/internal/domain"
	"github.com/couchcryptid/irrigation-report/internal/export"
	"github.com/couchcryptid/irrigation-report/internal/report"
)

// minNoiseSamples is the series length below which noise statistics are too unstable
// to check.
const minNoiseSamples = 200

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	datasetPath := flag.String("dataset", "", "path to a JSON dataset written by `irrigation export --format json`")
	reportPath := flag.String("report", "", "optional path to the HTML report rendered from the same run")
	flag.Parse()

	if *datasetPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*datasetPath, *reportPath); code != 0 {
		os.Exit(code)
	}
}

func run(datasetPath, reportPath string) int {
	fmt.Println("=== Irrigation Report Validation ===")
	fmt.Println()

	ds, err := loadDataset(datasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSpan(ds),
		validateSeriesShape(ds),
		validateNoise(ds),
	}

	if reportPath != "" {
		html, err := os.ReadFile(reportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: read report: %v\n", err)
			return 1
		}
		phases = append(phases, validateReport(ds, html))
	}

	return printResults(ds, phases)
}

func printResults(ds domain.Dataset, phases []*phase) int {
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	allPassed := true
	for _, p := range phases {
		status := pass("PASS")
		if !p.passed() {
			status = fail(fmt.Sprintf("FAIL (%d errors)", len(p.errors)))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Run %s: %d series over %s (%d days) for %s\n",
		ds.RunID, len(ds.Series), ds.Span, ds.Span.Days(), ds.Location.Name)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadDataset(path string) (domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Dataset{}, err
	}
	defer f.Close()
	return export.ReadJSON(f)
}

// ── Phases ──

func validateSpan(ds domain.Dataset) *phase {
	p := &phase{name: "Span"}
	if err := ds.Span.Validate(); err != nil {
		p.errorf("%v", err)
	}
	if len(ds.Series) == 0 {
		p.errorf("dataset has no series")
	}
	return p
}

// validateSeriesShape checks that every series has exactly one point per day of the
// span, in order.
func validateSeriesShape(ds domain.Dataset) *phase {
	p := &phase{name: "Series shape (daily, full span)"}
	want := ds.Span.Days()

	seen := make(map[string]bool, len(ds.Series))
	for _, s := range ds.Series {
		name := s.Metric.Name
		if seen[name] {
			p.errorf("%s: duplicate series", name)
		}
		seen[name] = true

		if len(s.Points) != want {
			p.errorf("%s: %d points, want %d", name, len(s.Points), want)
		}
		if len(s.Points) == 0 {
			continue
		}
		if first := s.Points[0].Date; !first.Equal(ds.Span.Start) {
			p.errorf("%s: first date %s, want %s", name, first.Format(domain.DateLayout), ds.Span.Start.Format(domain.DateLayout))
		}
		if last := s.Points[len(s.Points)-1].Date; !last.Equal(ds.Span.End) {
			p.errorf("%s: last date %s, want %s", name, last.Format(domain.DateLayout), ds.Span.End.Format(domain.DateLayout))
		}
		for i := 1; i < len(s.Points); i++ {
			prev, cur := s.Points[i-1].Date, s.Points[i].Date
			if !cur.Equal(prev.AddDate(0, 0, 1)) {
				p.errorf("%s: point %d dated %s follows %s", name, i, cur.Format(domain.DateLayout), prev.Format(domain.DateLayout))
				break
			}
		}
		for i, pt := range s.Points {
			if math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0) {
				p.errorf("%s: point %d is not finite", name, i)
				break
			}
		}
	}
	return p
}

// validateNoise subtracts the deterministic trend from each series and checks that the
// residual looks like Normal(0, |amplitude|/4).
func validateNoise(ds domain.Dataset) *phase {
	p := &phase{name: "Noise model"}
	for _, s := range ds.Series {
		params := s.Metric.Params
		if err := params.Validate(); err != nil {
			p.errorf("%s: %v", s.Metric.Name, err)
			continue
		}

		n := len(s.Points)
		sigma := math.Abs(params.Amplitude) / 4
		if sigma == 0 {
			for i, pt := range s.Points {
				if pt.Value != params.Base {
					p.errorf("%s: point %d is %g, want constant %g", s.Metric.Name, i, pt.Value, params.Base)
					break
				}
			}
			continue
		}
		if n < minNoiseSamples {
			continue
		}

		var sum, sq float64
		for t, pt := range s.Points {
			r := pt.Value - trend(params, t, n)
			sum += r
			sq += r * r
		}
		mean := sum / float64(n)
		std := math.Sqrt(sq/float64(n) - mean*mean)

		// Five standard errors keeps false alarms negligible for any seed.
		if limit := 5 * sigma / math.Sqrt(float64(n)); math.Abs(mean) > limit {
			p.errorf("%s: residual mean %.4f exceeds %.4f", s.Metric.Name, mean, limit)
		}
		if std < 0.8*sigma || std > 1.2*sigma {
			p.errorf("%s: residual std %.4f, want about %.4f", s.Metric.Name, std, sigma)
		}
	}
	return p
}

func trend(params domain.Params, t, n int) float64 {
	return params.Base + params.Amplitude*math.Sin(2*math.Pi*params.Frequency*float64(t)/float64(n))
}

// validateReport checks that the HTML report describes the same run as the dataset.
func validateReport(ds domain.Dataset, html []byte) *phase {
	p := &phase{name: "Report consistency"}

	span, err := report.ParseDateRange(html)
	switch {
	case err != nil:
		p.errorf("%v", err)
	case !span.Start.Equal(ds.Span.Start) || !span.End.Equal(ds.Span.End):
		p.errorf("report states %s, dataset spans %s", span, ds.Span)
	}

	page := string(html)
	if title := chart.ReportTitle(ds.Location.Name); !strings.Contains(page, title) {
		p.errorf("report title does not mention %q", ds.Location.Name)
	}
	for _, s := range ds.Series {
		if !strings.Contains(page, s.Metric.Label()) {
			p.errorf("report has no panel for %q", s.Metric.Label())
		}
	}
	return p
}
