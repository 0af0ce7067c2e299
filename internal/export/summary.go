package export

import (
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/couchcryptid/irrigation-report/internal/domain"
)

// Stats describes the distribution of one series.
type Stats struct {
	Metric string
	Unit   string
	Count  int
	Min    float64
	Mean   float64
	Max    float64
	StdDev float64 // population standard deviation
}

// Summarize computes per-series statistics in series order.
func Summarize(ds domain.Dataset) []Stats {
	out := make([]Stats, 0, len(ds.Series))
	for _, s := range ds.Series {
		st := Stats{Metric: s.Metric.Name, Unit: s.Metric.Unit, Count: len(s.Points)}
		if st.Count == 0 {
			out = append(out, st)
			continue
		}
		st.Min, st.Max = math.Inf(1), math.Inf(-1)
		var sum float64
		for _, p := range s.Points {
			sum += p.Value
			st.Min = math.Min(st.Min, p.Value)
			st.Max = math.Max(st.Max, p.Value)
		}
		st.Mean = sum / float64(st.Count)
		var sq float64
		for _, p := range s.Points {
			d := p.Value - st.Mean
			sq += d * d
		}
		st.StdDev = math.Sqrt(sq / float64(st.Count))
		out = append(out, st)
	}
	return out
}

// RenderSummary prints stats as a table.
func RenderSummary(w io.Writer, stats []Stats) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Unit", "Days", "Min", "Mean", "Max", "Std Dev"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(stats))
	for _, st := range stats {
		data = append(data, []string{
			st.Metric,
			st.Unit,
			strconv.Itoa(st.Count),
			formatFloat(st.Min),
			formatFloat(st.Mean),
			formatFloat(st.Max),
			formatFloat(st.StdDev),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
