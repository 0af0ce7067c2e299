package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/irrigation-report/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format  string
		out     string
		summary bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the generated series as CSV, JSON or Parquet.",
		Long: `Generate the series exactly as the report would and write them to a file
instead of rendering HTML. JSON exports carry the location and span and can be
checked with cmd/validate. Use --out - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if out == "" {
				out = "irrigation_series." + string(f)
			}

			p, cleanup := a.newPipeline()
			defer cleanup()

			ds, err := p.Generate(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out == "-" {
				return export.Write(w, ds, f)
			}
			if err := export.WriteFile(out, ds, f); err != nil {
				return err
			}
			a.logger.Info("dataset exported", "path", out, "format", f, "run_id", ds.RunID)

			if summary {
				if err := export.RenderSummary(w, export.Summarize(ds)); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(w, "Dataset exported: %s\n", out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "csv, json or parquet")
	cmd.Flags().StringVar(&out, "out", "", `output path, "-" for stdout (default irrigation_series.<format>)`)
	cmd.Flags().BoolVar(&summary, "summary", false, "print per-metric statistics")
	return cmd
}
