package main

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/irrigation-report/internal/adapter/kafka"
	"github.com/couchcryptid/irrigation-report/internal/adapter/mapbox"
	"github.com/couchcryptid/irrigation-report/internal/config"
	"github.com/couchcryptid/irrigation-report/internal/domain"
	"github.com/couchcryptid/irrigation-report/internal/export"
	"github.com/couchcryptid/irrigation-report/internal/geomap"
	"github.com/couchcryptid/irrigation-report/internal/observability"
	"github.com/couchcryptid/irrigation-report/internal/pipeline"
	"github.com/couchcryptid/irrigation-report/internal/report"
)

// flags holds command-line values that override the environment configuration.
type flags struct {
	seed        string
	output      string
	location    string
	lat         float64
	lon         float64
	daysBack    int
	daysForward int
	addr        string
	mapID       string
}

// app carries the resolved configuration and shared dependencies of one invocation.
type app struct {
	newMetrics func() *observability.Metrics
	clock      clockwork.Clock
	flags      flags

	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

func newRootCmd(newMetrics func() *observability.Metrics, clock clockwork.Clock) *cobra.Command {
	a := &app{newMetrics: newMetrics, clock: clock}
	var summary bool

	root := &cobra.Command{
		Use:   "irrigation",
		Short: "Generate a mock irrigation climate report.",
		Long: `Synthesize daily precipitation, evapotranspiration and humidity series around
today and write them, with a map of the location, to a static HTML report.

Every value is simulated: a sinusoidal seasonal trend plus Gaussian noise.
Configuration comes from the environment (see .env.example); flags override it.

Examples:
  # Write irrigation_data_visualization.html for the default location
  irrigation

  # Reproducible one-year report for another place
  irrigation generate --seed 42 --days-back 182 --days-forward 183 \
    --location Pune --lat 18.5204 --lon 73.8567

  # Serve the report and regenerate it on demand
  irrigation serve --addr :8080

  # Export the generated series as Parquet
  irrigation export --format parquet --out data/series.parquet`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd, summary)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.seed, "seed", "", "noise seed for reproducible values (overrides NOISE_SEED)")
	pf.StringVarP(&a.flags.output, "output", "o", "", "report path (overrides OUTPUT_PATH)")
	pf.StringVar(&a.flags.location, "location", "", "location name (overrides LOCATION_NAME)")
	pf.Float64Var(&a.flags.lat, "lat", 0, "location latitude (overrides LOCATION_LAT)")
	pf.Float64Var(&a.flags.lon, "lon", 0, "location longitude (overrides LOCATION_LON)")
	pf.IntVar(&a.flags.daysBack, "days-back", 0, "days of history before today (overrides DAYS_BACK)")
	pf.IntVar(&a.flags.daysForward, "days-forward", 0, "days of projection after today (overrides DAYS_FORWARD)")
	pf.StringVar(&a.flags.mapID, "map-id", "", "fixed map element id, for byte-identical reports")
	_ = pf.MarkHidden("map-id")

	root.Flags().BoolVar(&summary, "summary", false, "print per-metric statistics after writing the report")

	root.AddCommand(newGenerateCmd(a), newServeCmd(a), newExportCmd(a))
	return root
}

// setup loads the environment configuration, applies flag overrides and builds the
// logger and metrics.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("seed") {
		if err := cfg.SetSeed(a.flags.seed); err != nil {
			return err
		}
	}
	if f.Changed("output") {
		cfg.OutputPath = a.flags.output
	}
	if f.Changed("location") {
		cfg.LocationName = a.flags.location
		// A renamed location without coordinates is resolved by the geocoder.
		if cfg.MapboxEnabled && !f.Changed("lat") && !f.Changed("lon") {
			cfg.LocationLat, cfg.LocationLon = 0, 0
		}
	}
	if f.Changed("lat") {
		cfg.LocationLat = a.flags.lat
	}
	if f.Changed("lon") {
		cfg.LocationLon = a.flags.lon
	}
	if f.Changed("days-back") {
		cfg.DaysBack = a.flags.daysBack
	}
	if f.Changed("days-forward") {
		cfg.DaysForward = a.flags.daysForward
	}
	if f.Changed("addr") {
		cfg.HTTPAddr = a.flags.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = observability.NewLogger(cfg)
	slog.SetDefault(a.logger)
	a.metrics = a.newMetrics()
	return nil
}

// newPipeline wires the report pipeline with the optional geocoder and publisher. The
// returned func releases the publisher.
func (a *app) newPipeline() (*pipeline.Pipeline, func()) {
	var geocoder domain.Geocoder
	if a.cfg.MapboxEnabled {
		client := mapbox.NewClient(a.cfg.MapboxToken, a.cfg.MapboxTimeout, a.metrics, a.logger)
		geocoder = mapbox.NewCachedGeocoder(client, a.cfg.MapboxCacheSize, a.metrics)
		a.logger.Info("mapbox geocoding enabled", "cache_size", a.cfg.MapboxCacheSize, "timeout", a.cfg.MapboxTimeout)
	} else {
		a.logger.Debug("mapbox geocoding disabled")
	}

	var publisher pipeline.Publisher
	cleanup := func() {}
	if a.cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(a.cfg, a.logger, a.metrics)
		publisher = writer
		cleanup = func() {
			if err := writer.Close(); err != nil {
				a.logger.Error("kafka writer close error", "error", err)
			}
		}
		a.logger.Info("kafka publishing enabled", "brokers", a.cfg.KafkaBrokers, "topic", a.cfg.KafkaTopic)
	}

	p := pipeline.New(
		report.NewRenderer(geomap.Options{ID: a.flags.mapID}),
		geocoder,
		publisher,
		a.logger,
		a.metrics,
		a.clock,
		pipeline.Options{
			Location:    a.cfg.Location(),
			OutputPath:  a.cfg.OutputPath,
			DaysBack:    a.cfg.DaysBack,
			DaysForward: a.cfg.DaysForward,
			Seed:        a.cfg.Seed,
		},
	)
	return p, cleanup
}

func newGenerateCmd(a *app) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the HTML report (the default command).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd, summary)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print per-metric statistics after writing the report")
	return cmd
}

func (a *app) generate(cmd *cobra.Command, summary bool) error {
	p, cleanup := a.newPipeline()
	defer cleanup()

	res, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary {
		if err := export.RenderSummary(out, export.Summarize(res.Dataset)); err != nil {
			return err
		}
	}
	_, err = color.New(color.FgGreen).Fprintf(out, "HTML file created successfully: %s\n", res.Path)
	return err
}
