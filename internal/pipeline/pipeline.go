// Package pipeline runs the linear generate, render, write and publish sequence that
// produces one irrigation report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/irrigation-report/internal/domain"
	"github.com/couchcryptid/irrigation-report/internal/observability"
	"github.com/couchcryptid/irrigation-report/internal/report"
)

// Renderer turns a dataset into a complete HTML document.
type Renderer interface {
	Render(ds domain.Dataset) ([]byte, error)
}

// Publisher forwards generated series to a downstream system.
type Publisher interface {
	Publish(ctx context.Context, ds domain.Dataset) error
}

// Options configures what a run generates and where the report goes.
type Options struct {
	Location    domain.Location
	OutputPath  string
	DaysBack    int
	DaysForward int
	Seed        *uint64         // nil draws a fresh seed per run
	Metrics     []domain.Metric // defaults to domain.DefaultMetrics
}

// Result is the outcome of one successful run.
type Result struct {
	Dataset domain.Dataset
	HTML    []byte
	Path    string
}

// Pipeline orchestrates report generation. Runs are serialized; the most recent result
// is kept for serving.
type Pipeline struct {
	renderer  Renderer
	geocoder  domain.Geocoder
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	opts      Options

	runMu  sync.Mutex
	mu     sync.RWMutex
	latest Result
	ready  atomic.Bool
}

// New creates a Pipeline. geocoder and publisher may be nil to skip location
// enrichment and publishing.
func New(r Renderer, g domain.Geocoder, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, opts Options) *Pipeline {
	if opts.Metrics == nil {
		opts.Metrics = domain.DefaultMetrics
	}
	if opts.OutputPath == "" {
		opts.OutputPath = report.DefaultPath
	}
	return &Pipeline{
		renderer:  r,
		geocoder:  g,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		opts:      opts,
	}
}

// CheckReadiness returns nil once a report has been produced.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no report has been generated yet")
	}
	return nil
}

// Latest returns the result of the most recent successful run.
func (p *Pipeline) Latest() (Result, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.ready.Load()
}

// Generate resolves the location and synthesizes every configured series over the
// window around the clock's current time.
func (p *Pipeline) Generate(ctx context.Context) (domain.Dataset, error) {
	now := p.clock.Now()
	loc := domain.ResolveLocation(ctx, p.opts.Location, p.geocoder, p.logger)
	span := domain.Window(now, p.opts.DaysBack, p.opts.DaysForward)

	series, err := domain.GenerateAll(span, p.opts.Metrics, domain.NewNoise(p.opts.Seed))
	if err != nil {
		p.metrics.RunFailures.WithLabelValues("generate").Inc()
		return domain.Dataset{}, err
	}

	for _, s := range series {
		p.metrics.SeriesGenerated.WithLabelValues(s.Metric.Name).Inc()
		p.metrics.PointsGenerated.Add(float64(len(s.Points)))
	}

	return domain.Dataset{
		RunID:       uuid.NewString(),
		Location:    loc,
		Span:        span,
		Series:      series,
		GeneratedAt: now.UTC(),
	}, nil
}

// Run generates a dataset, renders it, writes the report file and publishes the points
// when a publisher is configured. The first failing stage aborts the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := p.clock.Now()

	ds, err := p.Generate(ctx)
	if err != nil {
		return Result{}, err
	}
	log := p.logger.With("run_id", ds.RunID)
	log.Info("series generated",
		"location", ds.Location.Name,
		"span", ds.Span.String(),
		"days", ds.Span.Days(),
		"series", len(ds.Series),
	)

	html, err := p.renderer.Render(ds)
	if err != nil {
		p.metrics.RunFailures.WithLabelValues("render").Inc()
		return Result{}, err
	}

	if err := report.WriteFile(p.opts.OutputPath, html); err != nil {
		p.metrics.RunFailures.WithLabelValues("write").Inc()
		return Result{}, err
	}
	p.metrics.ReportsWritten.Inc()
	p.metrics.ReportBytes.Set(float64(len(html)))
	log.Info("report written", "path", p.opts.OutputPath, "bytes", len(html))

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, ds); err != nil {
			p.metrics.RunFailures.WithLabelValues("publish").Inc()
			return Result{}, fmt.Errorf("publish series: %w", err)
		}
	}

	res := Result{Dataset: ds, HTML: html, Path: p.opts.OutputPath}
	p.mu.Lock()
	p.latest = res
	p.mu.Unlock()
	p.ready.Store(true)

	p.metrics.GenerationDuration.Observe(p.clock.Since(start).Seconds())
	return res, nil
}
