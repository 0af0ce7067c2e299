// Command irrigation generates a mock irrigation climate report: three synthetic daily
// series rendered as a Plotly chart next to a Leaflet map of the location, written to a
// single static HTML file.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/irrigation-report/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd(observability.NewMetrics, clockwork.NewRealClock()).ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("irrigation report failed", "error", err)
		os.Exit(1)
	}
}
