package usecase

import (
	"context"
	"io"
	"log"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/gateway"
	"github.com/naka-gawa/git-tracker/internal/resource"
)

// Metrics runs the backend's telemetry agent for one repo and holds the report.
type Metrics struct {
	tracker gateway.Tracker
	id      int
	res     *resource.Resource[*domain.MetricsReport]
}

// NewMetrics creates the metrics view for repo id.
func NewMetrics(tracker gateway.Tracker, id int, reporter resource.Reporter, logger *log.Logger) *Metrics {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	m := &Metrics{tracker: tracker, id: id}
	m.res = resource.New("metrics", m.fetch,
		resource.WithEmpty(func(r *domain.MetricsReport) bool { return r == nil }),
		resource.WithReporter[*domain.MetricsReport](reporter),
		resource.WithLogger[*domain.MetricsReport](logger),
	)
	return m
}

func (m *Metrics) fetch(ctx context.Context) (*domain.MetricsReport, error) {
	return m.tracker.FetchMetrics(ctx, m.id)
}

// Load triggers a metrics run.
func (m *Metrics) Load(ctx context.Context) (*domain.MetricsReport, error) {
	return m.res.Load(ctx)
}

// Snapshot returns the current render state.
func (m *Metrics) Snapshot() resource.Snapshot[*domain.MetricsReport] {
	return m.res.Snapshot()
}
