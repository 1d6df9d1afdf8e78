package predictor

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Recorder keeps a delay report somewhere. Implementations handle their own
// failures; recording never fails a delay check.
type Recorder interface {
	Record(ctx context.Context, report domain.DelayReport)
}

// Sink is a named destination for delay reports.
type Sink interface {
	Save(ctx context.Context, report domain.DelayReport) error
}

// recordTimeout bounds each sink write.
const recordTimeout = 5 * time.Second

// FanoutRecorder writes each report to all sinks concurrently, logging and
// counting failures per sink.
type FanoutRecorder struct {
	sinks   map[string]Sink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFanoutRecorder creates a recorder over the named sinks.
func NewFanoutRecorder(logger *slog.Logger, metrics *observability.Metrics) *FanoutRecorder {
	return &FanoutRecorder{sinks: map[string]Sink{}, logger: logger, metrics: metrics}
}

// Add registers a sink under name.
func (r *FanoutRecorder) Add(name string, sink Sink) {
	r.sinks[name] = sink
}

// Len returns the number of sinks.
func (r *FanoutRecorder) Len() int { return len(r.sinks) }

// Record implements Recorder. It returns once every sink has finished.
func (r *FanoutRecorder) Record(ctx context.Context, report domain.DelayReport) {
	if len(r.sinks) == 0 {
		return
	}
	// Recording outlives a cancelled request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	var g errgroup.Group
	for name, sink := range r.sinks {
		name, sink := name, sink
		g.Go(func() error {
			if err := sink.Save(ctx, report); err != nil {
				r.logger.Warn("record delay report failed", "sink", name, "id", report.ID, "error", err)
				if r.metrics != nil {
					r.metrics.RecorderFailures.WithLabelValues(name).Inc()
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}
