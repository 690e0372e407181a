package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/j3k0/haproxy-statsd/internal/haproxy"
	"github.com/j3k0/haproxy-statsd/internal/metrics"
)

// Emitter accepts metric lines and sends them in batches.
type Emitter interface {
	Add(ctx context.Context, line string) error
	Flush(ctx context.Context) error
	Reset()
}

// Fetcher returns the current stats report.
type Fetcher interface {
	Fetch(ctx context.Context) ([]haproxy.Row, error)
}

// ReportRows maps every row and adds the resulting lines to emitter, then
// flushes whatever is still buffered. It returns the number of lines
// emitted. The first emitter error aborts the cycle and drops whatever the
// cycle had buffered, so nothing from it leaks into the next one.
func ReportRows(ctx context.Context, rows []haproxy.Row, mapper *haproxy.Mapper, emitter Emitter) (int, error) {
	count := 0

	for _, row := range rows {
		for _, line := range mapper.MapRow(row) {
			if err := emitter.Add(ctx, line); err != nil {
				emitter.Reset()
				return count, fmt.Errorf("report %s/%s: %w", row.ProxyName(), row.ServiceName(), err)
			}
			count++
		}
	}

	if err := emitter.Flush(ctx); err != nil {
		return count, fmt.Errorf("final flush: %w", err)
	}

	return count, nil
}

// Reporter runs report cycles against one stats endpoint and one emitter.
// It is not safe for concurrent use because the emitter buffer is shared
// across its cycles.
type Reporter struct {
	fetcher   Fetcher
	mapper    *haproxy.Mapper
	emitter   Emitter
	collector *metrics.Collector
	logger    *slog.Logger
}

// New returns a Reporter. collector may be nil.
func New(fetcher Fetcher, mapper *haproxy.Mapper, emitter Emitter, collector *metrics.Collector, logger *slog.Logger) *Reporter {
	return &Reporter{
		fetcher:   fetcher,
		mapper:    mapper,
		emitter:   emitter,
		collector: collector,
		logger:    logger,
	}
}

// RunCycle fetches one report and emits it. It returns the number of lines
// emitted.
func (r *Reporter) RunCycle(ctx context.Context) (int, error) {
	start := time.Now()

	rows, err := r.fetcher.Fetch(ctx)
	if err != nil {
		r.fail(err)
		return 0, err
	}

	count, err := ReportRows(ctx, rows, r.mapper, r.emitter)
	if err != nil {
		r.fail(err)
		return count, err
	}

	duration := time.Since(start)
	r.logger.Info("Reported stats",
		slog.Int("rows", len(rows)),
		slog.Int("stats", count),
		slog.Duration("duration", duration))

	r.collector.Publish(metrics.MetricEvent{
		Type:     metrics.EventCycleCompleted,
		Lines:    count,
		Duration: duration,
	})

	return count, nil
}

// Cycle adapts RunCycle to the polling loop.
func (r *Reporter) Cycle(ctx context.Context) error {
	_, err := r.RunCycle(ctx)
	return err
}

func (r *Reporter) fail(err error) {
	r.collector.Publish(metrics.MetricEvent{
		Type: metrics.EventCycleFailed,
		Err:  err,
	})
}
