package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventCycleCompleted EventType = "cycle_completed"
	EventCycleFailed    EventType = "cycle_failed"
	EventPacketSent     EventType = "packet_sent"
)

type MetricEvent struct {
	Type      EventType
	Timestamp time.Time
	Lines     int
	Bytes     int
	Duration  time.Duration
	Err       error
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

// Publish sends event without blocking; it is dropped when the buffer is full.
// A nil Collector ignores all events.
func (c *Collector) Publish(event MetricEvent) {
	if c == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Debug("Metrics collector started")
	defer c.logger.Debug("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventCycleCompleted:
		c.metrics.RecordCycle(event.Timestamp, event.Lines, event.Duration)

	case EventCycleFailed:
		c.metrics.RecordFailure(event.Timestamp, event.Err)

	case EventPacketSent:
		c.metrics.RecordPacket(event.Bytes)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
