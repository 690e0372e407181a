// Package metrics keeps track of the reporter's own activity.
//
// It uses a channel-based event pipeline fed by the reporting loop:
//   - Completed cycles and the number of lines they emitted
//   - Failed cycles and the last error
//   - Datagrams sent to StatsD and their total size
//
// The collector runs in a dedicated goroutine. Events are published with
// non-blocking sends so a slow consumer never delays a report cycle.
//
// Example usage:
//
//	collector := metrics.NewCollector(100, logger)
//	collector.Start(ctx)
//
//	collector.Publish(metrics.MetricEvent{
//		Type:     metrics.EventCycleCompleted,
//		Lines:    170,
//		Duration: 250 * time.Millisecond,
//	})
//
//	snapshot := collector.Snapshot()
//
// Handler serves the snapshot as JSON for the status endpoint.
package metrics
