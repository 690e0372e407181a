package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrInvalidInterval is returned by Run when looping with a non-positive interval.
var ErrInvalidInterval = errors.New("poller: interval must be positive")

// Cycle is one unit of work, typically fetch-and-report.
type Cycle func(ctx context.Context) error

// Options control the loop.
type Options struct {
	// Interval is the pause between the end of one cycle and the start of the next.
	Interval time.Duration
	// Once runs a single cycle and returns its error.
	Once bool
	// KeepGoing logs cycle errors and carries on instead of returning them.
	KeepGoing bool
}

// Run calls cycle immediately and then after every Interval. Cancelling ctx
// stops the loop before the next cycle starts and Run returns nil; a cycle
// already in progress is left to finish.
func Run(ctx context.Context, cycle Cycle, opts Options, logger *slog.Logger) error {
	if opts.Once {
		return cycle(ctx)
	}

	if opts.Interval <= 0 {
		return ErrInvalidInterval
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Polling stopped")
			return nil

		case <-timer.C:
			if ctx.Err() != nil {
				logger.Info("Polling stopped")
				return nil
			}

			if err := cycle(ctx); err != nil {
				if !opts.KeepGoing {
					return err
				}
				logger.Error("Report cycle failed",
					slog.Any("err", err),
					slog.Duration("retry_in", opts.Interval))
			}

			timer.Reset(opts.Interval)
		}
	}
}
