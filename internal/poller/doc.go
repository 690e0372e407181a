// Package poller repeats a report cycle on a fixed interval until its
// context is cancelled, or runs it once for cron-style invocation.
package poller
