// Package reporter drives one report cycle: fetch the HAProxy stats,
// map every row to gauge lines and push them through a batching emitter,
// finishing with a flush so no line is left behind between cycles.
package reporter
