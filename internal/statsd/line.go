package statsd

// Gauge formats a StatsD gauge line. The field order and separators are
// what StatsD compatible daemons parse.
func Gauge(path, value string) string {
	return path + ":" + value + "|g"
}
