package haproxy

import (
	"strconv"
	"strings"

	"github.com/j3k0/haproxy-statsd/internal/statsd"
)

// StatKeys are the report columns emitted for every row, in emission order.
var StatKeys = []string{
	"scur", "qcur", "qtime", "ctime", "rtime", "ttime",
	"ereq", "eresp", "econ",
	"bin", "bout",
	"hrsp_1xx", "hrsp_2xx", "hrsp_3xx", "hrsp_4xx", "hrsp_5xx",
}

// LinesPerRow is the number of lines MapRow returns: every stat plus status.
var LinesPerRow = len(StatKeys) + 1

// Status codes reported on the <path>.status gauge.
const (
	StatusDown    = 0
	StatusNoCheck = 1
	StatusUnknown = 2
	StatusUp      = 3
)

// StatusCode encodes a status column value. Matching is case sensitive.
func StatusCode(status string) int {
	switch status {
	case "UP", "OPEN":
		return StatusUp
	case "DOWN", "CLOSED":
		return StatusDown
	case "no check":
		return StatusNoCheck
	default:
		return StatusUnknown
	}
}

// Mapper turns report rows into gauge lines under Namespace.
type Mapper struct {
	Namespace string
}

// NewMapper returns a Mapper for the resolved namespace.
func NewMapper(namespace string) *Mapper {
	return &Mapper{Namespace: namespace}
}

// Path returns the metric path prefix for row. Underscores in the proxy
// name become path separators so proxies can be grouped hierarchically.
func (m *Mapper) Path(row Row) string {
	proxy := strings.ReplaceAll(row.ProxyName(), "_", ".")
	service := strings.ToLower(row.ServiceName())

	return m.Namespace + "." + proxy + "." + service
}

// MapRow returns the LinesPerRow gauge lines for row. Missing or empty stat
// columns are reported as 0. No row is filtered out.
func (m *Mapper) MapRow(row Row) []string {
	path := m.Path(row)
	lines := make([]string, 0, LinesPerRow)

	for _, key := range StatKeys {
		value := row.Get(key)
		if value == "" {
			value = "0"
		}
		lines = append(lines, statsd.Gauge(path+"."+key, value))
	}

	lines = append(lines, statsd.Gauge(path+".status", strconv.Itoa(StatusCode(row.Status()))))

	return lines
}
