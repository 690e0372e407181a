package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mutex        sync.RWMutex
	cycles       int64
	failures     int64
	lines        int64
	packets      int64
	bytes        int64
	lastDuration time.Duration
	lastSuccess  time.Time
	lastFailure  time.Time
	lastError    string
	startTime    time.Time
}

type Snapshot struct {
	Cycles       int64         `json:"cycles"`
	Failures     int64         `json:"failures"`
	Lines        int64         `json:"lines"`
	Packets      int64         `json:"packets"`
	Bytes        int64         `json:"bytes"`
	LastDuration time.Duration `json:"last_duration"`
	LastSuccess  time.Time     `json:"last_success"`
	LastFailure  time.Time     `json:"last_failure"`
	LastError    string        `json:"last_error,omitempty"`
	Uptime       time.Duration `json:"uptime"`
}

func (m *Metrics) RecordCycle(at time.Time, lines int, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.cycles++
	m.lines += int64(lines)
	m.lastDuration = duration
	m.lastSuccess = at
}

func (m *Metrics) RecordFailure(at time.Time, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.failures++
	m.lastFailure = at
	if err != nil {
		m.lastError = err.Error()
	}
}

func (m *Metrics) RecordPacket(bytes int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.packets++
	m.bytes += int64(bytes)
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return Snapshot{
		Cycles:       m.cycles,
		Failures:     m.failures,
		Lines:        m.lines,
		Packets:      m.packets,
		Bytes:        m.bytes,
		LastDuration: m.lastDuration,
		LastSuccess:  m.lastSuccess,
		LastFailure:  m.lastFailure,
		LastError:    m.lastError,
		Uptime:       time.Since(m.startTime),
	}
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}
