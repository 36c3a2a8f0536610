// Package obs collects lightweight runtime counters and latency stats for
// the trading loop. Everything is atomic so a watchdog goroutine can snapshot
// while the loop runs.
package obs

import (
	"sync/atomic"
	"time"
)

// Metrics counts loop activity and tracks per-phase latency.
type Metrics struct {
	ticks         uint64
	tickFailures  uint64
	audits        uint64
	auditFailures uint64
	retries       uint64
	flushFailures uint64

	tickLatency  LatencyStats
	auditLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Ticks         uint64
	TickFailures  uint64
	Audits        uint64
	AuditFailures uint64
	Retries       uint64
	FlushFailures uint64
	TickLatency   LatencySnapshot
	AuditLatency  LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveTick records one strategy tick and its duration.
func (m *Metrics) ObserveTick(d time.Duration, failed bool) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ticks, 1)
	if failed {
		atomic.AddUint64(&m.tickFailures, 1)
	}
	m.tickLatency.Observe(d)
}

// ObserveAudit records one full audit pass and its duration.
func (m *Metrics) ObserveAudit(d time.Duration, failed bool) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.audits, 1)
	if failed {
		atomic.AddUint64(&m.auditFailures, 1)
	}
	m.auditLatency.Observe(d)
}

// IncRetry records one backoff retry attempt.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.retries, 1)
}

// IncFlushFailure records a failed ledger flush.
func (m *Metrics) IncFlushFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.flushFailures, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Ticks:         atomic.LoadUint64(&m.ticks),
		TickFailures:  atomic.LoadUint64(&m.tickFailures),
		Audits:        atomic.LoadUint64(&m.audits),
		AuditFailures: atomic.LoadUint64(&m.auditFailures),
		Retries:       atomic.LoadUint64(&m.retries),
		FlushFailures: atomic.LoadUint64(&m.flushFailures),
		TickLatency:   m.tickLatency.Snapshot(),
		AuditLatency:  m.auditLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
