// Package harness owns the runtime's control loop: it drives a strategy tick
// by tick, schedules audits, recovers from failures with exponential backoff
// and performs warm shutdown. Strictly single threaded; ticks, audits and
// retries never overlap.
package harness

import (
	"context"
	"time"

	"main/internal/ledger"
	"main/internal/obs"
	"main/internal/strategy"
	"main/internal/telemetry"

	"github.com/yanun0323/logs"
)

const (
	defaultBackoffStart = 10 * time.Second
	backoffMultiplier   = 2
	sleepPoll           = 100 * time.Millisecond
)

// Config tunes the loop. Zero values mean auditing off and default backoff.
type Config struct {
	// AuditEnabled turns the audit schedule and the initial audit on.
	AuditEnabled bool
	// AuditTick runs a full audit every AuditTick iterations instead of a
	// strategy tick.
	AuditTick int
	// BackoffStart is the first retry delay after a failed tick or audit.
	BackoffStart time.Duration
	// HeartbeatPath is the watchdog file; empty disables the heartbeat.
	HeartbeatPath string
}

// Auditor runs one full reconciliation pass over the account.
type Auditor interface {
	Full(ctx context.Context) error
}

// Harness runs one strategy against one audited account.
type Harness struct {
	strategy  strategy.Strategy
	auditor   Auditor
	store     ledger.Store
	reporter  telemetry.Reporter
	ctl       *Controller
	heartbeat *Heartbeat
	metrics   *obs.Metrics
	cfg       Config
}

func New(s strategy.Strategy, a Auditor, store ledger.Store, reporter telemetry.Reporter, ctl *Controller, cfg Config) *Harness {
	if reporter == nil {
		reporter = telemetry.Log{}
	}

	if cfg.BackoffStart <= 0 {
		cfg.BackoffStart = defaultBackoffStart
	}

	if cfg.AuditTick <= 0 {
		cfg.AuditTick = 100
	}

	return &Harness{
		strategy:  s,
		auditor:   a,
		store:     store,
		reporter:  reporter,
		ctl:       ctl,
		heartbeat: NewHeartbeat(cfg.HeartbeatPath),
		metrics:   obs.NewMetrics(),
		cfg:       cfg,
	}
}

// Metrics returns a snapshot of the loop's runtime counters.
func (h *Harness) Metrics() obs.Snapshot {
	return h.metrics.Snapshot()
}

// Run drives the loop until the strategy completes or a stop is requested.
// The returned restart flag tells the caller to relaunch the process after
// this clean shutdown.
func (h *Harness) Run(ctx context.Context) (restart bool, err error) {
	logs.Infof("starting %s, audit enabled: %t", h.strategy.Name(), h.cfg.AuditEnabled)

	if h.cfg.AuditEnabled {
		h.initialAudit(ctx)
	}

	for tick := 1; !h.ctl.ShouldStop(); tick++ {
		var tickErr error

		if h.cfg.AuditEnabled && tick%h.cfg.AuditTick == 0 {
			started := time.Now()
			tickErr = h.auditor.Full(ctx)
			h.metrics.ObserveAudit(time.Since(started), tickErr != nil)
		} else {
			started := time.Now()
			tickErr = h.strategy.Tick(ctx)
			h.metrics.ObserveTick(time.Since(started), tickErr != nil)
			if tickErr == nil {
				h.strategy.PostTick(tick)
			}
		}

		if tickErr != nil {
			h.reporter.CaptureException(tickErr)
			logs.Errorf("tick %d failed, err: %v", tick, tickErr)
			h.retryUntilClean(ctx)
		}

		h.heartbeat.Beat()

		// Flush every iteration so other processes' writes (manual fixes,
		// sibling bots) become visible before the next audit.
		if flushErr := h.store.Flush(); flushErr != nil {
			h.metrics.IncFlushFailure()
			h.reporter.CaptureException(flushErr)
			logs.Errorf("ledger flush failed, err: %v", flushErr)
		}

		if h.strategy.IsComplete() {
			logs.Infof("%s complete after %d ticks", h.strategy.Name(), tick)
			break
		}

		h.gentleSleep(h.strategy.TickDelay())
	}

	h.windDown(ctx)

	if flushErr := h.store.Flush(); flushErr != nil {
		logs.Errorf("final ledger flush failed, err: %v", flushErr)
	}

	return h.ctl.ShouldRestart(), nil
}

// initialAudit proves the books are clean before the first tick. A failure
// usually means the last run died mid-flight, so the strategy winds down
// whatever it left behind and the audit runs again.
func (h *Harness) initialAudit(ctx context.Context) {
	err := h.auditor.Full(ctx)
	if err == nil {
		return
	}

	logs.Warnf("initial audit failed, winding down before retry, err: %v", err)
	h.reporter.CaptureException(err)

	if wdErr := h.strategy.WindDown(ctx); wdErr != nil {
		h.reporter.CaptureException(wdErr)
		logs.Errorf("wind down failed, err: %v", wdErr)
	}

	if err := h.auditor.Full(ctx); err != nil {
		h.reporter.CaptureException(err)
		logs.Errorf("initial audit failed again, err: %v", err)
		h.retryUntilClean(ctx)
	}
}

// retryUntilClean re-runs the full audit with exponential backoff until it
// passes or a stop is requested. The expectation is that the cause (a lagged
// venue API, a deposit in flight, an operator fixing a balance) resolves
// itself; flushing between attempts lets external fixes become visible.
func (h *Harness) retryUntilClean(ctx context.Context) {
	delay := h.cfg.BackoffStart

	for !h.ctl.ShouldStop() {
		h.metrics.IncRetry()
		logs.Warnf("audit failed, backing off %s", delay)
		h.gentleSleep(delay)

		if h.ctl.ShouldStop() {
			return
		}

		if err := h.store.Flush(); err != nil {
			logs.Errorf("ledger flush failed during retry, err: %v", err)
		}

		err := h.auditor.Full(ctx)
		if err == nil {
			logs.Info("audit recovered")
			return
		}

		h.reporter.CaptureException(err)
		logs.Errorf("audit retry failed, err: %v", err)

		delay *= backoffMultiplier
	}
}

func (h *Harness) windDown(ctx context.Context) {
	logs.Infof("winding down %s", h.strategy.Name())

	if err := h.strategy.WindDown(ctx); err != nil {
		// Forced shutdown proceeds anyway; the next startup audit catches
		// whatever was left hanging.
		h.reporter.CaptureException(err)
		logs.Errorf("wind down failed, forcing shutdown, err: %v", err)
	}
}

// gentleSleep pauses for d while polling the stop flag at sub-second
// granularity, so shutdown never waits out a long backoff.
func (h *Harness) gentleSleep(d time.Duration) {
	deadline := time.Now().Add(d)

	for !h.ctl.ShouldStop() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}

		if remaining > sleepPoll {
			remaining = sleepPoll
		}

		time.Sleep(remaining)
	}
}
