package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	"main/internal/ledger"
	"main/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStrategy struct {
	ticks     int
	maxTicks  int
	delay     time.Duration
	tickErrs  []error
	windDowns int
	windErr   error
	postTicks []int
}

func (s *fakeStrategy) Name() string { return "fake" }

func (s *fakeStrategy) Tick(context.Context) error {
	s.ticks++
	if len(s.tickErrs) > 0 {
		err := s.tickErrs[0]
		s.tickErrs = s.tickErrs[1:]

		return err
	}

	return nil
}

func (s *fakeStrategy) PostTick(tickCount int) { s.postTicks = append(s.postTicks, tickCount) }

func (s *fakeStrategy) WindDown(context.Context) error {
	s.windDowns++
	return s.windErr
}

func (s *fakeStrategy) IsComplete() bool { return s.maxTicks > 0 && s.ticks >= s.maxTicks }

func (s *fakeStrategy) TickDelay() time.Duration { return s.delay }

type fakeAuditor struct {
	calls     int
	failures  int
	callTimes []time.Time
}

func (a *fakeAuditor) Full(context.Context) error {
	a.calls++
	a.callTimes = append(a.callTimes, time.Now())

	if a.calls <= a.failures {
		return errors.New("books disagree")
	}

	return nil
}

func TestRunCompletesWithoutAudits(t *testing.T) {
	s := &fakeStrategy{maxTicks: 3}
	a := &fakeAuditor{}

	h := New(s, a, ledger.NewMemory(), telemetry.Nop{}, NewController(), Config{})

	restart, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, restart)
	assert.Equal(t, 3, s.ticks)
	assert.Equal(t, 0, a.calls)
	assert.Equal(t, []int{1, 2, 3}, s.postTicks)
	assert.Equal(t, 1, s.windDowns)

	snap := h.Metrics()
	assert.Equal(t, uint64(3), snap.Ticks)
	assert.Zero(t, snap.TickFailures)
	assert.Equal(t, uint64(3), snap.TickLatency.Count)
}

func TestRunSchedulesAudits(t *testing.T) {
	s := &fakeStrategy{maxTicks: 5}
	a := &fakeAuditor{}

	h := New(s, a, ledger.NewMemory(), telemetry.Nop{}, NewController(), Config{
		AuditEnabled: true,
		AuditTick:    3,
	})

	_, err := h.Run(context.Background())
	require.NoError(t, err)

	// One initial audit plus the tick-3 and tick-6 audits; audit iterations
	// do not advance the strategy.
	assert.Equal(t, 5, s.ticks)
	assert.Equal(t, 3, a.calls)
}

func TestInitialAuditWindsDownOnFailure(t *testing.T) {
	s := &fakeStrategy{maxTicks: 1}
	a := &fakeAuditor{failures: 1}

	h := New(s, a, ledger.NewMemory(), telemetry.Nop{}, NewController(), Config{
		AuditEnabled: true,
		AuditTick:    100,
	})

	_, err := h.Run(context.Background())
	require.NoError(t, err)

	// Failed initial audit, wind down, clean second audit, then the final
	// shutdown wind down.
	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 2, s.windDowns)
}

func TestBackoffDoublesUntilRecovery(t *testing.T) {
	s := &fakeStrategy{maxTicks: 1, tickErrs: []error{errors.New("venue down")}}
	a := &fakeAuditor{failures: 2}

	h := New(s, a, ledger.NewMemory(), telemetry.Nop{}, NewController(), Config{
		BackoffStart: 20 * time.Millisecond,
	})

	begin := time.Now()
	_, err := h.Run(context.Background())
	require.NoError(t, err)

	// Three audit attempts: after 20ms, 40ms and 80ms delays.
	require.Equal(t, 3, a.calls)
	assert.GreaterOrEqual(t, time.Since(begin), 140*time.Millisecond)

	gap1 := a.callTimes[1].Sub(a.callTimes[0])
	gap2 := a.callTimes[2].Sub(a.callTimes[1])
	assert.GreaterOrEqual(t, gap1, 40*time.Millisecond)
	assert.GreaterOrEqual(t, gap2, 80*time.Millisecond)

	snap := h.Metrics()
	assert.Equal(t, uint64(1), snap.TickFailures)
	assert.Equal(t, uint64(3), snap.Retries)
}

func TestShutdownInterruptsSleep(t *testing.T) {
	s := &fakeStrategy{delay: 30 * time.Second}
	a := &fakeAuditor{}
	ctl := NewController()

	h := New(s, a, ledger.NewMemory(), telemetry.Nop{}, ctl, Config{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.Run(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	ctl.RequestStop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not interrupt the inter-tick sleep")
	}

	assert.Equal(t, 1, s.windDowns)
}

func TestRestartIntentSurvivesShutdown(t *testing.T) {
	s := &fakeStrategy{maxTicks: 1}
	a := &fakeAuditor{}
	ctl := NewController()
	ctl.RequestRestart()

	h := New(s, a, ledger.NewMemory(), telemetry.Nop{}, ctl, Config{})

	restart, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, restart)
	assert.Equal(t, 0, s.ticks)
	assert.Equal(t, 1, s.windDowns)
}

func TestWindDownFailureForcesShutdown(t *testing.T) {
	s := &fakeStrategy{maxTicks: 1, windErr: errors.New("cancel rejected")}
	a := &fakeAuditor{}

	h := New(s, a, ledger.NewMemory(), telemetry.Nop{}, NewController(), Config{})

	restart, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, restart)
	assert.Equal(t, 1, s.windDowns)
}
