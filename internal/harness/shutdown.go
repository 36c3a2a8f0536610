package harness

import "sync/atomic"

// Controller carries the level-triggered stop request into the loop. Signal
// handlers set it from another goroutine; the loop and its sleeps poll it.
type Controller struct {
	stop    atomic.Bool
	restart atomic.Bool
}

func NewController() *Controller { return &Controller{} }

// RequestStop asks for a graceful shutdown.
func (c *Controller) RequestStop() { c.stop.Store(true) }

// RequestRestart asks for a graceful shutdown followed by a fresh relaunch.
func (c *Controller) RequestRestart() {
	c.restart.Store(true)
	c.stop.Store(true)
}

func (c *Controller) ShouldStop() bool { return c.stop.Load() }

func (c *Controller) ShouldRestart() bool { return c.restart.Load() }
