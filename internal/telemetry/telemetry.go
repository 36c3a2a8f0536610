// Package telemetry is the error-reporting port. Reporting is fire and
// forget; nothing here may ever abort the caller.
package telemetry

import "github.com/yanun0323/logs"

type Reporter interface {
	CaptureException(err error)
}

// Log reports through the process log. The default when no external
// collector is configured.
type Log struct{}

var _ Reporter = Log{}

func (Log) CaptureException(err error) {
	if err == nil {
		return
	}

	logs.Errorf("captured exception: %+v", err)
}

// Nop drops everything.
type Nop struct{}

var _ Reporter = Nop{}

func (Nop) CaptureException(error) {}
