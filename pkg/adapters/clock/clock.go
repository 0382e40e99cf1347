package clock

import (
	"time"

	"github.com/aretw0/prologue/pkg/ports"
)

// Real implements ports.Scheduler on top of time.AfterFunc.
type Real struct{}

// After schedules fn on its own goroutine after d.
func (Real) After(d time.Duration, fn func()) ports.Timer {
	return time.AfterFunc(d, fn)
}

var _ ports.Scheduler = Real{}
