package clock_test

import (
	"testing"
	"time"

	"github.com/aretw0/prologue/pkg/adapters/clock"
	"github.com/stretchr/testify/assert"
)

func TestReal_After(t *testing.T) {
	done := make(chan time.Time, 1)
	start := time.Now()
	clock.Real{}.After(5*time.Millisecond, func() { done <- time.Now() })

	select {
	case at := <-done:
		assert.GreaterOrEqual(t, at.Sub(start), 5*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
}

func TestReal_Stop(t *testing.T) {
	timer := clock.Real{}.After(time.Hour, func() { t.Error("stopped timer fired") })
	assert.True(t, timer.Stop())
}
