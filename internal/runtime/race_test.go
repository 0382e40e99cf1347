package runtime_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/prologue/internal/runtime"
	"github.com/aretw0/prologue/pkg/adapters/memory"
	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firingBinding delivers the transition notification as soon as a listener subscribes.
func firingBinding(ids ...string) *memory.Binding {
	var b *memory.Binding
	b = memory.NewBinding(ids, memory.WithCallObserver(func(c memory.Call) {
		if c.Op == memory.OpSubscribe {
			b.Fire(c.ElementID)
		}
	}))
	return b
}

// leakyBinding keeps every transition listener reachable after cancellation,
// so a test can deliver a notification the race has already moved past.
type leakyBinding struct {
	*memory.Binding
	mu        sync.Mutex
	listeners []func()
}

func (l *leakyBinding) OnTransitionFinished(el ports.Element, fn func()) (ports.Subscription, error) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
	return l.Binding.OnTransitionFinished(el, fn)
}

func (l *leakyBinding) fireLeaked() {
	l.mu.Lock()
	fns := append([]func(){}, l.listeners...)
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func TestAwaitTransition_NotificationWins(t *testing.T) {
	b := firingBinding("block")
	block, err := b.Resolve("block")
	require.NoError(t, err)

	outcome, err := runtime.AwaitTransition(context.Background(), b, block, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionFired, outcome)
	assert.Equal(t, 0, b.Listeners("block"), "listener must be cancelled before returning")
	assert.Len(t, b.Calls(memory.OpUnsubscribe), 1)
}

func TestAwaitTransition_FallbackWins(t *testing.T) {
	b := memory.NewBinding([]string{"block"})
	block, err := b.Resolve("block")
	require.NoError(t, err)

	outcome, err := runtime.AwaitTransition(context.Background(), b, block, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, domain.TimedOut, outcome)
	assert.Equal(t, 0, b.Listeners("block"))
	assert.Len(t, b.Calls(memory.OpUnsubscribe), 1)

	// a notification after the race moved on reaches nobody
	assert.Equal(t, 0, b.Fire("block"))
}

func TestAwaitTransition_LateNotificationIsDropped(t *testing.T) {
	b := &leakyBinding{Binding: memory.NewBinding([]string{"block"})}
	block, err := b.Resolve("block")
	require.NoError(t, err)

	outcome, err := runtime.AwaitTransition(context.Background(), b, block, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.TimedOut, outcome)

	assert.NotPanics(t, b.fireLeaked)
	assert.NotPanics(t, b.fireLeaked)
}

func TestAwaitTransition_Cancelled(t *testing.T) {
	b := memory.NewBinding([]string{"block"})
	block, err := b.Resolve("block")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runtime.AwaitTransition(ctx, b, block, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, b.Listeners("block"))
}

func TestAwaitTransition_SubscribeFailure(t *testing.T) {
	b := memory.NewBinding([]string{"block"})
	block, err := b.Resolve("block")
	require.NoError(t, err)
	b.FailOn(memory.OpSubscribe, "block", errors.New("no event target"))

	_, err = runtime.AwaitTransition(context.Background(), b, block, 0)
	assert.ErrorIs(t, err, domain.ErrBindingFailure)
}

func TestRace_ResolvesOnce(t *testing.T) {
	r := runtime.NewRace()
	assert.False(t, r.Resolved())
	assert.Equal(t, domain.TransitionOutcome(0), r.Outcome())

	assert.True(t, r.Resolve(domain.TimedOut))
	assert.False(t, r.Resolve(domain.TransitionFired))
	assert.True(t, r.Resolved())
	assert.Equal(t, domain.TimedOut, r.Outcome())

	select {
	case <-r.Done():
	default:
		t.Fatal("Done must be closed after resolution")
	}
}

func TestRace_ConcurrentSources(t *testing.T) {
	for i := 0; i < 100; i++ {
		r := runtime.NewRace()
		var wins atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})

		for _, o := range []domain.TransitionOutcome{domain.TransitionFired, domain.TimedOut, domain.TransitionFired, domain.TimedOut} {
			wg.Add(1)
			go func(o domain.TransitionOutcome) {
				defer wg.Done()
				<-start
				if r.Resolve(o) {
					wins.Add(1)
				}
			}(o)
		}
		close(start)
		wg.Wait()

		require.Equal(t, int32(1), wins.Load())
		assert.Contains(t, []domain.TransitionOutcome{domain.TransitionFired, domain.TimedOut}, r.Outcome())
	}
}
