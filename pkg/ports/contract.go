package ports

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/prologue/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunUIBindingContract runs a suite of tests to verify that a UIBinding implementation
// adheres to the defined interface contract. The binding must know the element id "known".
// fire delivers a transition-finished notification on an element, synchronously or not;
// bindings that cannot do so on demand pass nil and the delivery checks are skipped.
func RunUIBindingContract(t *testing.T, binding UIBinding, fire func(el Element)) {
	t.Helper()

	t.Run("Resolve", func(t *testing.T) {
		el, err := binding.Resolve("known")
		require.NoError(t, err)
		assert.Equal(t, "known", el.ID())

		_, err = binding.Resolve("contract-missing-element")
		assert.ErrorIs(t, err, domain.ErrElementNotFound)
	})

	t.Run("Mutations", func(t *testing.T) {
		el, err := binding.Resolve("known")
		require.NoError(t, err)

		require.NoError(t, binding.SetDisplayState(el, domain.StateShow))
		require.NoError(t, binding.SetDisplayState(el, domain.StateShow), "applying a state twice must be a no-op")
		require.NoError(t, binding.SetText(el, "héllo — “world”"))
		require.NoError(t, binding.SetCaretVisible(el, true))
		require.NoError(t, binding.SetCaretVisible(el, false))
	})

	t.Run("Subscription Cancel Is Idempotent", func(t *testing.T) {
		el, err := binding.Resolve("known")
		require.NoError(t, err)

		sub, err := binding.OnTransitionFinished(el, func() {})
		require.NoError(t, err)
		require.NotNil(t, sub)
		sub.Cancel()
		sub.Cancel()
	})

	t.Run("After Fires Once", func(t *testing.T) {
		var calls atomic.Int32
		done := make(chan struct{})
		binding.After(time.Millisecond, func() {
			calls.Add(1)
			close(done)
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timer did not fire")
		}
		time.Sleep(5 * time.Millisecond)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Stopped Timer Does Not Fire", func(t *testing.T) {
		var fired atomic.Bool
		timer := binding.After(time.Hour, func() { fired.Store(true) })
		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
		assert.False(t, fired.Load())
	})

	t.Run("Cancelled Listener Is Not Invoked", func(t *testing.T) {
		if fire == nil {
			t.Skip("binding cannot deliver transitions on demand")
		}
		el, err := binding.Resolve("known")
		require.NoError(t, err)

		// Each listener cancels the other: only the first one delivered may run.
		var calls atomic.Int32
		var first, second Subscription
		first, err = binding.OnTransitionFinished(el, func() {
			calls.Add(1)
			second.Cancel()
		})
		require.NoError(t, err)
		second, err = binding.OnTransitionFinished(el, func() {
			calls.Add(1)
			first.Cancel()
		})
		require.NoError(t, err)

		fire(el)
		require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(1), calls.Load())

		first.Cancel()
		second.Cancel()
	})
}
