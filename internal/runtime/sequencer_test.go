package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/prologue/internal/runtime"
	"github.com/aretw0/prologue/pkg/adapters/memory"
	"github.com/aretw0/prologue/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScript(speed time.Duration, lines ...string) domain.Script {
	s := domain.Script{
		Timing:   domain.Timing{Speed: speed},
		BlockID:  "block",
		FinaleID: "finale",
	}
	for i, text := range lines {
		n := i + 1
		s.Lines = append(s.Lines, domain.Line{
			ID: fmt.Sprintf("l%d", n),
			Elements: domain.ElementIDs{
				Container: fmt.Sprintf("l%d", n),
				Target:    fmt.Sprintf("t%d", n),
				Caret:     fmt.Sprintf("c%d", n),
			},
			Text: text,
		})
	}
	return s
}

func TestSequencer_EndToEnd(t *testing.T) {
	script := testScript(10*time.Millisecond, "Hi", "", "Yo")
	b := memory.NewBindingForScript(script)

	start := time.Now()
	report, err := runtime.NewSequencer().Run(context.Background(), script, b)
	require.NoError(t, err)

	want := []memory.Call{
		{Op: memory.OpSetDisplayState, ElementID: "l1", Value: domain.StateShow},
		{Op: memory.OpSetText, ElementID: "t1", Value: ""},
		{Op: memory.OpSetText, ElementID: "t1", Value: "H"},
		{Op: memory.OpSetText, ElementID: "t1", Value: "Hi"},
		{Op: memory.OpSetDisplayState, ElementID: "l2", Value: domain.StateShow},
		{Op: memory.OpSetText, ElementID: "t2", Value: ""},
		{Op: memory.OpSetDisplayState, ElementID: "l3", Value: domain.StateShow},
		{Op: memory.OpSetText, ElementID: "t3", Value: ""},
		{Op: memory.OpSetText, ElementID: "t3", Value: "Y"},
		{Op: memory.OpSetText, ElementID: "t3", Value: "Yo"},
		{Op: memory.OpSetDisplayState, ElementID: "block", Value: domain.StateFadeOut},
		{Op: memory.OpSetDisplayState, ElementID: "finale", Value: domain.StateShow},
	}
	assert.Equal(t, want, b.Calls(memory.OpSetDisplayState, memory.OpSetText))

	assert.Equal(t, domain.TimedOut, report.Outcome)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.Equal(t, 0, b.Listeners("block"))
	for _, id := range []string{"c1", "c2", "c3"} {
		assert.False(t, b.CaretVisible(id), id)
	}
}

func TestSequencer_MissingElementAbortsBeforeMutation(t *testing.T) {
	script := testScript(0, "Hi", "Yo")
	ids := []string{}
	for _, id := range script.ElementIDs() {
		if id != "c2" {
			ids = append(ids, id)
		}
	}
	b := memory.NewBinding(ids)

	report, err := runtime.NewSequencer().Run(context.Background(), script, b)
	assert.Nil(t, report)
	require.ErrorIs(t, err, domain.ErrElementNotFound)

	var nf *domain.ElementNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "c2", nf.ID)
	assert.Empty(t, b.Calls(), "no mutation may happen before every element resolves")
}

func TestSequencer_BindingFailureAborts(t *testing.T) {
	script := testScript(0, "Hi", "Yo")
	b := memory.NewBindingForScript(script)
	b.FailOn(memory.OpSetDisplayState, "l2", errors.New("class list unavailable"))

	_, err := runtime.NewSequencer().Run(context.Background(), script, b)
	require.ErrorIs(t, err, domain.ErrBindingFailure)

	assert.Equal(t, "Hi", b.Text("t1"), "applied state is not rolled back")
	assert.Empty(t, b.Calls(memory.OpSetText)[3:], "nothing runs after the failure")
	assert.False(t, b.HasState("finale", domain.StateShow))
}

func TestSequencer_TransitionFired(t *testing.T) {
	script := testScript(0, "a")
	script.Timing.FadeFallback = time.Hour
	b := firingBinding(script.ElementIDs()...)

	var resolved []domain.TransitionOutcome
	seq := runtime.NewSequencer(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnTransitionResolved: func(_ context.Context, e *domain.TransitionEvent) {
			resolved = append(resolved, e.Outcome)
		},
	}))

	report, err := seq.Run(context.Background(), script, b)
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionFired, report.Outcome)
	assert.Equal(t, []domain.TransitionOutcome{domain.TransitionFired}, resolved)
	assert.True(t, b.HasState("finale", domain.StateShow))
}

func TestSequencer_LateNotificationHasNoEffect(t *testing.T) {
	script := testScript(0, "a")
	b := &leakyBinding{Binding: memory.NewBindingForScript(script)}

	resolutions := 0
	seq := runtime.NewSequencer(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnTransitionResolved: func(context.Context, *domain.TransitionEvent) { resolutions++ },
	}))

	report, err := seq.Run(context.Background(), script, b)
	require.NoError(t, err)
	assert.Equal(t, domain.TimedOut, report.Outcome)

	before := len(b.Calls())
	b.fireLeaked()
	assert.Equal(t, 1, resolutions)
	assert.Len(t, b.Calls(), before)
}

func TestSequencer_HooksFollowStepOrder(t *testing.T) {
	script := testScript(0, "ab", "c")
	b := memory.NewBindingForScript(script)

	var kinds []domain.StepKind
	var ticks []string
	ends := 0
	seq := runtime.NewSequencer(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnStepStart: func(_ context.Context, e *domain.StepEvent) { kinds = append(kinds, e.Kind) },
		OnStepEnd: func(_ context.Context, e *domain.StepEvent) {
			assert.NoError(t, e.Err)
			ends++
		},
		OnTick: func(_ context.Context, e *domain.TickEvent) { ticks = append(ticks, e.Text) },
	}))

	report, err := seq.Run(context.Background(), script, b)
	require.NoError(t, err)

	want := []domain.StepKind{
		domain.StepShow, domain.StepReveal, domain.StepDelay,
		domain.StepShow, domain.StepReveal, domain.StepDelay,
		domain.StepFade, domain.StepDelay, domain.StepFinale,
	}
	assert.Equal(t, want, kinds)
	assert.Equal(t, len(want), ends)
	assert.Equal(t, len(want), report.Steps)
	assert.Len(t, report.RunID, 36)
	assert.Equal(t, []string{"", "a", "ab", "", "c"}, ticks)
}

func TestSequencer_FinaleText(t *testing.T) {
	script := testScript(0, "a")
	script.Finale = "# The End"
	b := memory.NewBindingForScript(script)

	_, err := runtime.NewSequencer().Run(context.Background(), script, b)
	require.NoError(t, err)

	calls := b.Calls(memory.OpSetDisplayState, memory.OpSetText)
	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, memory.Call{Op: memory.OpSetText, ElementID: "finale", Value: "# The End"}, calls[len(calls)-2])
	assert.Equal(t, memory.Call{Op: memory.OpSetDisplayState, ElementID: "finale", Value: domain.StateShow}, calls[len(calls)-1])
}

func TestSequencer_GapsUseTheRightDelay(t *testing.T) {
	script := testScript(0, "a", "b")
	script.Timing.GapBetweenLines = 30 * time.Millisecond
	script.Timing.GapBeforeFade = 0

	var delays []time.Duration
	seq := runtime.NewSequencer(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnStepEnd: func(_ context.Context, e *domain.StepEvent) {
			if e.Kind == domain.StepDelay {
				delays = append(delays, e.Duration)
			}
		},
	}))

	_, err := seq.Run(context.Background(), script, memory.NewBindingForScript(script))
	require.NoError(t, err)
	require.Len(t, delays, 3)
	assert.GreaterOrEqual(t, delays[0], 30*time.Millisecond, "gap between lines")
	assert.Less(t, delays[1], 30*time.Millisecond, "gap before fade")
}

func TestSequencer_Cancelled(t *testing.T) {
	script := testScript(time.Hour, "never finishes")
	b := memory.NewBindingForScript(script)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := runtime.NewSequencer().Run(ctx, script, b)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, b.HasState("block", domain.StateFadeOut))
}

func TestSequencer_InvalidScript(t *testing.T) {
	script := testScript(0)
	_, err := runtime.NewSequencer().Run(context.Background(), script, memory.NewBinding(nil))
	assert.ErrorIs(t, err, domain.ErrInvalidScript)

	_, err = runtime.NewSequencer().Run(context.Background(), testScript(0, "a"), nil)
	assert.Error(t, err)
}
