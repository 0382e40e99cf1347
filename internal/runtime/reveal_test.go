package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/prologue/internal/runtime"
	"github.com/aretw0/prologue/pkg/adapters/memory"
	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvePair(t *testing.T, b *memory.Binding) (target, caret ports.Element) {
	t.Helper()
	target, err := b.Resolve("t1")
	require.NoError(t, err)
	caret, err = b.Resolve("c1")
	require.NoError(t, err)
	return target, caret
}

func texts(calls []memory.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Value)
	}
	return out
}

func TestReveal_Snapshots(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"ascii", "Hi", []string{"", "H", "Hi"}},
		{"empty", "", []string{""}},
		{"multibyte", "a—“b”", []string{"", "a", "a—", "a—“", "a—“b", "a—“b”"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := memory.NewBinding([]string{"t1", "c1"})
			target, caret := resolvePair(t, b)

			err := runtime.Reveal(context.Background(), b, target, caret, tt.text, 0)
			require.NoError(t, err)

			got := texts(b.Calls(memory.OpSetText))
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len([]rune(tt.text))+1)
			assert.Equal(t, tt.text, b.Text("t1"))
		})
	}
}

func TestReveal_CaretBracketsEverySnapshot(t *testing.T) {
	for _, text := range []string{"", "Yo"} {
		b := memory.NewBinding([]string{"t1", "c1"})
		target, caret := resolvePair(t, b)

		require.NoError(t, runtime.Reveal(context.Background(), b, target, caret, text, 0))

		calls := b.Calls()
		require.GreaterOrEqual(t, len(calls), 3)
		assert.Equal(t, memory.Call{Op: memory.OpSetCaretVisible, ElementID: "c1", Value: "visible"}, calls[0])
		assert.Equal(t, memory.Call{Op: memory.OpSetCaretVisible, ElementID: "c1", Value: "hidden"}, calls[len(calls)-1])
		for _, c := range calls[1 : len(calls)-1] {
			assert.Equal(t, memory.OpSetText, c.Op, "only text snapshots while the caret is shown")
		}
		assert.False(t, b.CaretVisible("c1"))
	}
}

func TestReveal_PausesAfterEverySnapshot(t *testing.T) {
	b := memory.NewBinding([]string{"t1", "c1"})
	target, caret := resolvePair(t, b)

	start := time.Now()
	require.NoError(t, runtime.Reveal(context.Background(), b, target, caret, "abc", 5*time.Millisecond))

	// four snapshots, each followed by a pause, including the full text
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestReveal_NilHandles(t *testing.T) {
	b := memory.NewBinding([]string{"t1", "c1"})
	target, caret := resolvePair(t, b)

	err := runtime.Reveal(context.Background(), b, nil, caret, "x", 0)
	assert.ErrorIs(t, err, domain.ErrElementNotFound)

	err = runtime.Reveal(context.Background(), b, target, nil, "x", 0)
	assert.ErrorIs(t, err, domain.ErrElementNotFound)

	assert.Empty(t, b.Calls())
}

func TestReveal_BindingFailureAborts(t *testing.T) {
	b := memory.NewBinding([]string{"t1", "c1"})
	target, caret := resolvePair(t, b)
	b.FailOn(memory.OpSetText, "t1", errors.New("node detached"))

	err := runtime.Reveal(context.Background(), b, target, caret, "abc", 0)

	var bindErr *domain.BindingError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "set_text", bindErr.Op)
	assert.Equal(t, "t1", bindErr.ElementID)
	// no rollback: the caret stays as it was
	assert.True(t, b.CaretVisible("c1"))
}

func TestReveal_Cancelled(t *testing.T) {
	b := memory.NewBinding([]string{"t1", "c1"})
	target, caret := resolvePair(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := runtime.Reveal(ctx, b, target, caret, "a long line that will not finish", time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{""}, texts(b.Calls(memory.OpSetText)))
}
