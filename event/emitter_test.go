package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnAndFire(t *testing.T) {
	e := NewEmitter()

	var got []any
	e.On("move", func(data any) { got = append(got, data) })
	e.On("move", func(data any) { got = append(got, data) })

	e.Fire("move", 7)
	require.Equal(t, []any{7, 7}, got, "both handlers should run in order")

	e.Fire("other", 1)
	require.Len(t, got, 2, "unrelated event must not dispatch")
}

func TestOff(t *testing.T) {
	e := NewEmitter()

	calls := 0
	sub := e.On("load", func(any) { calls++ })
	keep := 0
	e.On("load", func(any) { keep++ })

	e.Fire("load", nil)
	e.Off(sub)
	e.Fire("load", nil)

	require.Equal(t, 1, calls, "removed handler should not fire again")
	require.Equal(t, 2, keep, "other handler must survive removal")

	// Removing twice is harmless.
	e.Off(sub)
	e.Fire("load", nil)
	require.Equal(t, 3, keep)
}

func TestOnce(t *testing.T) {
	e := NewEmitter()

	calls := 0
	e.Once("zoomend", func(any) { calls++ })

	e.Fire("zoomend", nil)
	e.Fire("zoomend", nil)
	require.Equal(t, 1, calls)
}

func TestMutationDuringDispatch(t *testing.T) {
	e := NewEmitter()

	var order []string
	var late Subscription
	e.On("tick", func(any) {
		order = append(order, "first")
		late = e.On("tick", func(any) { order = append(order, "late") })
	})
	e.On("tick", func(any) { order = append(order, "second") })

	e.Fire("tick", nil)
	require.Equal(t, []string{"first", "second"}, order,
		"handler added during dispatch must wait for the next fire")

	e.Fire("tick", nil)
	require.Equal(t, []string{"first", "second", "first", "second", "late"}, order)
	e.Off(late)
}

func TestListens(t *testing.T) {
	e := NewEmitter()
	require.False(t, e.Listens("move"))

	sub := e.On("move", func(any) {})
	require.True(t, e.Listens("move"))

	e.Off(sub)
	require.False(t, e.Listens("move"))
}
