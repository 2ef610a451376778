package ui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestButtonClicksOnRelease(t *testing.T) {
	clicks := 0
	b := NewButton(0, 0, 26, 26, "+", func() { clicks++ })

	require.True(t, b.HandleInput(10, 10, true))
	require.Zero(t, clicks, "press alone must not fire")

	require.True(t, b.HandleInput(10, 10, false))
	require.Equal(t, 1, clicks)
}

func TestButtonDragOffCancelsClick(t *testing.T) {
	clicks := 0
	b := NewButton(0, 0, 26, 26, "+", func() { clicks++ })

	require.True(t, b.HandleInput(10, 10, true))
	require.False(t, b.HandleInput(40, 40, true))
	require.False(t, b.HandleInput(40, 40, false))
	require.Zero(t, clicks)
}

func TestButtonIgnoresReleaseWithoutPress(t *testing.T) {
	clicks := 0
	b := NewButton(5, 5, 20, 20, "x", func() { clicks++ })

	require.True(t, b.HandleInput(10, 10, false))
	require.Zero(t, clicks)
}

func TestButtonBounds(t *testing.T) {
	b := NewButton(3, 4, 20, 10, "x", nil)
	require.Equal(t, Rectangle{X: 3, Y: 4, Width: 20, Height: 10}, b.Bounds())
	require.True(t, b.Bounds().Contains(3, 4))
	require.True(t, b.Bounds().Contains(23, 14))
	require.False(t, b.Bounds().Contains(23.5, 14))
}
