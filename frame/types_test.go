package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitViewportMatchingAspectFillsExtent(t *testing.T) {
	vp := FitViewport(Extent{Width: 800, Height: 600}, 4.0/3.0)
	assert.Equal(t, Viewport{X: 0, Y: 0, Width: 800, Height: 600, MinDepth: 0, MaxDepth: 1}, vp)
}

func TestFitViewportPillarbox(t *testing.T) {
	vp := FitViewport(Extent{Width: 1600, Height: 800}, 1)
	assert.InDelta(t, 400, vp.X, 1e-4)
	assert.InDelta(t, 0, vp.Y, 1e-4)
	assert.InDelta(t, 800, vp.Width, 1e-4)
	assert.InDelta(t, 800, vp.Height, 1e-4)
}

func TestFitViewportLetterbox(t *testing.T) {
	vp := FitViewport(Extent{Width: 800, Height: 600}, 16.0/9.0)
	assert.InDelta(t, 0, vp.X, 1e-4)
	assert.InDelta(t, 800, vp.Width, 1e-4)
	assert.InDelta(t, 450, vp.Height, 1e-3)
	assert.InDelta(t, 75, vp.Y, 1e-3)
}

func TestFitViewportIsCenteredAndNonNegative(t *testing.T) {
	extents := []Extent{{800, 600}, {600, 800}, {1, 1000}, {1000, 1}, {1920, 1080}, {3, 7}}
	ratios := []float32{0.5, 1, 4.0 / 3.0, 16.0 / 9.0, 3}
	for _, e := range extents {
		for _, r := range ratios {
			vp := FitViewport(e, r)
			assert.GreaterOrEqual(t, vp.X, float32(0), "%s @ %f", e, r)
			assert.GreaterOrEqual(t, vp.Y, float32(0), "%s @ %f", e, r)
			assert.LessOrEqual(t, vp.Width, float32(e.Width)+1e-3, "%s @ %f", e, r)
			assert.LessOrEqual(t, vp.Height, float32(e.Height)+1e-3, "%s @ %f", e, r)
			assert.InDelta(t, float32(e.Width), 2*vp.X+vp.Width, 1e-3, "%s @ %f", e, r)
			assert.InDelta(t, float32(e.Height), 2*vp.Y+vp.Height, 1e-3, "%s @ %f", e, r)
			assert.InDelta(t, r, vp.Width/vp.Height, float64(1e-2*r), "%s @ %f", e, r)
		}
	}
}

func TestFitViewportIsIdempotent(t *testing.T) {
	e := Extent{Width: 1366, Height: 768}
	assert.Equal(t, FitViewport(e, 1), FitViewport(e, 1))
}

func TestExtentIsZero(t *testing.T) {
	assert.True(t, Extent{}.IsZero())
	assert.True(t, Extent{Width: 10}.IsZero())
	assert.False(t, Extent{Width: 1, Height: 1}.IsZero())
}

func TestJoinFlattens(t *testing.T) {
	a, b, c := &fakeFuture{name: "a"}, &fakeFuture{name: "b"}, &fakeFuture{name: "c"}
	j := Join(Join(a, b), c)
	assert.Equal(t, []Future{a, b, c}, Flatten(j))

	j.CleanupFinished()
	j.Discard()
	for _, f := range []*fakeFuture{a, b, c} {
		assert.Equal(t, 1, f.cleanups)
		assert.True(t, f.discarded)
	}
	assert.Nil(t, Flatten(nil))
}
