package frame

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock() time.Duration { return 1500 * time.Millisecond }

func newTestLoop(t *testing.T, images int) (*Loop, *fakeRenderer, *fakeWindow) {
	t.Helper()
	win := &fakeWindow{size: Extent{Width: 800, Height: 800}}
	sc := &fakeSwapchain{extent: win.size, images: images}
	r := &fakeRenderer{}
	l, err := NewLoop(r, win, sc, 1, clock)
	require.NoError(t, err)
	r.loop = l
	return l, r, win
}

func assertFramebuffersMatch(t *testing.T, l *Loop) {
	t.Helper()
	sc := l.Swapchain()
	require.Len(t, l.Framebuffers(), sc.ImageCount())
	for i, fb := range l.Framebuffers() {
		assert.Equal(t, sc.Extent(), fb.Extent(), "framebuffer %d", i)
	}
}

func TestNewLoopBuildsFramebuffers(t *testing.T) {
	l, r, _ := newTestLoop(t, 3)
	assert.Equal(t, Idle, l.State())
	assert.Len(t, r.built, 1)
	assertFramebuffersMatch(t, l)
	assert.Equal(t, FitViewport(Extent{800, 800}, 1), l.Viewport())
}

func TestNewLoopRejectsInvalidAspect(t *testing.T) {
	sc := &fakeSwapchain{extent: Extent{800, 600}, images: 2}
	_, err := NewLoop(&fakeRenderer{}, &fakeWindow{}, sc, 0, clock)
	assert.Error(t, err)
}

func TestCloseAndEscapeRequestExit(t *testing.T) {
	for _, ev := range []Event{CloseRequested, KeyEscape} {
		t.Run(ev.String(), func(t *testing.T) {
			l, r, _ := newTestLoop(t, 2)
			require.NoError(t, l.Handle(ev))
			assert.True(t, l.Exit())
			assert.Empty(t, r.flushes)
		})
	}
}

func TestResizeIsDeferredUntilRedraw(t *testing.T) {
	l, r, win := newTestLoop(t, 2)
	win.size = Extent{Width: 1024, Height: 512}

	require.NoError(t, l.Handle(Resized))
	assert.True(t, l.OutOfDate())
	assert.Equal(t, SwapchainInvalid, l.State())
	assert.Len(t, r.built, 1, "recreation must not happen on the resize event itself")

	require.NoError(t, l.Handle(Redraw))
	assert.False(t, l.OutOfDate())
	assert.Equal(t, Idle, l.State())
	assert.Len(t, r.built, 2)
	assert.Equal(t, win.size, l.Swapchain().Extent())
	assertFramebuffersMatch(t, l)
}

func TestRedrawSubmitsAndStoresFuture(t *testing.T) {
	l, r, _ := newTestLoop(t, 3)

	require.NoError(t, l.Handle(Redraw))
	require.Len(t, r.flushes, 1)
	require.NotNil(t, l.Previous())
	assert.Equal(t, Idle, l.State())
	assert.Equal(t, 1, r.nows, "first frame has no previous future and joins a now future")

	call := r.flushes[0]
	require.Len(t, call.wait, 2)
	assert.Equal(t, "now-1", call.wait[0].(*fakeFuture).name)
	assert.Same(t, l.Framebuffers()[call.idx], call.cmd.fb)
	assert.Equal(t, l.Viewport(), call.cmd.vp)
}

func TestPreviousFutureIsTakenBeforeFlush(t *testing.T) {
	l, r, _ := newTestLoop(t, 3)

	for i := 0; i < 5; i++ {
		before := l.Previous()
		require.NoError(t, l.Handle(Redraw))
		call := r.flushes[len(r.flushes)-1]

		assert.Nil(t, call.previousAtCall, "frame %d: previous future still owned by the loop during flush", i)
		if before != nil {
			assert.Same(t, before, call.wait[0], "frame %d: waits on the previous frame", i)
			assert.Equal(t, 1, before.(*fakeFuture).cleanups, "frame %d: cleanup runs before acquisition", i)
			assert.NotSame(t, before, l.Previous())
		}
	}
	assert.Equal(t, 1, r.nows)
}

func TestAcquireOutOfDateRecreatesAndSkipsFrame(t *testing.T) {
	l, r, win := newTestLoop(t, 2)
	sc := l.Swapchain().(*fakeSwapchain)
	sc.results = []acquireResult{{err: ErrOutOfDate}}
	win.size = Extent{Width: 640, Height: 480}

	require.NoError(t, l.Handle(Redraw))
	assert.Empty(t, r.flushes)
	assert.Empty(t, r.recorded)
	assert.True(t, sc.destroyed)
	assert.Equal(t, win.size, l.Swapchain().Extent())
	assertFramebuffersMatch(t, l)
}

func TestAcquireOtherErrorIsFatal(t *testing.T) {
	l, r, _ := newTestLoop(t, 2)
	deviceLost := errors.New("device lost")
	l.Swapchain().(*fakeSwapchain).results = []acquireResult{{err: deviceLost}}

	err := l.Handle(Redraw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, deviceLost))
	assert.False(t, IsRecoverable(err))
	assert.Empty(t, r.flushes)
	assert.Len(t, r.built, 1)
}

func TestSuboptimalRendersThenRecreates(t *testing.T) {
	l, r, win := newTestLoop(t, 2)
	old := l.Swapchain().(*fakeSwapchain)
	old.results = []acquireResult{{idx: 1, suboptimal: true}}
	win.size = Extent{Width: 1000, Height: 800}

	require.NoError(t, l.Handle(Redraw))
	require.Len(t, r.flushes, 1)
	assert.Same(t, old, r.flushes[0].sc, "the frame is still presented to the suboptimal swapchain")
	assert.True(t, old.destroyed)
	assert.False(t, l.OutOfDate())
	assert.Equal(t, win.size, l.Swapchain().Extent())
	assertFramebuffersMatch(t, l)
}

func TestStaleImageIndexIsTreatedAsOutOfDate(t *testing.T) {
	l, r, _ := newTestLoop(t, 2)
	l.Swapchain().(*fakeSwapchain).results = []acquireResult{{idx: 2}}

	require.NoError(t, l.Handle(Redraw))
	assert.Empty(t, r.flushes)
	assert.Len(t, r.built, 2)
	assertFramebuffersMatch(t, l)
}

func TestFlushOutOfDateDropsFutureAndRecreates(t *testing.T) {
	l, r, _ := newTestLoop(t, 2)
	require.NoError(t, l.Handle(Redraw))
	require.NotNil(t, l.Previous())

	r.flushErrs = []error{errors.Wrap(ErrOutOfDate, "vkQueuePresentKHR")}
	require.NoError(t, l.Handle(Redraw))
	assert.Nil(t, l.Previous())
	assert.False(t, l.OutOfDate())
	assert.Len(t, r.built, 2)

	// the next frame starts from a fresh now future
	require.NoError(t, l.Handle(Redraw))
	assert.Equal(t, 2, r.nows)
	assert.NotNil(t, l.Previous())
}

func TestFlushOtherErrorIsNotFatal(t *testing.T) {
	l, r, _ := newTestLoop(t, 2)
	r.flushErrs = []error{errors.New("queue submit failed")}

	require.NoError(t, l.Handle(Redraw))
	assert.Nil(t, l.Previous())
	assert.False(t, l.OutOfDate())
	assert.Len(t, r.built, 1)
	assert.Equal(t, Idle, l.State())
}

func TestUnsupportedDimensionsRetriesNextTick(t *testing.T) {
	l, r, win := newTestLoop(t, 2)
	old := l.Swapchain()
	oldFbs := l.Framebuffers()

	win.size = Extent{}
	require.NoError(t, l.Handle(Resized))
	require.NoError(t, l.Handle(Redraw))

	assert.Same(t, old, l.Swapchain())
	assert.Equal(t, oldFbs, l.Framebuffers())
	assert.True(t, l.OutOfDate())
	assert.Equal(t, SwapchainInvalid, l.State())

	win.size = Extent{Width: 300, Height: 200}
	require.NoError(t, l.Handle(Redraw))
	assert.False(t, l.OutOfDate())
	assert.Equal(t, win.size, l.Swapchain().Extent())
	assertFramebuffersMatch(t, l)
	for _, fb := range oldFbs {
		assert.True(t, fb.(*fakeFramebuffer).destroyed)
	}
	assert.Len(t, r.built, 2)
}

func TestRecreateOtherErrorIsFatal(t *testing.T) {
	l, _, _ := newTestLoop(t, 2)
	l.Swapchain().(*fakeSwapchain).recreateErr = errors.New("surface lost")
	require.NoError(t, l.Handle(Resized))

	err := l.Handle(Redraw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to recreate swapchain")
}

func TestRecordErrorIsFatal(t *testing.T) {
	l, r, _ := newTestLoop(t, 2)
	r.recordErr = errors.New("out of device memory")
	assert.Error(t, l.Handle(Redraw))
	assert.Empty(t, r.flushes)
}

func TestFramebuffersFollowResizeSequences(t *testing.T) {
	sizes := []Extent{
		{Width: 1280, Height: 720},
		{Width: 1, Height: 1},
		{},
		{Width: 640, Height: 1024},
		{Width: 640, Height: 1024},
		{Width: 3840, Height: 2160},
	}
	win := &fakeWindow{size: Extent{Width: 800, Height: 800}}
	sc := &fakeSwapchain{
		extent: win.size,
		images: 3,
		imagesFor: func(e Extent) int {
			return 2 + int(e.Width%3)
		},
	}
	r := &fakeRenderer{}
	l, err := NewLoop(r, win, sc, 1, clock)
	require.NoError(t, err)

	for _, size := range sizes {
		win.size = size
		require.NoError(t, l.Handle(Resized))
		require.NoError(t, l.Handle(Redraw))
		require.NoError(t, l.Handle(Redraw))
		assertFramebuffersMatch(t, l)
		if !size.IsZero() {
			assert.Equal(t, size, l.Swapchain().Extent())
		}
	}
}

func TestRepeatedFramesDoNotGrowFramebuffers(t *testing.T) {
	l, r, _ := newTestLoop(t, 3)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Handle(Redraw))
		assert.LessOrEqual(t, len(l.Framebuffers()), l.Swapchain().ImageCount())
	}
	assert.Len(t, r.built, 1)
	assert.Len(t, r.flushes, 100)
}

func TestCloseDiscardsPreviousAndDestroysResources(t *testing.T) {
	l, _, _ := newTestLoop(t, 2)
	require.NoError(t, l.Handle(Redraw))
	prev := l.Previous().(*fakeFuture)
	sc := l.Swapchain().(*fakeSwapchain)
	fbs := l.Framebuffers()

	l.Close()
	assert.True(t, prev.discarded)
	assert.True(t, sc.destroyed)
	for _, fb := range fbs {
		assert.True(t, fb.(*fakeFramebuffer).destroyed)
	}
	assert.Nil(t, l.Swapchain())
}
