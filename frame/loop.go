package frame

import (
	"log"
	"time"

	"github.com/pkg/errors"
)

// Loop owns all state that changes from frame to frame: the current swapchain generation, its
// framebuffers, the dynamic viewport and the future of the previously submitted frame. It is
// driven by Handle from a single goroutine.
type Loop struct {
	renderer Renderer
	window   Window
	elapsed  func() time.Duration
	aspect   float32

	swapchain    Swapchain
	framebuffers []Framebuffer
	viewport     Viewport
	outOfDate    bool
	previous     Future

	state State
	exit  bool
}

// NewLoop takes ownership of sc and builds the initial framebuffer set for it. aspect is the target
// aspect ratio the viewport is fitted to, elapsed is the animation clock.
func NewLoop(r Renderer, w Window, sc Swapchain, aspect float32, elapsed func() time.Duration) (*Loop, error) {
	if aspect <= 0 {
		return nil, errors.Errorf("invalid target aspect ratio %f", aspect)
	}
	l := &Loop{
		renderer:  r,
		window:    w,
		elapsed:   elapsed,
		aspect:    aspect,
		swapchain: sc,
		viewport:  FitViewport(sc.Extent(), aspect),
		state:     Idle,
	}
	fbs, err := r.BuildFramebuffers(sc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create framebuffers")
	}
	l.framebuffers = fbs
	return l, nil
}

// Handle reacts to a single event. A returned error is fatal.
func (l *Loop) Handle(ev Event) error {
	switch ev {
	case CloseRequested, KeyEscape:
		l.exit = true
	case Resized:
		l.invalidate()
	case Redraw:
		return l.redraw()
	}
	return nil
}

// Exit reports whether termination was requested.
func (l *Loop) Exit() bool { return l.exit }

func (l *Loop) State() State { return l.state }

// OutOfDate reports whether the swapchain is scheduled for recreation.
func (l *Loop) OutOfDate() bool { return l.outOfDate }

func (l *Loop) Swapchain() Swapchain { return l.swapchain }

func (l *Loop) Viewport() Viewport { return l.viewport }

// Framebuffers returns the current framebuffer set, indexed by swapchain image.
func (l *Loop) Framebuffers() []Framebuffer { return l.framebuffers }

// Previous returns the future of the last successfully flushed frame, nil if there is none.
func (l *Loop) Previous() Future { return l.previous }

// Close waits for outstanding work and destroys the framebuffers and the swapchain.
func (l *Loop) Close() {
	if prev := l.takePrevious(); prev != nil {
		prev.Discard()
	}
	l.destroyFramebuffers()
	if l.swapchain != nil {
		l.swapchain.Destroy()
		l.swapchain = nil
	}
}

func (l *Loop) invalidate() {
	l.outOfDate = true
	l.state = SwapchainInvalid
}

func (l *Loop) takePrevious() Future {
	prev := l.previous
	l.previous = nil
	return prev
}

func (l *Loop) redraw() error {
	if l.previous != nil {
		l.previous.CleanupFinished()
	}

	acq, err := l.swapchain.AcquireNextImage()
	if errors.Is(err, ErrOutOfDate) {
		l.invalidate()
		return l.recreate()
	} else if err != nil {
		return errors.Wrap(err, "failed to acquire next image")
	}
	l.state = ImageAcquired

	if acq.Suboptimal {
		l.invalidate()
	}

	// Some drivers hand out stale indices while a resize is in progress
	if int(acq.ImageIndex) >= l.swapchain.ImageCount() || int(acq.ImageIndex) >= len(l.framebuffers) {
		if acq.Future != nil {
			acq.Future.Discard()
		}
		l.invalidate()
		return l.recreate()
	}

	ubo := NewUniformBufferObject(l.elapsed(), l.aspect)
	cmd, err := l.renderer.Record(l.framebuffers[acq.ImageIndex], l.viewport, ubo)
	if err != nil {
		if acq.Future != nil {
			acq.Future.Discard()
		}
		return errors.Wrap(err, "failed to record command buffer")
	}

	prev := l.takePrevious()
	if prev == nil {
		prev = l.renderer.Now()
	}
	wait := prev
	if acq.Future != nil {
		wait = Join(prev, acq.Future)
	}
	future, err := l.renderer.Flush(wait, cmd, l.swapchain, acq.ImageIndex)
	l.state = Submitted
	switch {
	case err == nil:
		l.previous = future
	case errors.Is(err, ErrOutOfDate):
		l.invalidate()
	default:
		log.Printf("Failed to flush future: %v", err)
	}

	if l.outOfDate {
		return l.recreate()
	}
	l.state = Idle
	return nil
}

// recreate replaces the swapchain with one matching the current window size and rebuilds the
// framebuffers and viewport together with it. Unsupported dimensions leave everything untouched
// so the next tick can retry.
func (l *Loop) recreate() error {
	size := l.window.Size()
	next, err := l.swapchain.Recreate(size)
	if errors.Is(err, ErrUnsupportedDimensions) {
		l.state = SwapchainInvalid
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "failed to recreate swapchain for %s", size)
	}

	l.destroyFramebuffers()
	old := l.swapchain
	l.swapchain = next
	old.Destroy()

	l.viewport = FitViewport(next.Extent(), l.aspect)
	fbs, err := l.renderer.BuildFramebuffers(next)
	if err != nil {
		return errors.Wrap(err, "failed to create framebuffers")
	}
	l.framebuffers = fbs
	l.outOfDate = false
	l.state = Idle
	return nil
}

func (l *Loop) destroyFramebuffers() {
	for _, fb := range l.framebuffers {
		fb.Destroy()
	}
	l.framebuffers = nil
}
