package frame

import (
	"fmt"

	"github.com/pkg/errors"
)

type fakeFuture struct {
	name      string
	cleanups  int
	discarded bool
}

func (f *fakeFuture) CleanupFinished() { f.cleanups++ }
func (f *fakeFuture) Discard()         { f.discarded = true }

type acquireResult struct {
	idx        uint32
	suboptimal bool
	err        error
}

type fakeSwapchain struct {
	gen       int
	extent    Extent
	images    int
	results   []acquireResult
	acquired  int
	destroyed bool

	// recreateErr is returned by the next Recreate call instead of a new generation
	recreateErr error
	// imagesFor decides the image count of the next generation
	imagesFor func(Extent) int
}

func (s *fakeSwapchain) Extent() Extent  { return s.extent }
func (s *fakeSwapchain) ImageCount() int { return s.images }
func (s *fakeSwapchain) Destroy()        { s.destroyed = true }

func (s *fakeSwapchain) AcquireNextImage() (Acquisition, error) {
	var r acquireResult
	if len(s.results) > 0 {
		r = s.results[0]
		s.results = s.results[1:]
	} else {
		r = acquireResult{idx: uint32(s.acquired % s.images)}
	}
	s.acquired++
	if r.err != nil {
		return Acquisition{}, errors.Wrap(r.err, "vkAcquireNextImageKHR")
	}
	return Acquisition{
		ImageIndex: r.idx,
		Suboptimal: r.suboptimal,
		Future:     &fakeFuture{name: fmt.Sprintf("acquire-%d-%d", s.gen, s.acquired)},
	}, nil
}

func (s *fakeSwapchain) Recreate(size Extent) (Swapchain, error) {
	if err := s.recreateErr; err != nil {
		s.recreateErr = nil
		return nil, errors.Wrap(err, "vkCreateSwapchainKHR")
	}
	if size.IsZero() {
		return nil, errors.Wrapf(ErrUnsupportedDimensions, "extent %s", size)
	}
	images := s.images
	if s.imagesFor != nil {
		images = s.imagesFor(size)
	}
	return &fakeSwapchain{
		gen:       s.gen + 1,
		extent:    size,
		images:    images,
		imagesFor: s.imagesFor,
	}, nil
}

type fakeFramebuffer struct {
	extent    Extent
	destroyed bool
}

func (f *fakeFramebuffer) Extent() Extent { return f.extent }
func (f *fakeFramebuffer) Destroy()       { f.destroyed = true }

type fakeCommandBuffer struct {
	fb    Framebuffer
	vp    Viewport
	freed bool
}

func (c *fakeCommandBuffer) Free() { c.freed = true }

type flushCall struct {
	wait []Future
	cmd  *fakeCommandBuffer
	sc   Swapchain
	idx  uint32
	// previousAtCall is what the loop exposed as Previous() while Flush ran
	previousAtCall Future
}

type fakeRenderer struct {
	loop *Loop

	built    [][]Framebuffer
	recorded []*fakeCommandBuffer
	flushes  []flushCall
	nows     int

	flushErrs []error
	flushed   int
	buildErr  error
	recordErr error
}

func (r *fakeRenderer) BuildFramebuffers(sc Swapchain) ([]Framebuffer, error) {
	if r.buildErr != nil {
		return nil, r.buildErr
	}
	fbs := make([]Framebuffer, sc.ImageCount())
	for i := range fbs {
		fbs[i] = &fakeFramebuffer{extent: sc.Extent()}
	}
	r.built = append(r.built, fbs)
	return fbs, nil
}

func (r *fakeRenderer) Record(fb Framebuffer, vp Viewport, _ UniformBufferObject) (CommandBuffer, error) {
	if r.recordErr != nil {
		return nil, r.recordErr
	}
	cmd := &fakeCommandBuffer{fb: fb, vp: vp}
	r.recorded = append(r.recorded, cmd)
	return cmd, nil
}

func (r *fakeRenderer) Now() Future {
	r.nows++
	return &fakeFuture{name: fmt.Sprintf("now-%d", r.nows)}
}

func (r *fakeRenderer) Flush(wait Future, cmd CommandBuffer, sc Swapchain, idx uint32) (Future, error) {
	call := flushCall{wait: Flatten(wait), cmd: cmd.(*fakeCommandBuffer), sc: sc, idx: idx}
	if r.loop != nil {
		call.previousAtCall = r.loop.Previous()
	}
	r.flushes = append(r.flushes, call)
	var err error
	if len(r.flushErrs) > 0 {
		err = r.flushErrs[0]
		r.flushErrs = r.flushErrs[1:]
	}
	r.flushed++
	if err != nil {
		return nil, err
	}
	return &fakeFuture{name: fmt.Sprintf("fence-%d", r.flushed)}, nil
}

type fakeWindow struct {
	size Extent
}

func (w *fakeWindow) Size() Extent { return w.size }
