package frame

// The interfaces in this file are the only view the loop has on the graphics device. The Vulkan
// backend in package renderer implements them; tests use in-memory fakes.

// Future represents GPU work that has been submitted but possibly not finished yet.
type Future interface {
	// CleanupFinished releases resources of already completed work without blocking.
	CleanupFinished()
	// Discard blocks until the work completes and releases everything it holds. Used for futures
	// the loop drops without chaining them into a submission.
	Discard()
}

// Acquisition is the result of a successful image acquisition.
type Acquisition struct {
	ImageIndex uint32
	// Suboptimal is set when the image can still be presented but the swapchain no longer
	// matches the surface exactly.
	Suboptimal bool
	// Future completes once the image is actually available to render into.
	Future Future
}

// Swapchain is one generation of presentable images. Recreate produces the next generation; the
// caller stays responsible for destroying the previous one.
type Swapchain interface {
	Extent() Extent
	ImageCount() int
	// AcquireNextImage blocks without timeout until an image index is handed out. Returns an error
	// matching ErrOutOfDate when the surface changed.
	AcquireNextImage() (Acquisition, error)
	// Recreate builds a swapchain for size. Returns an error matching ErrUnsupportedDimensions
	// when size cannot be presented to.
	Recreate(size Extent) (Swapchain, error)
	Destroy()
}

// Framebuffer is a render target made of one swapchain image and the shared depth attachment.
type Framebuffer interface {
	// Extent is the size of the color attachment.
	Extent() Extent
	Destroy()
}

// CommandBuffer is a recorded, not yet submitted, command buffer.
type CommandBuffer interface {
	Free()
}

// Renderer issues the device work of a single frame.
type Renderer interface {
	// BuildFramebuffers creates one framebuffer per image of sc, all sharing a new depth buffer.
	BuildFramebuffers(sc Swapchain) ([]Framebuffer, error)
	// Record builds a one-time-submit command buffer that draws the mesh into fb using the given
	// viewport and uniform data.
	Record(fb Framebuffer, vp Viewport, ubo UniformBufferObject) (CommandBuffer, error)
	// Now returns a future that is already complete.
	Now() Future
	// Flush executes cmd after wait, presents imageIndex of sc and signals a fence. The returned
	// future completes with the fence. On error the backend has already released cmd and wait.
	Flush(wait Future, cmd CommandBuffer, sc Swapchain, imageIndex uint32) (Future, error)
}

// Window reports the current drawable size.
type Window interface {
	Size() Extent
}

type joinedFuture struct {
	parts []Future
}

// Join combines two futures into one that completes when both have completed.
func Join(a, b Future) Future {
	return &joinedFuture{parts: append(Flatten(a), Flatten(b)...)}
}

func (j *joinedFuture) CleanupFinished() {
	for _, p := range j.parts {
		p.CleanupFinished()
	}
}

func (j *joinedFuture) Discard() {
	for _, p := range j.parts {
		p.Discard()
	}
}

// Flatten lists the non-joined futures f is made of, in join order.
func Flatten(f Future) []Future {
	if f == nil {
		return nil
	}
	if j, ok := f.(*joinedFuture); ok {
		out := make([]Future, len(j.parts))
		copy(out, j.parts)
		return out
	}
	return []Future{f}
}
