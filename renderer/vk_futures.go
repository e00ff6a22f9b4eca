package renderer

import (
	"log"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	com "vulkan_mesh_demo/common"
	"vulkan_mesh_demo/frame"
)

// nowFuture is already complete.
type nowFuture struct{}

func (nowFuture) CleanupFinished() {}
func (nowFuture) Discard()         {}

func (c *Core) Now() frame.Future {
	return nowFuture{}
}

// fenceFuture is one submitted frame. It keeps everything the submission uses alive until its fence signals: the
// command buffer with its frame slot, the semaphores and the futures it was chained after.
type fenceFuture struct {
	device *com.Device
	fence  vk.Fence
	cmd    *commandBuffer

	waitSems       []vk.Semaphore
	renderFinished vk.Semaphore
	presented      bool

	prior []frame.Future
	done  bool
}

func (f *fenceFuture) CleanupFinished() {
	for _, p := range f.prior {
		p.CleanupFinished()
	}
	if f.done {
		return
	}
	if vk.GetFenceStatus(f.device.D, f.fence) == vk.Success {
		f.release()
	}
}

func (f *fenceFuture) Discard() {
	if f.done {
		return
	}
	err := vk.Error(vk.WaitForFences(f.device.D, 1, []vk.Fence{f.fence}, vk.True, vk.MaxUint64))
	if err != nil {
		log.Printf("Failed to wait for frame fence: %v", err)
	}
	f.release()
}

func (f *fenceFuture) release() {
	f.done = true
	f.cmd.Free()
	for _, s := range f.waitSems {
		f.device.Sync.PutSemaphore(s)
	}
	f.waitSems = nil
	if f.renderFinished != nil {
		if f.presented {
			f.device.Sync.PutSemaphore(f.renderFinished)
		} else {
			// A failed present may or may not have consumed the signal
			f.device.Sync.RetireSemaphore(f.renderFinished)
		}
		f.renderFinished = nil
	}
	f.device.Sync.PutFence(f.fence)
	for _, p := range f.prior {
		p.Discard()
	}
	f.prior = nil
}

// takeWaitSemaphores claims the semaphores of all acquisitions among parts.
func takeWaitSemaphores(parts []frame.Future) []vk.Semaphore {
	var sems []vk.Semaphore
	for _, p := range parts {
		if acq, ok := p.(*com.AcquireFuture); ok {
			if s := acq.TakeSemaphore(); s != nil {
				sems = append(sems, s)
			}
		}
	}
	return sems
}

// Flush submits cmd after everything wait stands for and presents imageIndex once rendering finished.
func (c *Core) Flush(wait frame.Future, cmd frame.CommandBuffer, sc frame.Swapchain, imageIndex uint32) (frame.Future, error) {
	parts := frame.Flatten(wait)
	cb, ok := cmd.(*commandBuffer)
	if !ok {
		discardAll(parts)
		return nil, errors.Errorf("unexpected command buffer type %T", cmd)
	}
	swap, err := swapChainOf(sc)
	if err != nil {
		cb.Free()
		discardAll(parts)
		return nil, err
	}

	waitSems := takeWaitSemaphores(parts)
	abort := func(err error) (frame.Future, error) {
		cb.Free()
		// Nothing waited on the acquisitions
		for _, s := range waitSems {
			c.device.Sync.DrainSemaphore(c.device.GraphicsQ, s)
		}
		discardAll(parts)
		return nil, err
	}

	renderFinished, err := c.device.Sync.Semaphore()
	if err != nil {
		return abort(err)
	}
	fence, err := c.device.Sync.Fence()
	if err != nil {
		c.device.Sync.PutSemaphore(renderFinished)
		return abort(err)
	}

	waitStages := make([]vk.PipelineStageFlags, len(waitSems))
	for i := range waitStages {
		waitStages[i] = vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		PNext:                nil,
		WaitSemaphoreCount:   uint32(len(waitSems)),
		PWaitSemaphores:      waitSems,
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{renderFinished},
	}
	if err := vk.Error(vk.QueueSubmit(c.device.GraphicsQ, 1, []vk.SubmitInfo{submitInfo}, fence)); err != nil {
		c.device.Sync.PutSemaphore(renderFinished)
		c.device.Sync.PutFence(fence)
		return abort(errors.Wrap(err, "vkQueueSubmit"))
	}

	future := &fenceFuture{
		device:         c.device,
		fence:          fence,
		cmd:            cb,
		waitSems:       waitSems,
		renderFinished: renderFinished,
		prior:          parts,
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swap.Handle},
		PImageIndices:      []uint32{imageIndex},
		PResults:           nil,
	}
	result := vk.QueuePresent(c.device.PresentQ, &presentInfo)
	switch result {
	case vk.Success, vk.Suboptimal:
		future.presented = true
		return future, nil
	case vk.ErrorOutOfDate:
		future.Discard()
		return nil, errors.Wrap(frame.ErrOutOfDate, "vkQueuePresentKHR")
	default:
		future.Discard()
		return nil, errors.Wrap(vk.Error(result), "vkQueuePresentKHR")
	}
}

func discardAll(futures []frame.Future) {
	for _, f := range futures {
		f.Discard()
	}
}
