package common

import (
	"log"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

// FreeList recycles handles that are expensive or noisy to create every frame. Items are created on demand, so the
// number alive is bounded by the peak number checked out at once.
type FreeList[T any] struct {
	free    []T
	retired []T
	created int
	create  func() (T, error)
	destroy func(T)
}

func NewFreeList[T any](create func() (T, error), destroy func(T)) *FreeList[T] {
	return &FreeList[T]{create: create, destroy: destroy}
}

func (f *FreeList[T]) Get() (T, error) {
	if n := len(f.free); n > 0 {
		v := f.free[n-1]
		f.free = f.free[:n-1]
		return v, nil
	}
	v, err := f.create()
	if err != nil {
		return v, err
	}
	f.created++
	return v, nil
}

func (f *FreeList[T]) Put(v T) {
	f.free = append(f.free, v)
}

// Drop destroys an item that must not be handed out again.
func (f *FreeList[T]) Drop(v T) {
	f.destroy(v)
	f.created--
}

// Retire takes v out of circulation without destroying it. Retired items are destroyed by DestroyAll.
func (f *FreeList[T]) Retire(v T) {
	f.retired = append(f.retired, v)
}

// Outstanding is the number of items currently checked out.
func (f *FreeList[T]) Outstanding() int {
	return f.created - len(f.free) - len(f.retired)
}

// DestroyRetired destroys the retired items. The caller guarantees none of them is still in use.
func (f *FreeList[T]) DestroyRetired() {
	for _, v := range f.retired {
		f.destroy(v)
	}
	f.created -= len(f.retired)
	f.retired = nil
}

func (f *FreeList[T]) DestroyAll() {
	for _, v := range f.free {
		f.destroy(v)
	}
	for _, v := range f.retired {
		f.destroy(v)
	}
	f.created -= len(f.free) + len(f.retired)
	f.free = nil
	f.retired = nil
}

// SyncPool hands out binary semaphores and unsignalled fences for frame submission.
type SyncPool struct {
	device     vk.Device
	semaphores *FreeList[vk.Semaphore]
	fences     *FreeList[vk.Fence]

	// drain blocks until a pending signal on the semaphore has been consumed on the queue.
	drain func(vk.Queue, vk.Semaphore) error
}

func NewSyncPool(device vk.Device) *SyncPool {
	p := &SyncPool{
		device: device,
		semaphores: NewFreeList(
			func() (vk.Semaphore, error) { return VkCreateSemaphore(device, nil) },
			func(s vk.Semaphore) { vk.DestroySemaphore(device, s, nil) },
		),
		fences: NewFreeList(
			func() (vk.Fence, error) { return VkCreateFence(device, 0, nil) },
			func(f vk.Fence) { vk.DestroyFence(device, f, nil) },
		),
	}
	p.drain = p.waitOnSemaphore
	return p
}

func (p *SyncPool) Semaphore() (vk.Semaphore, error) {
	s, err := p.semaphores.Get()
	return s, errors.Wrap(err, "failed to create semaphore")
}

// PutSemaphore returns an unsignalled semaphore to the pool.
func (p *SyncPool) PutSemaphore(s vk.Semaphore) {
	p.semaphores.Put(s)
}

// RetireSemaphore parks a semaphore whose signal state is unknown until Destroy, which runs once the device is idle.
func (p *SyncPool) RetireSemaphore(s vk.Semaphore) {
	p.semaphores.Retire(s)
}

// DestroyRetired destroys retired semaphores. Only valid while the device is idle.
func (p *SyncPool) DestroyRetired() {
	p.semaphores.DestroyRetired()
}

// DrainSemaphore consumes the pending signal of s, which nothing else is going to wait on, and returns s to the
// pool. If the signal cannot be consumed s is retired.
func (p *SyncPool) DrainSemaphore(queue vk.Queue, s vk.Semaphore) {
	if err := p.drain(queue, s); err != nil {
		log.Printf("Failed to drain semaphore, retiring it: %v", err)
		p.RetireSemaphore(s)
		return
	}
	p.PutSemaphore(s)
}

// waitOnSemaphore submits an empty batch that waits on s and blocks on its fence.
func (p *SyncPool) waitOnSemaphore(queue vk.Queue, s vk.Semaphore) error {
	fence, err := p.Fence()
	if err != nil {
		return err
	}
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{s},
		PWaitDstStageMask:  []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)},
	}
	if err := vk.Error(vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, fence)); err != nil {
		p.PutFence(fence)
		return errors.Wrap(err, "vkQueueSubmit")
	}
	if err := vk.Error(vk.WaitForFences(p.device, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64)); err != nil {
		// The fence may still be pending, so it is left checked out
		return errors.Wrap(err, "vkWaitForFences")
	}
	p.PutFence(fence)
	return nil
}

func (p *SyncPool) Fence() (vk.Fence, error) {
	f, err := p.fences.Get()
	return f, errors.Wrap(err, "failed to create fence")
}

// PutFence resets f and returns it to the pool. The fence must not be in use by a pending submission.
func (p *SyncPool) PutFence(f vk.Fence) {
	if err := vk.Error(vk.ResetFences(p.device, 1, []vk.Fence{f})); err != nil {
		log.Printf("Failed to reset fence, dropping it: %v", err)
		p.fences.Drop(f)
		return
	}
	p.fences.Put(f)
}

// Destroy releases every pooled object. Objects still checked out are reported and leaked.
func (p *SyncPool) Destroy() {
	if n := p.semaphores.Outstanding() + p.fences.Outstanding(); n > 0 {
		log.Printf("Destroying sync pool with %d objects still in use", n)
	}
	p.semaphores.DestroyAll()
	p.fences.DestroyAll()
}
