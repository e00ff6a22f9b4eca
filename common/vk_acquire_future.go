package common

import (
	vk "github.com/goki/vulkan"
)

// AcquireFuture stands for a pending image acquisition. Its semaphore is signalled by the presentation engine and
// is taken over by whichever submission waits on it.
type AcquireFuture struct {
	sync      *SyncPool
	queue     vk.Queue
	semaphore vk.Semaphore
}

// TakeSemaphore transfers ownership of the semaphore to the caller. It returns nil once taken.
func (a *AcquireFuture) TakeSemaphore() vk.Semaphore {
	s := a.semaphore
	a.semaphore = nil
	return s
}

// CleanupFinished is a no-op, an acquisition holds no resources that complete on their own.
func (a *AcquireFuture) CleanupFinished() {}

// Discard drops an acquisition nobody waited on. The presentation engine still signals the semaphore, so the
// signal is consumed on the queue before the semaphore is reused.
func (a *AcquireFuture) Discard() {
	if s := a.TakeSemaphore(); s != nil {
		a.sync.DrainSemaphore(a.queue, s)
	}
}
