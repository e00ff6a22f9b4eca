package common

import (
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntFreeList() (*FreeList[int], *[]int) {
	next := 0
	destroyed := &[]int{}
	return &FreeList[int]{
		create: func() (int, error) {
			next++
			return next, nil
		},
		destroy: func(v int) { *destroyed = append(*destroyed, v) },
	}, destroyed
}

func TestFreeListRecycles(t *testing.T) {
	fl, _ := newIntFreeList()
	a, err := fl.Get()
	require.NoError(t, err)
	b, err := fl.Get()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, fl.Outstanding())

	fl.Put(a)
	c, err := fl.Get()
	require.NoError(t, err)
	assert.Equal(t, a, c)
	assert.Equal(t, 2, fl.created)
}

func TestFreeListBoundedByPeakUse(t *testing.T) {
	fl, _ := newIntFreeList()
	for frame := 0; frame < 100; frame++ {
		x, _ := fl.Get()
		y, _ := fl.Get()
		fl.Put(x)
		fl.Put(y)
	}
	assert.Equal(t, 2, fl.created)
	assert.Equal(t, 0, fl.Outstanding())
}

func TestFreeListDropAndDestroyAll(t *testing.T) {
	fl, destroyed := newIntFreeList()
	a, _ := fl.Get()
	b, _ := fl.Get()
	c, _ := fl.Get()
	fl.Drop(a)
	fl.Put(b)
	assert.Equal(t, []int{a}, *destroyed)
	assert.Equal(t, 1, fl.Outstanding())

	fl.DestroyAll()
	assert.Equal(t, []int{a, b}, *destroyed)
	assert.Equal(t, 1, fl.Outstanding(), "c is still checked out")
	fl.Put(c)
	fl.DestroyAll()
	assert.Equal(t, 0, fl.created)
}

func TestFreeListCreateError(t *testing.T) {
	fl := &FreeList[int]{
		create:  func() (int, error) { return 0, errors.New("out of host memory") },
		destroy: func(int) {},
	}
	_, err := fl.Get()
	assert.Error(t, err)
	assert.Equal(t, 0, fl.created)
}

func TestFreeListRetireKeepsItemsUntilDestroyed(t *testing.T) {
	fl, destroyed := newIntFreeList()
	a, _ := fl.Get()
	b, _ := fl.Get()
	fl.Retire(a)
	assert.Equal(t, 1, fl.Outstanding())
	assert.Empty(t, *destroyed)

	c, _ := fl.Get()
	assert.NotEqual(t, a, c, "retired items are never handed out again")

	fl.DestroyRetired()
	assert.Equal(t, []int{a}, *destroyed)
	fl.Put(b)
	fl.Retire(c)
	fl.DestroyAll()
	assert.Equal(t, []int{a, b, c}, *destroyed)
	assert.Equal(t, 0, fl.created)
}

// fakeHandles stand in for semaphores, they are only compared and never passed to the driver.
var fakeHandles [8]byte

func newTestSyncPool(drainErr error) (*SyncPool, *int, *int) {
	created, destroyed := 0, 0
	p := &SyncPool{
		semaphores: NewFreeList(
			func() (vk.Semaphore, error) {
				s := vk.Semaphore(unsafe.Pointer(&fakeHandles[created]))
				created++
				return s, nil
			},
			func(vk.Semaphore) { destroyed++ },
		),
		drain: func(vk.Queue, vk.Semaphore) error { return drainErr },
	}
	return p, &created, &destroyed
}

func TestDrainSemaphoreRecyclesConsumedSignal(t *testing.T) {
	p, created, destroyed := newTestSyncPool(nil)
	s, err := p.Semaphore()
	require.NoError(t, err)

	p.DrainSemaphore(nil, s)
	assert.Equal(t, 0, p.semaphores.Outstanding())
	assert.Equal(t, 0, *destroyed)

	_, err = p.Semaphore()
	require.NoError(t, err)
	assert.Equal(t, 1, *created, "the drained semaphore is reused")
}

func TestDrainSemaphoreRetiresOnFailure(t *testing.T) {
	p, created, destroyed := newTestSyncPool(errors.New("device lost"))
	s, err := p.Semaphore()
	require.NoError(t, err)

	p.DrainSemaphore(nil, s)
	assert.Equal(t, 0, *destroyed, "a semaphore with a pending signal is not destroyed")
	assert.Len(t, p.semaphores.retired, 1)

	_, err = p.Semaphore()
	require.NoError(t, err)
	assert.Equal(t, 2, *created)

	p.DestroyRetired()
	assert.Equal(t, 1, *destroyed)
	assert.Empty(t, p.semaphores.retired)
}

func TestAcquireFutureDiscardDrainsOnce(t *testing.T) {
	drains := 0
	p, _, _ := newTestSyncPool(nil)
	p.drain = func(vk.Queue, vk.Semaphore) error {
		drains++
		return nil
	}
	s, err := p.Semaphore()
	require.NoError(t, err)
	acq := &AcquireFuture{sync: p, semaphore: s}

	acq.Discard()
	acq.Discard()
	assert.Equal(t, 1, drains)
	assert.Equal(t, 0, p.semaphores.Outstanding())
}
