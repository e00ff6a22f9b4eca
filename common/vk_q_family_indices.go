package common

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

type QueueFamilyIndices struct {
	GraphicsFamily *uint32
	PresentFamily  *uint32
}

func findQueueFamilies(pd vk.PhysicalDevice, surf vk.Surface) (*QueueFamilyIndices, error) {
	qFamilies := ReadQueueFamilies(pd)
	return pickQueueFamilies(qFamilies, func(i uint32) bool {
		var presentSupport vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(pd, i, surf, &presentSupport)
		return presentSupport > 0
	})
}

// pickQueueFamilies selects the first graphics capable family and the first family able to present. A family that
// can do both is preferred as long as no earlier one was already chosen.
func pickQueueFamilies(qFamilies []vk.QueueFamilyProperties, canPresent func(uint32) bool) (*QueueFamilyIndices, error) {
	indices := &QueueFamilyIndices{}
	for i := range qFamilies {
		idx := uint32(i)
		if indices.GraphicsFamily == nil && isBitSet(qFamilies[i], vk.QueueGraphicsBit) {
			indices.GraphicsFamily = &idx
		}
		if indices.PresentFamily == nil && canPresent(idx) {
			indices.PresentFamily = &idx
		}
		if indices.isAllQueuesFound() {
			break
		}
	}
	if indices.GraphicsFamily == nil {
		return nil, errors.New("unable to find graphics capable queue family")
	}
	if indices.PresentFamily == nil {
		return nil, errors.New("unable to find present capable queue family for given surface")
	}
	return indices, nil
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit > 0
}

func (q *QueueFamilyIndices) isAllQueuesFound() bool {
	return q.GraphicsFamily != nil && q.PresentFamily != nil
}

// IsShared reports whether graphics and presentation use the same family.
func (q *QueueFamilyIndices) IsShared() bool {
	return *q.GraphicsFamily == *q.PresentFamily
}

// UniqueIndices lists each family once, graphics first.
func (q *QueueFamilyIndices) UniqueIndices() []uint32 {
	if q.IsShared() {
		return []uint32{*q.GraphicsFamily}
	}
	return []uint32{*q.GraphicsFamily, *q.PresentFamily}
}

func (q *QueueFamilyIndices) toQueueCreateInfos() []vk.DeviceQueueCreateInfo {
	uniqIndices := q.UniqueIndices()
	infos := make([]vk.DeviceQueueCreateInfo, len(uniqIndices))
	for i := range uniqIndices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			PNext:            nil,
			Flags:            0,
			QueueFamilyIndex: uniqIndices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}
