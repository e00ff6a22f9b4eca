package common

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllOfAinB(t *testing.T) {
	assert.True(t, AllOfAinB(nil, []string{"a"}))
	assert.True(t, AllOfAinB([]string{"a", "b"}, []string{"b", "c", "a"}))
	assert.False(t, AllOfAinB([]string{"a", "d"}, []string{"b", "c", "a"}))
}

func TestTerminatedStrs(t *testing.T) {
	in := []string{"VK_KHR_swapchain", "done\x00"}
	out := TerminatedStrs(in)
	assert.Equal(t, []string{"VK_KHR_swapchain\x00", "done\x00"}, out)
	assert.Equal(t, "VK_KHR_swapchain", in[0], "input is left untouched")
	assert.Equal(t, "\x00", TerminatedStr(""))
}

func TestAsUint32Arr(t *testing.T) {
	words := AsUint32Arr([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00, 0xff})
	require.Len(t, words, 2)
	assert.Equal(t, uint32(0x07230203), words[0], "SPIR-V magic number")
	assert.Equal(t, uint32(0x00010000), words[1])
	assert.Nil(t, AsUint32Arr([]byte{1, 2}))
}

func TestRawBytes(t *testing.T) {
	assert.Equal(t, []byte{1, 0, 0, 0, 2, 0, 0, 0}, RawBytes([]uint32{1, 2}))
}

func TestFindMemoryType(t *testing.T) {
	hostVisCoh := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	props := vk.PhysicalDeviceMemoryProperties{MemoryTypeCount: 3}
	props.MemoryTypes[0] = vk.MemoryType{PropertyFlags: deviceLocal}
	props.MemoryTypes[1] = vk.MemoryType{PropertyFlags: hostVisCoh}
	props.MemoryTypes[2] = vk.MemoryType{PropertyFlags: deviceLocal | hostVisCoh}

	idx, err := findMemoryType(props, 0b111, deviceLocal)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)

	idx, err = findMemoryType(props, 0b110, hostVisCoh)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)

	idx, err = findMemoryType(props, 0b101, hostVisCoh)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx, "type 1 is filtered out")

	_, err = findMemoryType(props, 0b001, hostVisCoh)
	assert.Error(t, err)
}

func TestPickQueueFamilies(t *testing.T) {
	graphics := vk.QueueFamilyProperties{QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit)}
	compute := vk.QueueFamilyProperties{QueueFlags: vk.QueueFlags(vk.QueueComputeBit)}

	idx, err := pickQueueFamilies([]vk.QueueFamilyProperties{compute, graphics}, func(i uint32) bool { return i == 1 })
	require.NoError(t, err)
	assert.Equal(t, uint32(1), *idx.GraphicsFamily)
	assert.True(t, idx.IsShared())
	assert.Equal(t, []uint32{1}, idx.UniqueIndices())

	idx, err = pickQueueFamilies([]vk.QueueFamilyProperties{graphics, compute}, func(i uint32) bool { return i == 1 })
	require.NoError(t, err)
	assert.False(t, idx.IsShared())
	assert.Equal(t, []uint32{0, 1}, idx.UniqueIndices())
	assert.Len(t, idx.toQueueCreateInfos(), 2)

	_, err = pickQueueFamilies([]vk.QueueFamilyProperties{compute}, func(uint32) bool { return true })
	assert.Error(t, err)
	_, err = pickQueueFamilies([]vk.QueueFamilyProperties{graphics}, func(uint32) bool { return false })
	assert.Error(t, err)
}

func TestDebugSeverity(t *testing.T) {
	assert.Equal(t, "error", severity(vk.DebugReportFlags(vk.DebugReportErrorBit|vk.DebugReportWarningBit)))
	assert.Equal(t, "warning", severity(vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit)))
	assert.Equal(t, "information", severity(vk.DebugReportFlags(vk.DebugReportInformationBit)))
	assert.Equal(t, "debug", severity(vk.DebugReportFlags(vk.DebugReportDebugBit)))
}

func TestDeviceStrings(t *testing.T) {
	assert.Equal(t, "NVIDIA", asVendorName(0x10DE))
	assert.Equal(t, "unknown", asVendorName(0x1234))
	assert.Equal(t, "discrete Gpu", toStringDeviceType(vk.PhysicalDeviceTypeDiscreteGpu))
	assert.Equal(t, []string{"VK_QUEUE_GRAPHICS_BIT", "VK_QUEUE_TRANSFER_BIT"},
		toStringQueueFlags(vk.QueueFlags(vk.QueueGraphicsBit|vk.QueueTransferBit)))
	assert.Equal(t, "mailbox", toStringPresentMode(vk.PresentModeMailbox))
}
