package renderer

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	com "vulkan_mesh_demo/common"
)

// These functions auxiliary functions that abstract from the raw Vulkan API by assuming some reasonable
// defaults where possible. These differ from the VKS function in vk_simplifications.go by being tied to a given
// Core Struct and are closer to helper function in the class than being a general abstraction of the API.

// singleTimeCommands records into a fresh command buffer via record and executes it on the graphics queue,
// blocking until the queue is idle.
func (c *Core) singleTimeCommands(record func(cmdBuf vk.CommandBuffer) error) error {
	cmdBuf, err := com.VKSBeginSingleTimeCommands(c.device.D, c.commandPool)
	if err != nil {
		return err
	}
	if err := record(cmdBuf); err != nil {
		vk.EndCommandBuffer(cmdBuf)
		vk.FreeCommandBuffers(c.device.D, c.commandPool, 1, []vk.CommandBuffer{cmdBuf})
		return err
	}
	return com.VKSEndSingleTimeCommands(c.device.D, c.commandPool, c.device.GraphicsQ, cmdBuf)
}

// copyBuffer is a subroutine that prepares a command buffer that is then executed on the device.
// The command buffer is allocated, records the copy command and is submitted to the device. After idle
// the command buffer is freed.
func (c *Core) copyBuffer(src *com.Buffer, dst *com.Buffer, s vk.DeviceSize) error {
	return c.singleTimeCommands(func(cmdBuf vk.CommandBuffer) error {
		copyRegions := []vk.BufferCopy{
			{
				SrcOffset: 0,
				DstOffset: 0,
				Size:      s,
			},
		}
		vk.CmdCopyBuffer(cmdBuf, src.Handle, dst.Handle, 1, copyRegions)
		return nil
	})
}

// uploadBuffer moves payload into a new device local buffer through a host visible staging buffer.
func (c *Core) uploadBuffer(payload []byte, usage vk.BufferUsageFlagBits) (*com.Buffer, error) {
	size := vk.DeviceSize(len(payload))
	stgBuf, err := com.CreateBuffer(
		c.device,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create staging buffer")
	}
	defer stgBuf.Destroy(c.device)

	if err := com.CopyToDeviceBuffer(c.device, stgBuf, payload); err != nil {
		return nil, err
	}

	buf, err := com.CreateBuffer(
		c.device,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit|usage),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, err
	}
	if err := c.copyBuffer(stgBuf, buf, size); err != nil {
		buf.Destroy(c.device)
		return nil, errors.Wrap(err, "failed to copy staging buffer")
	}
	return buf, nil
}

// layoutTransition describes the access masks and pipeline stages of one supported image layout change.
type layoutTransition struct {
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

func transitionFor(old vk.ImageLayout, new vk.ImageLayout) (layoutTransition, error) {
	switch {
	case old == vk.ImageLayoutUndefined && new == vk.ImageLayoutTransferDstOptimal:
		return layoutTransition{
			dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, nil
	case old == vk.ImageLayoutTransferDstOptimal && new == vk.ImageLayoutShaderReadOnlyOptimal:
		return layoutTransition{
			srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, nil
	case old == vk.ImageLayoutUndefined && new == vk.ImageLayoutDepthStencilAttachmentOptimal:
		return layoutTransition{
			dstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		}, nil
	}
	return layoutTransition{}, errors.Errorf("unsupported image layout transition %d -> %d", old, new)
}

func aspectFor(format vk.Format, layout vk.ImageLayout) vk.ImageAspectFlags {
	if layout != vk.ImageLayoutDepthStencilAttachmentOptimal {
		return vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
	if hasStencilComponent(format) {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
}

func (c *Core) transitionImageLayout(img vk.Image, format vk.Format, old vk.ImageLayout, new vk.ImageLayout) error {
	tr, err := transitionFor(old, new)
	if err != nil {
		return err
	}
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		PNext:               nil,
		SrcAccessMask:       tr.srcAccess,
		DstAccessMask:       tr.dstAccess,
		OldLayout:           old,
		NewLayout:           new,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFor(format, new),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	return c.singleTimeCommands(func(cmdBuf vk.CommandBuffer) error {
		vk.CmdPipelineBarrier(
			cmdBuf,
			tr.srcStage, tr.dstStage,
			0,
			0, nil,
			0, nil,
			1, []vk.ImageMemoryBarrier{barrier},
		)
		return nil
	})
}

func (c *Core) copyBufferToImage(buffer vk.Buffer, img vk.Image, w uint32, h uint32) error {
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: vk.Extent3D{
			Width:  w,
			Height: h,
			Depth:  1,
		},
	}
	return c.singleTimeCommands(func(cmdBuf vk.CommandBuffer) error {
		vk.CmdCopyBufferToImage(cmdBuf, buffer, img, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
		return nil
	})
}
