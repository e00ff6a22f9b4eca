package renderer

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	com "vulkan_mesh_demo/common"
	"vulkan_mesh_demo/frame"
)

// commandBuffer is a recorded one time submit command buffer plus the frame slot its descriptor set belongs to.
type commandBuffer struct {
	c      *Core
	handle vk.CommandBuffer
	slot   *frameSlot
}

var _ frame.CommandBuffer = (*commandBuffer)(nil)

// Free returns the command buffer and the frame slot. Must only be called once the device is done with both.
func (cb *commandBuffer) Free() {
	if cb.handle != nil {
		vk.FreeCommandBuffers(cb.c.device.D, cb.c.commandPool, 1, []vk.CommandBuffer{cb.handle})
		cb.handle = nil
	}
	if cb.slot != nil {
		cb.c.provisioner.Put(cb.slot)
		cb.slot = nil
	}
}

// Record writes ubo into a free frame slot and records the draw of the model into fb.
func (c *Core) Record(fb frame.Framebuffer, vp frame.Viewport, ubo frame.UniformBufferObject) (frame.CommandBuffer, error) {
	target, ok := fb.(*framebuffer)
	if !ok {
		return nil, errors.Errorf("unexpected framebuffer type %T", fb)
	}
	slot, err := c.provisioner.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to provision frame slot")
	}
	slot.write(ubo)

	buffers, err := com.VKSAllocateCommandBuffersPrimary(c.device.D, c.commandPool, 1)
	if err != nil {
		c.provisioner.Put(slot)
		return nil, errors.Wrap(err, "failed to allocate command buffer")
	}
	cb := &commandBuffer{c: c, handle: buffers[0], slot: slot}
	if err := c.recordDrawCommands(cb.handle, target, vp, slot.set); err != nil {
		cb.Free()
		return nil, err
	}
	return cb, nil
}

func (c *Core) recordDrawCommands(buffer vk.CommandBuffer, fb *framebuffer, vp frame.Viewport, set vk.DescriptorSet) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
		PInheritanceInfo: nil,
	}
	if err := vk.Error(vk.BeginCommandBuffer(buffer, &beginInfo)); err != nil {
		return errors.Wrap(err, "failed to begin recording command buffer")
	}

	renderArea := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: fb.extent,
	}
	clearValues := []vk.ClearValue{
		vk.NewClearValue([]float32{0, 0, 0, 1}), // color
		vk.NewClearDepthStencil(1, 0),           // depth
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		PNext:           nil,
		RenderPass:      c.renderPass,
		Framebuffer:     fb.handle,
		RenderArea:      renderArea,
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)
	vk.CmdBindPipeline(buffer, vk.PipelineBindPointGraphics, c.pipelines[0])

	viewport := []vk.Viewport{
		{
			X:        vp.X,
			Y:        vp.Y,
			Width:    vp.Width,
			Height:   vp.Height,
			MinDepth: vp.MinDepth,
			MaxDepth: vp.MaxDepth,
		},
	}
	vk.CmdSetViewport(buffer, 0, 1, viewport)
	scissor := []vk.Rect2D{renderArea}
	vk.CmdSetScissor(buffer, 0, 1, scissor)

	vertBuffers := []vk.Buffer{c.model.VertexBuffer.Handle}
	offsets := []vk.DeviceSize{0}
	vk.CmdBindVertexBuffers(buffer, 0, uint32(len(vertBuffers)), vertBuffers, offsets)
	vk.CmdBindIndexBuffer(buffer, c.model.IndexBuffer.Handle, 0, vk.IndexTypeUint32)
	vk.CmdBindDescriptorSets(buffer, vk.PipelineBindPointGraphics, c.pipelineLayout, 0, 1, []vk.DescriptorSet{set}, 0, nil)
	vk.CmdDrawIndexed(buffer, c.model.IndexCount(), 1, 0, 0, 0)

	vk.CmdEndRenderPass(buffer)
	if err := vk.Error(vk.EndCommandBuffer(buffer)); err != nil {
		return errors.Wrap(err, "failed to record command buffer")
	}
	return nil
}
