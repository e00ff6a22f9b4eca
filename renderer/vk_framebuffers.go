package renderer

import (
	"log"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	com "vulkan_mesh_demo/common"
	"vulkan_mesh_demo/frame"
)

// sharedAttachment is released by every framebuffer of a set and destroyed together with the last one.
type sharedAttachment struct {
	refs    int
	destroy func()
}

func (s *sharedAttachment) acquire() {
	s.refs++
}

func (s *sharedAttachment) release() {
	if s.refs <= 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.destroy()
	}
}

// framebuffer binds one swap chain image view and the depth attachment shared by its set.
type framebuffer struct {
	device *com.Device
	handle vk.Framebuffer
	extent vk.Extent2D
	depth  *sharedAttachment
}

var _ frame.Framebuffer = (*framebuffer)(nil)

func (fb *framebuffer) Extent() frame.Extent {
	return frame.Extent{Width: fb.extent.Width, Height: fb.extent.Height}
}

func (fb *framebuffer) Destroy() {
	if fb.handle == nil {
		return
	}
	vk.DestroyFramebuffer(fb.device.D, fb.handle, nil)
	fb.handle = nil
	fb.depth.release()
}

// BuildFramebuffers creates a fresh depth buffer for sc and one framebuffer per swap chain image.
func (c *Core) BuildFramebuffers(sc frame.Swapchain) ([]frame.Framebuffer, error) {
	swap, err := swapChainOf(sc)
	if err != nil {
		return nil, err
	}

	depthImg, err := com.CreateImage(
		c.device,
		swap.Extend.Width,
		swap.Extend.Height,
		c.depthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create depth buffer")
	}
	depth := &sharedAttachment{destroy: func() { depthImg.Destroy(c.device) }}
	// Held while building so a failure half way still frees the image exactly once
	depth.acquire()
	defer depth.release()

	err = c.transitionImageLayout(depthImg.Handle, c.depthFormat, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
	if err != nil {
		return nil, err
	}

	fbs := make([]frame.Framebuffer, 0, len(swap.ImgViews))
	for i, view := range swap.ImgViews {
		fbInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			PNext:           nil,
			Flags:           0,
			RenderPass:      c.renderPass,
			AttachmentCount: 2,
			PAttachments:    []vk.ImageView{view, depthImg.View},
			Width:           swap.Extend.Width,
			Height:          swap.Extend.Height,
			Layers:          1,
		}
		handle, err := com.VkCreateFrameBuffer(c.device.D, &fbInfo, nil)
		if err != nil {
			for _, fb := range fbs {
				fb.Destroy()
			}
			return nil, errors.Wrapf(err, "failed to create framebuffer %d", i)
		}
		depth.acquire()
		fbs = append(fbs, &framebuffer{
			device: c.device,
			handle: handle,
			extent: swap.Extend,
			depth:  depth,
		})
	}
	log.Printf("Created %d framebuffers (%s) for swap chain generation %d", len(fbs), swap.Extent(), swap.Generation)
	return fbs, nil
}
