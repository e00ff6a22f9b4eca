package renderer

import (
	"log"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/loov/hrtime"
	"github.com/pkg/errors"

	com "vulkan_mesh_demo/common"
	"vulkan_mesh_demo/config"
	"vulkan_mesh_demo/frame"
	"vulkan_mesh_demo/model"
)

// Core owns every long lived Vulkan object of the demo and implements frame.Renderer. The per frame state
// (swap chain generation, framebuffers, in-flight future) lives in the frame.Loop it drives.
type Core struct {
	cfg config.Config

	// OS/Window level
	Win    *com.Window
	device *com.Device

	// Drawing infrastructure level
	renderPass          vk.RenderPass
	depthFormat         vk.Format
	descriptorSetLayout vk.DescriptorSetLayout
	pipelineLayout      vk.PipelineLayout
	pipelines           []vk.Pipeline
	commandPool         vk.CommandPool

	// Data level
	model          *model.Model
	texture        *com.Image
	textureSampler vk.Sampler
	provisioner    *DescriptorProvisioner

	loop  *frame.Loop
	start time.Duration
}

var _ frame.Renderer = (*Core)(nil)

// NewRenderCore sets up the window, device, pipeline and all static resources described by cfg. Setup failures
// panic with context, the same way the individual create steps do.
func NewRenderCore(cfg config.Config) *Core {
	c := &Core{cfg: cfg}
	c.Initialize()
	return c
}

func (c *Core) Initialize() {
	c.Win = com.NewWindow(c.cfg.Title, c.cfg.Width, c.cfg.Height, c.cfg.Validation)
	c.device = com.NewDevice(c.Win)
	log.Printf("Selected device:\n%s", com.ToStringPhysicalDeviceTable(c.device.PdProps, com.ReadQueueFamilies(c.device.PD)))

	swapChain, err := com.NewSwapChain(c.device, c.Win)
	if err != nil {
		log.Panicf("Failed to create swap chain: %+v", err)
	}

	c.createDepthFormat()
	c.createRenderPass(swapChain.Format.Format)
	c.createDescriptorSetLayout()
	c.createGraphicsPipeline()
	c.createCommandPool()

	c.createTexture()
	c.createTextureSampler()
	c.createModel()

	c.provisioner = NewDescriptorProvisioner(c.device, c.descriptorSetLayout, c.texture.View, c.textureSampler)

	c.start = hrtime.Now()
	c.loop, err = frame.NewLoop(c, c.Win, swapChain, c.cfg.Aspect(), c.elapsed)
	if err != nil {
		swapChain.Destroy()
		log.Panicf("Failed to start frame loop: %+v", err)
	}
}

// elapsed is the animation clock fed into every uniform buffer object.
func (c *Core) elapsed() time.Duration {
	return hrtime.Since(c.start)
}

func (c *Core) Destroy() {
	// We need to wait for the last asynchronous call to finish before tear down
	vk.DeviceWaitIdle(c.device.D)
	if c.loop != nil {
		c.loop.Close()
	}

	c.provisioner.Destroy()
	c.model.Destroy(c.device)

	vk.DestroySampler(c.device.D, c.textureSampler, nil)
	c.texture.Destroy(c.device)

	vk.DestroyCommandPool(c.device.D, c.commandPool, nil)
	for i := range c.pipelines {
		vk.DestroyPipeline(c.device.D, c.pipelines[i], nil)
	}
	vk.DestroyPipelineLayout(c.device.D, c.pipelineLayout, nil)
	vk.DestroyDescriptorSetLayout(c.device.D, c.descriptorSetLayout, nil)
	vk.DestroyRenderPass(c.device.D, c.renderPass, nil)

	c.device.Destroy()
	c.Win.Destroy()
}

// createDepthFormat picks the depth attachment format once, the render pass and every framebuffer set use it.
func (c *Core) createDepthFormat() {
	format, ok := c.device.FindSupportedFormat(
		[]vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint},
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
	)
	if !ok {
		log.Panicf("No supported depth format found")
	}
	c.depthFormat = format
}

func hasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

func (c *Core) createCommandPool() {
	commandPool, err := com.VKSCreateCommandPool(
		c.device.D,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
		*c.device.QFamilies.GraphicsFamily,
	)
	if err != nil {
		log.Panicf("Failed to create command pool: %v", err)
	}
	log.Printf("Successfully created command pool")
	c.commandPool = commandPool
}

// swapChainOf unwraps the concrete swap chain handed back by the frame loop.
func swapChainOf(sc frame.Swapchain) (*com.SwapChain, error) {
	swap, ok := sc.(*com.SwapChain)
	if !ok {
		return nil, errors.Errorf("unexpected swap chain type %T", sc)
	}
	return swap, nil
}
