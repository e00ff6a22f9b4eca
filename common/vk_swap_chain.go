package common

import (
	"log"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"vulkan_mesh_demo/frame"
)

// undefinedExtent marks a surface whose size is decided by the swap chain rather than the window system.
const undefinedExtent = 0xFFFFFFFF

// SwapChain is one generation of presentable images. Recreate builds the next generation, the caller retires the
// old one with Destroy once nothing refers to it anymore.
type SwapChain struct {
	dc  *Device
	win *Window

	Handle      vk.Swapchain
	Generation  int
	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extend      vk.Extent2D

	Images   []vk.Image
	ImgViews []vk.ImageView
}

var _ frame.Swapchain = (*SwapChain)(nil)

func NewSwapChain(dc *Device, w *Window) (*SwapChain, error) {
	return createSwapChain(dc, w, w.Size(), nil, 0)
}

func (sc *SwapChain) Extent() frame.Extent {
	return frame.Extent{Width: sc.Extend.Width, Height: sc.Extend.Height}
}

func (sc *SwapChain) ImageCount() int {
	return len(sc.Images)
}

// AcquireNextImage blocks until an image is available. The returned future owns the semaphore that is signalled
// once the image may be rendered to.
func (sc *SwapChain) AcquireNextImage() (frame.Acquisition, error) {
	sem, err := sc.dc.Sync.Semaphore()
	if err != nil {
		return frame.Acquisition{}, err
	}
	var imgIdx uint32
	result := vk.AcquireNextImage(sc.dc.D, sc.Handle, vk.MaxUint64, sem, nil, &imgIdx)
	acq := frame.Acquisition{ImageIndex: imgIdx}
	switch result {
	case vk.Success:
	case vk.Suboptimal:
		acq.Suboptimal = true
	case vk.ErrorOutOfDate:
		sc.dc.Sync.PutSemaphore(sem)
		return frame.Acquisition{}, errors.Wrap(frame.ErrOutOfDate, "vkAcquireNextImageKHR")
	default:
		sc.dc.Sync.PutSemaphore(sem)
		return frame.Acquisition{}, errors.Wrap(vk.Error(result), "vkAcquireNextImageKHR")
	}
	acq.Future = &AcquireFuture{sync: sc.dc.Sync, queue: sc.dc.GraphicsQ, semaphore: sem}
	return acq, nil
}

// Recreate waits for the device to idle and builds a swap chain for size, passing the current handle as the old
// swap chain. A surface that currently has no area yields frame.ErrUnsupportedDimensions.
func (sc *SwapChain) Recreate(size frame.Extent) (frame.Swapchain, error) {
	if err := vk.Error(vk.DeviceWaitIdle(sc.dc.D)); err != nil {
		return nil, errors.Wrap(err, "vkDeviceWaitIdle")
	}
	sc.dc.Sync.DestroyRetired()
	next, err := createSwapChain(sc.dc, sc.win, size, sc.Handle, sc.Generation+1)
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (sc *SwapChain) Destroy() {
	for i := range sc.ImgViews {
		vk.DestroyImageView(sc.dc.D, sc.ImgViews[i], nil)
	}
	vk.DestroySwapchain(sc.dc.D, sc.Handle, nil)
	sc.ImgViews = nil
	sc.Images = nil
}

func createSwapChain(dc *Device, w *Window, size frame.Extent, old vk.Swapchain, generation int) (*SwapChain, error) {
	details, err := ReadSwapChainSupportDetails(dc.PD, w.Surf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read surface capabilities")
	}
	extent := selectSwapExtent(details.Capabilities, size)
	if extent.IsZero() {
		return nil, errors.Wrapf(frame.ErrUnsupportedDimensions, "surface extent %s", extent)
	}
	format, err := selectSwapSurfaceFormat(details.Formats, vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	if err != nil {
		return nil, err
	}
	sc := &SwapChain{
		dc:          dc,
		win:         w,
		Generation:  generation,
		Format:      format,
		PresentMode: selectSwapPresentMode(details.PresentModes),
		Extend:      vk.Extent2D{Width: extent.Width, Height: extent.Height},
	}

	// Depending on whether our queue families are the same for graphics and presentation, we need to choose different
	// swap chain configurations: https://vulkan-tutorial.com/Drawing_a_triangle/Presentation/Swap_chain
	sharingMode := vk.SharingModeExclusive
	var qFamIndices []uint32
	if !dc.QFamilies.IsShared() {
		sharingMode = vk.SharingModeConcurrent
		qFamIndices = dc.QFamilies.UniqueIndices()
	}

	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Surface:               w.Surf,
		MinImageCount:         selectImageCount(details.Capabilities),
		ImageFormat:           sc.Format.Format,
		ImageColorSpace:       sc.Format.ColorSpace,
		ImageExtent:           sc.Extend,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(qFamIndices)),
		PQueueFamilyIndices:   qFamIndices,
		PreTransform:          details.Capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          old,
	}
	sc.Handle, err = VkCreateSwapChain(dc.D, createInfo, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create swap chain")
	}

	sc.Images = ReadSwapChainImages(dc.D, sc.Handle)
	sc.ImgViews = make([]vk.ImageView, 0, len(sc.Images))
	for i := range sc.Images {
		view, err := CreateImageView(dc, sc.Images[i], sc.Format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			sc.Destroy()
			return nil, err
		}
		sc.ImgViews = append(sc.ImgViews, view)
	}
	log.Printf("Created swap chain generation %d: %s, %d images, present mode %s",
		sc.Generation, sc.Extent(), len(sc.Images), toStringPresentMode(sc.PresentMode))
	return sc, nil
}

type SwapChainDetails struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func selectSwapSurfaceFormat(formats []vk.SurfaceFormat, desiredFormat vk.Format, desiredColorSpace vk.ColorSpace) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, errors.New("surface reports no formats")
	}
	for _, af := range formats {
		if af.Format == desiredFormat && af.ColorSpace == desiredColorSpace {
			return af, nil
		}
	}
	log.Printf("Did not find preferred SurfaceFormat, selecting first one available. (%v)", formats[0])
	return formats[0], nil
}

// selectSwapPresentMode prefers mailbox, then immediate. FIFO is always available.
func selectSwapPresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, desired := range []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeImmediate} {
		for _, pm := range modes {
			if pm == desired {
				return pm
			}
		}
	}
	return vk.PresentModeFifo
}

// selectSwapExtent uses the surface's current extent when it is defined, otherwise the window size clamped to
// what the surface supports.
func selectSwapExtent(caps vk.SurfaceCapabilities, size frame.Extent) frame.Extent {
	if caps.CurrentExtent.Width != undefinedExtent {
		return frame.Extent{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height}
	}
	return frame.Extent{
		Width:  clamp(size.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(size.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// selectImageCount asks for one image more than the minimum, a max of 0 means unlimited.
func selectImageCount(caps vk.SurfaceCapabilities) uint32 {
	imgCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imgCount > caps.MaxImageCount {
		imgCount = caps.MaxImageCount
	}
	return imgCount
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
