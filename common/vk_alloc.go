package common

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
)

// This Code section contains allocation helper functions. It aims to simplify the allocation of buffers and
// images on the selected device.

type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	Size      vk.DeviceSize
	Usage     vk.BufferUsageFlags
	props     vk.MemoryPropertyFlags
}

func CreateBuffer(dc *Device, size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*Buffer, error) {
	// Buffer Handle of fitting Size
	bufferInfo := vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Size:                  size,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
	}
	buf, err := VkCreateBuffer(dc.D, &bufferInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create buffer of %d bytes", size)
	}

	bufRequirements := ReadBufferMemoryRequirements(dc.D, buf)
	memType, err := findMemoryType(dc.PdMemoryProps, bufRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, err
	}

	// Allocate device memory
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	deviceMem, err := VkAllocateMemory(dc.D, &allocInfo, nil)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, errors.Wrap(err, "failed to allocate buffer memory")
	}

	// Associate allocated memory with buffer Handle
	if err = VkBindBufferMemory(dc.D, buf, deviceMem, 0); err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		vk.FreeMemory(dc.D, deviceMem, nil)
		return nil, errors.Wrap(err, "failed to bind device memory to buffer")
	}

	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		Size:      size,
		Usage:     usage,
		props:     props,
	}, nil
}

// CopyToDeviceBuffer is a convenience method to simplify the process of mapping device memory to CPU memory,
// copy bytes over to the GPU and unmapping the memory again. This requires the buffer to:
// - be: vk.MemoryPropertyHostVisibleBit and vk.MemoryPropertyHostCoherentBit
// - have exactly len(payload) bytes
func CopyToDeviceBuffer(dc *Device, deviceBuf *Buffer, payload []byte) error {
	hostVisCoh := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	if deviceBuf.props&hostVisCoh != hostVisCoh {
		return errors.New("buffer memory is not host visible and coherent")
	}
	if deviceBuf.Size != vk.DeviceSize(len(payload)) {
		return errors.Errorf("buffer size %d does not match payload size %d", deviceBuf.Size, len(payload))
	}
	// Map -> copy -> Unmap
	pData, err := VkMapMemory(dc.D, deviceBuf.DeviceMem, 0, deviceBuf.Size, 0)
	if err != nil {
		return errors.Wrap(err, "failed to map device memory")
	}
	vk.Memcopy(pData, payload)
	vk.UnmapMemory(dc.D, deviceBuf.DeviceMem)
	return nil
}

func (b *Buffer) Destroy(dc *Device) {
	vk.DestroyBuffer(dc.D, b.Handle, nil)
	vk.FreeMemory(dc.D, b.DeviceMem, nil)
}

// Image bundles a 2D image with its memory and a full size view.
type Image struct {
	Handle    vk.Image
	DeviceMem vk.DeviceMemory
	View      vk.ImageView
	Format    vk.Format
	Width     uint32
	Height    uint32
}

func CreateImage(dc *Device, w uint32, h uint32, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags, aspect vk.ImageAspectFlags) (*Image, error) {
	imageInfo := &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		PNext:     nil,
		Flags:     0,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  w,
			Height: h,
			Depth:  1,
		},
		MipLevels:             1,
		ArrayLayers:           1,
		Samples:               vk.SampleCount1Bit,
		Tiling:                tiling,
		Usage:                 usage,
		SharingMode:           vk.SharingModeExclusive,
		QueueFamilyIndexCount: 0,
		PQueueFamilyIndices:   nil,
		InitialLayout:         vk.ImageLayoutUndefined,
	}
	img, err := VkCreateImage(dc.D, imageInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %dx%d image", w, h)
	}

	memRequirements := ReadImageMemoryRequirements(dc.D, img)
	memType, err := findMemoryType(dc.PdMemoryProps, memRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, err
	}
	allocInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           nil,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memType,
	}
	imgMemory, err := VkAllocateMemory(dc.D, allocInfo, nil)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, errors.Wrap(err, "failed to allocate image device memory")
	}
	if err = vk.Error(vk.BindImageMemory(dc.D, img, imgMemory, 0)); err != nil {
		vk.DestroyImage(dc.D, img, nil)
		vk.FreeMemory(dc.D, imgMemory, nil)
		return nil, errors.Wrap(err, "failed to bind image memory")
	}
	view, err := CreateImageView(dc, img, format, aspect)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		vk.FreeMemory(dc.D, imgMemory, nil)
		return nil, err
	}
	return &Image{
		Handle:    img,
		DeviceMem: imgMemory,
		View:      view,
		Format:    format,
		Width:     w,
		Height:    h,
	}, nil
}

func (img *Image) Destroy(dc *Device) {
	vk.DestroyImageView(dc.D, img.View, nil)
	vk.DestroyImage(dc.D, img.Handle, nil)
	vk.FreeMemory(dc.D, img.DeviceMem, nil)
}

func CreateImageView(dc *Device, image vk.Image, format vk.Format, aspectFlags vk.ImageAspectFlags) (vk.ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		PNext:    nil,
		Flags:    0,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	imgView, err := VkCreateImageView(dc.D, createInfo, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create image view")
	}
	return imgView, nil
}

// findMemoryType picks the first memory type allowed by typeFilter that has all of propFlags.
func findMemoryType(memProps vk.PhysicalDeviceMemoryProperties, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		ofType := (typeFilter & (1 << i)) > 0
		hasProperties := memProps.MemoryTypes[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			return i, nil
		}
	}
	return 0, errors.Errorf("no memory type matches filter %032b with properties %b", typeFilter, propFlags)
}
