package renderer

import (
	"image"
	"log"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	com "vulkan_mesh_demo/common"
)

const textureFormat = vk.FormatR8g8b8a8Srgb

func (c *Core) createTexture() {
	img, err := LoadTexture(c.cfg.Texture)
	if err != nil {
		log.Panicf("Failed to load texture: %+v", err)
	}
	tex, err := c.uploadTexture(img)
	if err != nil {
		log.Panicf("Failed to upload texture %s: %+v", c.cfg.Texture, err)
	}
	log.Printf("Loaded image %s (w: %dp, h:%dp) %d Byte", c.cfg.Texture, tex.Width, tex.Height, len(img.Pix))
	c.texture = tex
}

// uploadTexture copies img into a device local image and leaves it in the shader read only layout.
func (c *Core) uploadTexture(img *image.RGBA) (*com.Image, error) {
	w := uint32(img.Rect.Dx())
	h := uint32(img.Rect.Dy())
	if w == 0 || h == 0 {
		return nil, errors.Errorf("texture has no area (%dx%d)", w, h)
	}
	pixels := img.Pix
	if img.Stride != img.Rect.Dx()*4 {
		pixels = tightPixels(img)
	}
	pixels = pixels[:int(w)*int(h)*4]

	stgBuf, err := com.CreateBuffer(
		c.device,
		vk.DeviceSize(len(pixels)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, err
	}
	defer stgBuf.Destroy(c.device)
	if err := com.CopyToDeviceBuffer(c.device, stgBuf, pixels); err != nil {
		return nil, err
	}

	tex, err := com.CreateImage(
		c.device,
		w,
		h,
		textureFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.ImageAspectFlags(vk.ImageAspectColorBit),
	)
	if err != nil {
		return nil, err
	}

	steps := []func() error{
		func() error {
			return c.transitionImageLayout(tex.Handle, textureFormat, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		},
		func() error { return c.copyBufferToImage(stgBuf.Handle, tex.Handle, w, h) },
		func() error {
			return c.transitionImageLayout(tex.Handle, textureFormat, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			tex.Destroy(c.device)
			return nil, err
		}
	}
	return tex, nil
}

// tightPixels drops the row padding of img, the staging copy expects rows to follow each other directly.
func tightPixels(img *image.RGBA) []byte {
	rowLen := img.Rect.Dx() * 4
	out := make([]byte, 0, rowLen*img.Rect.Dy())
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		start := img.PixOffset(img.Rect.Min.X, y)
		out = append(out, img.Pix[start:start+rowLen]...)
	}
	return out
}

func (c *Core) createTextureSampler() {
	samplerInfo := &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		MipLodBias:              0.0,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           c.device.PdProps.Limits.MaxSamplerAnisotropy,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0.0,
		MaxLod:                  1000.0,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	sampler, err := com.VkCreateSampler(c.device.D, samplerInfo, nil)
	if err != nil {
		log.Panicf("Failed to create texture sampler: %v", err)
	}
	c.textureSampler = sampler
}
