package common

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulkan_mesh_demo/frame"
)

func TestSelectSwapPresentMode(t *testing.T) {
	cases := []struct {
		name  string
		modes []vk.PresentMode
		want  vk.PresentMode
	}{
		{"mailbox preferred", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{"immediate next", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}, vk.PresentModeImmediate},
		{"fifo fallback", []vk.PresentMode{vk.PresentModeFifoRelaxed}, vk.PresentModeFifo},
		{"nothing reported", nil, vk.PresentModeFifo},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, selectSwapPresentMode(c.modes))
		})
	}
}

func TestSelectSwapSurfaceFormat(t *testing.T) {
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	f, err := selectSwapSurfaceFormat([]vk.SurfaceFormat{unorm, srgb}, vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	require.NoError(t, err)
	assert.Equal(t, srgb, f)

	f, err = selectSwapSurfaceFormat([]vk.SurfaceFormat{unorm}, vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	require.NoError(t, err)
	assert.Equal(t, unorm, f)

	_, err = selectSwapSurfaceFormat(nil, vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	assert.Error(t, err)
}

func TestSelectSwapExtent(t *testing.T) {
	defined := vk.SurfaceCapabilities{CurrentExtent: vk.Extent2D{Width: 640, Height: 480}}
	assert.Equal(t, frame.Extent{Width: 640, Height: 480}, selectSwapExtent(defined, frame.Extent{Width: 800, Height: 800}))

	minimized := vk.SurfaceCapabilities{CurrentExtent: vk.Extent2D{}}
	assert.True(t, selectSwapExtent(minimized, frame.Extent{Width: 800, Height: 800}).IsZero())

	free := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: undefinedExtent, Height: undefinedExtent},
		MinImageExtent: vk.Extent2D{Width: 16, Height: 16},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 2048},
	}
	assert.Equal(t, frame.Extent{Width: 800, Height: 600}, selectSwapExtent(free, frame.Extent{Width: 800, Height: 600}))
	assert.Equal(t, frame.Extent{Width: 16, Height: 2048}, selectSwapExtent(free, frame.Extent{Width: 1, Height: 9000}))
}

func TestSelectImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), selectImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}))
	assert.Equal(t, uint32(3), selectImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), selectImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
}
