package frame

import "fmt"

// Extent is a 2D size in pixels, e.g. of a window or a swapchain image.
type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether the extent has no area, which is the case for minimized windows.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Viewport mirrors the fields of a Vulkan viewport without depending on the bindings.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// FitViewport computes the largest rectangle of the given aspect ratio that fits into extent and
// centers it. Surplus space is left on both sides (pillarbox) or above and below (letterbox).
func FitViewport(extent Extent, ratio float32) Viewport {
	fullW, fullH := float32(extent.Width), float32(extent.Height)
	w, h := fullW, fullH
	if ratio > 0 && h > 0 {
		if w/h > ratio {
			w = ratio * h
		} else {
			h = w / ratio
		}
	}
	return Viewport{
		X:        (fullW - w) / 2,
		Y:        (fullH - h) / 2,
		Width:    w,
		Height:   h,
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// State of the frame loop.
type State int

const (
	Idle State = iota
	ImageAcquired
	Submitted
	SwapchainInvalid
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case ImageAcquired:
		return "ImageAcquired"
	case Submitted:
		return "Submitted"
	case SwapchainInvalid:
		return "SwapchainInvalid"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event is a platform independent input the loop reacts to.
type Event int

const (
	CloseRequested Event = iota
	KeyEscape
	Resized
	Redraw
)

func (e Event) String() string {
	switch e {
	case CloseRequested:
		return "CloseRequested"
	case KeyEscape:
		return "KeyEscape"
	case Resized:
		return "Resized"
	case Redraw:
		return "Redraw"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}
