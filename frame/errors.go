package frame

import "github.com/pkg/errors"

// Recoverable presentation errors. Backends wrap these so callers can match them with errors.Is.
var (
	// ErrOutOfDate is reported when the surface changed and the swapchain no longer matches it.
	ErrOutOfDate = errors.New("swapchain out of date")
	// ErrUnsupportedDimensions is reported when a swapchain cannot be built for the requested
	// size, typically a minimized window with zero area.
	ErrUnsupportedDimensions = errors.New("unsupported swapchain dimensions")
)

// IsRecoverable reports whether err only requires the swapchain to be rebuilt.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrOutOfDate) || errors.Is(err, ErrUnsupportedDimensions)
}
