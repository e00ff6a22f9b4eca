package renderer

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadTexture decodes an image file into tightly packed RGBA8 pixels. png, jpeg, gif, bmp, tiff and webp are
// recognized by their content.
func LoadTexture(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open texture %s", path)
	}
	defer f.Close()
	img, err := DecodeTexture(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode texture %s", path)
	}
	return img, nil
}

func DecodeTexture(r io.Reader) (*image.RGBA, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	if src.Bounds().Empty() {
		return nil, errors.Errorf("%s image has no area", format)
	}
	return clone.AsRGBA(src), nil
}
