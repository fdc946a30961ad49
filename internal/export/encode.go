// Package export writes rendered frames to disk as numbered image files.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// ErrFormat is returned for an unknown frame format.
var ErrFormat = errors.New("export: unsupported format")

// Encoder writes one image.
type Encoder func(w io.Writer, img image.Image) error

var encoders = map[string]Encoder{
	"webp": func(w io.Writer, img image.Image) error { return nativewebp.Encode(w, img, nil) },
	"png":  png.Encode,
	"tga":  tga.Encode,
}

// EncoderFor returns the encoder for format.
func EncoderFor(format string) (Encoder, error) {
	enc, ok := encoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	return enc, nil
}
