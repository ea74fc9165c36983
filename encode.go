package pixcc

import (
	"bytes"
	"image"
	"image/png"
)

// Encode serializes image to PNG. PNG keeps exact pixel values and output is
// byte identical for the same input and compression level.
func Encode(img image.Image, level png.CompressionLevel) ([]byte, error) {

	if im, ok := img.(*Image); ok {
		// image/png has fast path for *image.RGBA.
		img = im.RGBA()
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
