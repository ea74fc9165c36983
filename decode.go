package pixcc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	// registers decoders supported by image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes image of any registered format (png, jpeg, gif, bmp, tiff, webp)
// and converts it to 3 channel RGB. Alpha channel is dropped without premultiplication.
func Decode(data []byte) (*Image, error) {
	return DecodeLimit(data, 0)
}

// DecodeLimit works as Decode, but rejects images of more than maxPixels pixels
// before pixel data is decoded. Dimensions are read from image header, so small
// payload declaring huge image does not allocate memory. Zero maxPixels disables
// the limit.
func DecodeLimit(data []byte, maxPixels int) (*Image, error) {

	if len(data) == 0 {
		return nil, &DecodeError{Err: ErrMediaIsEmpty}
	}

	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
			return nil, &ProcessingError{Stage: "decode",
				Err: fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)}
		}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	return FromImage(src), nil
}

// FromImage converts any image.Image into Image.
func FromImage(src image.Image) *Image {

	bou := src.Bounds()
	width, height := bou.Dx(), bou.Dy()
	img := NewImage(width, height)

	i := 0
	switch s := src.(type) {
	case *image.YCbCr:
		// jpeg.
		for y := bou.Min.Y; y < bou.Max.Y; y++ {
			for x := bou.Min.X; x < bou.Max.X; x++ {
				yi, ci := s.YOffset(x, y), s.COffset(x, y)
				img.Pix[i] = ToRGB(color.YCbCrToRGB(s.Y[yi], s.Cb[ci], s.Cr[ci]))
				i++
			}
		}
	case *image.NRGBA:
		// Pix holds the image's pixels, in R, G, B, A order.
		for y := bou.Min.Y; y < bou.Max.Y; y++ {
			p := s.Pix[s.PixOffset(bou.Min.X, y):]
			for x := 0; x < width; x++ {
				img.Pix[i] = ToRGB(p[x*4], p[x*4+1], p[x*4+2])
				i++
			}
		}
	case *image.RGBA:
		// opaque truecolor png.
		for y := bou.Min.Y; y < bou.Max.Y; y++ {
			p := s.Pix[s.PixOffset(bou.Min.X, y):]
			for x := 0; x < width; x++ {
				if a := p[x*4+3]; a == 0xFF {
					img.Pix[i] = ToRGB(p[x*4], p[x*4+1], p[x*4+2])
				} else {
					img.Pix[i] = toRGB(color.RGBA{R: p[x*4], G: p[x*4+1], B: p[x*4+2], A: a})
				}
				i++
			}
		}
	case *image.Gray:
		for y := bou.Min.Y; y < bou.Max.Y; y++ {
			p := s.Pix[s.PixOffset(bou.Min.X, y):]
			for x := 0; x < width; x++ {
				img.Pix[i] = ToRGB(p[x], p[x], p[x])
				i++
			}
		}
	case *image.Paletted:
		pal := make([]RGB, len(s.Palette))
		for j, c := range s.Palette {
			pal[j] = toRGB(c)
		}
		for y := bou.Min.Y; y < bou.Max.Y; y++ {
			p := s.Pix[s.PixOffset(bou.Min.X, y):]
			for x := 0; x < width; x++ {
				if int(p[x]) < len(pal) {
					img.Pix[i] = pal[p[x]]
				}
				i++
			}
		}
	default:
		for y := bou.Min.Y; y < bou.Max.Y; y++ {
			for x := bou.Min.X; x < bou.Max.X; x++ {
				img.Pix[i] = toRGB(src.At(x, y))
				i++
			}
		}
	}

	return img
}

// toRGB drops alpha channel of the color. Premultiplied colors are
// converted back to straight RGB first.
func toRGB(c color.Color) RGB {
	switch v := c.(type) {
	case RGB:
		return v
	case color.NRGBA:
		return ToRGB(v.R, v.G, v.B)
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return ToRGB(n.R, n.G, n.B)
}
