package pixcc

import (
	"image"
	"image/color"
)

// Image is a width x height grid of RGB pixels in row-major order.
// len(Pix) == Width*Height.
type Image struct {
	Width  int
	Height int
	Pix    []RGB
}

// NewImage returns black image of given size.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]RGB, width*height)}
}

// Len returns amount of pixels.
func (im *Image) Len() int {
	return len(im.Pix)
}

// ColorModel implements image.Image.
func (im *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (im *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.Width, im.Height)
}

// At implements image.Image.
func (im *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= im.Width || y >= im.Height {
		return color.NRGBA{}
	}
	return im.Pix[y*im.Width+x]
}

// Opaque reports that every pixel is fully opaque. Used by image/png to
// pick a truecolor encoding without alpha channel.
func (im *Image) Opaque() bool {
	return true
}

// RGBA returns copy of the image as *image.RGBA.
func (im *Image) RGBA() *image.RGBA {
	dst := image.NewRGBA(im.Bounds())
	for i, c := range im.Pix {
		p := dst.Pix[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = c.R(), c.G(), c.B(), 0xFF
	}
	return dst
}
