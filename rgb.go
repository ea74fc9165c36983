package pixcc

import (
	"image/color"
	"strconv"
)

// RGB defines structure of Color. Memory representation is 0x00RRGGBB.
type RGB uint32

// White is the color masked pixels are replaced with.
const White RGB = 0xFFFFFF

// ToRGB converts separate 8 bit R, G, B channels into RGB type.
func ToRGB(r, g, b uint8) RGB {
	return RGB(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// R returns red channel.
func (rgb RGB) R() uint8 { return uint8(rgb >> 16) }

// G returns green channel.
func (rgb RGB) G() uint8 { return uint8(rgb >> 8) }

// B returns blue channel.
func (rgb RGB) B() uint8 { return uint8(rgb) }

// String returns string representation of color like #rrggbb.
func (rgb RGB) String() string {
	rgb = (rgb & 0x00FFFFFF) | 0x0F000000
	buf := make([]byte, 0, 8)
	buf = strconv.AppendUint(buf, uint64(rgb), 16)
	buf[0] = '#'
	return string(buf)
}

// Text returns human readable representation of color like rgb(255, 0, 10).
func (rgb RGB) Text() string {
	buf := make([]byte, 0, 18)
	buf = append(buf, "rgb("...)
	buf = strconv.AppendUint(buf, uint64(rgb.R()), 10)
	buf = append(buf, ", "...)
	buf = strconv.AppendUint(buf, uint64(rgb.G()), 10)
	buf = append(buf, ", "...)
	buf = strconv.AppendUint(buf, uint64(rgb.B()), 10)
	buf = append(buf, ')')
	return string(buf)
}

// DistanceSq returns squared euclidean distance between two colors.
// Max value is 3*255^2, computed in int to avoid uint8 overflow.
func (rgb RGB) DistanceSq(o RGB) int {
	dr := int(rgb.R()) - int(o.R())
	dg := int(rgb.G()) - int(o.G())
	db := int(rgb.B()) - int(o.B())
	return dr*dr + dg*dg + db*db
}

// RGBA implements color.Color. Color is always opaque.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: rgb.R(), G: rgb.G(), B: rgb.B(), A: 0xFF}.RGBA()
}
