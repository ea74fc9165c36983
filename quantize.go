package pixcc

// Quantize maps every pixel of img to the nearest color of palette (squared
// euclidean distance). Palette is expected in rank order: on equal distance
// the color with lower index wins, running best is replaced only by a strictly
// smaller distance. Returns quantized image and per pixel distance to the
// chosen color. Palette must not be empty.
func Quantize(img *Image, palette []RGB) (*Image, []int) {

	out := NewImage(img.Width, img.Height)
	dist := make([]int, len(img.Pix))

	// neighbouring pixels often share color, last answer is reused.
	var (
		prev     RGB
		prevBest RGB
		prevDist = -1
	)

	for i, c := range img.Pix {
		if prevDist >= 0 && c == prev {
			out.Pix[i], dist[i] = prevBest, prevDist
			continue
		}

		best, bestDist := palette[0], c.DistanceSq(palette[0])
		for _, p := range palette[1:] {
			if d := c.DistanceSq(p); d < bestDist {
				best, bestDist = p, d
			}
		}

		out.Pix[i], dist[i] = best, bestDist
		prev, prevBest, prevDist = c, best, bestDist
	}

	return out, dist
}

// Mask returns copy of img where every pixel with zero distance to its nearest
// top color (it equals one of them exactly) is replaced by White.
func Mask(img *Image, dist []int) *Image {

	out := NewImage(img.Width, img.Height)
	for i, c := range img.Pix {
		if dist[i] == 0 {
			out.Pix[i] = White
			continue
		}
		out.Pix[i] = c
	}

	return out
}
