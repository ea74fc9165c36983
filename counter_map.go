package pixcc

import (
	"cmp"
	"slices"
)

// CounterMap counts distinct colors using hash map. Works faster than
// CounterSort on images with few distinct colors, but consumes more memory
// on photos with hundreds thousands of them.
type CounterMap struct {
}

// NewCounterMap returns CounterMap instance.
func NewCounterMap() *CounterMap {
	return &CounterMap{}
}

// Count implements interface Counter.
func (cc *CounterMap) Count(img *Image) Histogram {

	var (
		// stored as RGB(uint32) instead of [3]byte, because
		// map uses special fast hash algo for uint32.
		color = make(map[RGB]int, 10000)
	)

	for _, c := range img.Pix {
		color[c]++
	}

	hist := make(Histogram, 0, len(color))
	for c, cnt := range color {
		hist = append(hist, ColorCount{Color: c, Count: cnt})
	}

	// map iteration order is random, histogram order must be the same as CounterSort produces.
	slices.SortFunc(hist, func(a, b ColorCount) int {
		return cmp.Compare(a.Color, b.Color)
	})

	return hist
}
