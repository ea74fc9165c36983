package pixcc

import (
	"slices"
)

// CounterSort counts distinct colors sorting flattened pixel sequence and
// walking through runs of equal values. Needs one extra copy of the pixels
// but no hashing, cost is O(n log n) regardless of amount of distinct colors.
type CounterSort struct {
}

// NewCounterSort returns CounterSort instance.
func NewCounterSort() *CounterSort {
	return &CounterSort{}
}

// Count implements interface Counter.
func (cc *CounterSort) Count(img *Image) Histogram {

	// RGB is uint32, so sorting uses the fast ordered path.
	keys := slices.Clone(img.Pix)
	slices.Sort(keys)

	hist := make(Histogram, 0, 256)
	for i := 0; i < len(keys); {
		j := i + 1
		for j < len(keys) && keys[j] == keys[i] {
			j++
		}
		hist = append(hist, ColorCount{Color: keys[i], Count: j - i})
		i = j
	}

	return hist
}
