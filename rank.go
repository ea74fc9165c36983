package pixcc

import (
	"sort"
	"strconv"
)

// DefaultTopK defines default amount of top colors to keep.
const DefaultTopK = 10

// ColorCount is a color paired with amount of pixels bearing it.
type ColorCount struct {
	Color RGB
	Count int
}

// Histogram holds distinct colors of an image in ascending RGB order.
type Histogram []ColorCount

// Total returns sum of all counts.
func (h Histogram) Total() int {
	total := 0
	for i := range h {
		total += h[i].Count
	}
	return total
}

// RankedColor is a ColorCount with its 0-based rank and share of the image.
type RankedColor struct {
	ColorCount
	Rank int
	// Percentage is Count/total*100 rounded to 2 decimal places, exact halves to even.
	Percentage float64
}

// TopColor is a rendering record of RankedColor.
type TopColor struct {
	Hex        string  `json:"hex"`
	RGB        string  `json:"rgb"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Record returns rendering record of the color.
func (rc RankedColor) Record() TopColor {
	return TopColor{
		Hex:        rc.Color.String(),
		RGB:        rc.Color.Text(),
		Count:      rc.Count,
		Percentage: rc.Percentage,
	}
}

// TopColors is ordered by non-increasing count.
type TopColors []RankedColor

// Palette returns colors in rank order.
func (tc TopColors) Palette() []RGB {
	pal := make([]RGB, len(tc))
	for i := range tc {
		pal[i] = tc[i].Color
	}
	return pal
}

// Records returns rendering records in rank order.
func (tc TopColors) Records() []TopColor {
	rec := make([]TopColor, len(tc))
	for i := range tc {
		rec[i] = tc[i].Record()
	}
	return rec
}

// Rank returns min(k, len(h)) most frequent colors. Colors with equal count keep
// histogram order, which is ascending RGB for both counters. If k <= 0,
// DefaultTopK is used.
func Rank(h Histogram, total int, k int) TopColors {

	if k <= 0 {
		k = DefaultTopK
	}

	sorted := make(Histogram, len(h))
	copy(sorted, h)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	n := min(k, len(sorted))
	top := make(TopColors, n)
	for i := 0; i < n; i++ {
		top[i] = RankedColor{
			ColorCount: sorted[i],
			Rank:       i,
			Percentage: percentage(sorted[i].Count, total),
		}
	}
	return top
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	// formatting rounds the exact binary value, halves to even.
	pct, _ := strconv.ParseFloat(strconv.FormatFloat(float64(count)/float64(total)*100, 'f', 2, 64), 64)
	return pct
}
