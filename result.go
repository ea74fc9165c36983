package pixcc

import (
	"strconv"
	"strings"
	"time"
)

// Analysis implements interface Resulter.
// Defines color frequency profile of an image and its renderings.
type Analysis struct {
	Source           string
	Width            int
	Height           int
	TotalPixels      int
	UniqueColorCount int
	TopColors        TopColors

	// PNG encoded images. QuantizedImage and WhiteImage are nil in ModeMetrics.
	OriginalImage  []byte
	QuantizedImage []byte
	WhiteImage     []byte

	Duration time.Duration
}

// Result returns a string in CSV format:
// "source",width,height,total_pixels,unique_colors,"#hex count pct;#hex count pct".
func (r *Analysis) Result() string {

	var sb strings.Builder
	sb.Grow(64 + len(r.Source) + len(r.TopColors)*24)

	sb.WriteString(csvQuote(r.Source))
	for _, v := range [...]int{r.Width, r.Height, r.TotalPixels, r.UniqueColorCount} {
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(v))
	}

	sb.WriteString(",\"")
	for i := range r.TopColors {
		if i > 0 {
			sb.WriteByte(';')
		}
		tc := &r.TopColors[i]
		sb.WriteString(tc.Color.String())
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(tc.Count))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(tc.Percentage, 'f', 2, 64))
	}
	sb.WriteString("\"\n")

	return sb.String()
}

// Header returns header in CSV format.
func (r *Analysis) Header() string {
	return "\"source\",\"width\",\"height\",\"total_pixels\",\"unique_colors\",\"top_colors\"\n"
}

func csvQuote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
}
