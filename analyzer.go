package pixcc

import (
	"fmt"
	"image/png"
	"strings"
	"time"
)

// Mode defines which images are rendered by Analyzer.
type Mode int

const (
	// ModeFull renders original, quantized and white masked images.
	ModeFull Mode = iota
	// ModeMetrics renders original image only.
	ModeMetrics
)

// ParseMode converts mode name ("full", "metrics") to Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return ModeFull, nil
	case "metrics":
		return ModeMetrics, nil
	}
	return ModeFull, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) String() string {
	if m == ModeMetrics {
		return "metrics"
	}
	return "full"
}

// DefaultMaxPixels defines default limit of image area (64 megapixels).
const DefaultMaxPixels = 64 << 20

// ParseCompression converts compression name ("default", "none", "speed", "best")
// to png.CompressionLevel.
func ParseCompression(s string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "speed":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	}
	return png.DefaultCompression, fmt.Errorf("unknown compression %q", s)
}

// Options controls Analyzer.
type Options struct {
	TopK        int                  // amount of top colors, DefaultTopK if <= 0
	Mode        Mode                 // which images are rendered
	Counter     Counter              // CounterSort if nil
	Compression png.CompressionLevel // output PNG compression level
	MaxPixels   int                  // image area limit checked before decoding, 0 disables
}

// Analyzer computes color frequency profile of an image. Analyzer holds no
// mutable state and can be shared by any amount of goroutines.
type Analyzer struct {
	opts Options
}

// NewAnalyzer returns new instance of Analyzer.
func NewAnalyzer(opts Options) *Analyzer {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Counter == nil {
		opts.Counter = NewCounterSort()
	}
	return &Analyzer{opts: opts}
}

// Options returns effective options.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze runs decode → count → rank → quantize, mask → encode over image
// bytes. source is copied into the result as is. Returns *DecodeError if data
// is not a valid image and *ProcessingError if any later stage fails. Partial
// results are never returned.
func (a *Analyzer) Analyze(source string, data []byte) (*Analysis, error) {

	t := time.Now()

	img, err := DecodeLimit(data, a.opts.MaxPixels)
	if err != nil {
		return nil, err
	}

	total := img.Len()
	if total == 0 {
		return nil, &ProcessingError{Stage: "decode", Err: ErrZeroArea}
	}

	hist := a.opts.Counter.Count(img)
	if n := hist.Total(); n != total {
		return nil, &ProcessingError{Stage: "count", Err: fmt.Errorf("counted %d pixels of %d", n, total)}
	}

	top := Rank(hist, total, a.opts.TopK)
	if len(top) == 0 {
		return nil, &ProcessingError{Stage: "rank", Err: ErrEmptyPalette}
	}

	res := &Analysis{
		Source:           source,
		Width:            img.Width,
		Height:           img.Height,
		TotalPixels:      total,
		UniqueColorCount: len(hist),
		TopColors:        top,
	}

	if res.OriginalImage, err = Encode(img, a.opts.Compression); err != nil {
		return nil, &ProcessingError{Stage: "encode original", Err: err}
	}

	if a.opts.Mode == ModeFull {
		quantized, dist := Quantize(img, top.Palette())
		white := Mask(img, dist)

		if res.QuantizedImage, err = Encode(quantized, a.opts.Compression); err != nil {
			return nil, &ProcessingError{Stage: "encode quantized", Err: err}
		}
		if res.WhiteImage, err = Encode(white, a.opts.Compression); err != nil {
			return nil, &ProcessingError{Stage: "encode white", Err: err}
		}
	}

	res.Duration = time.Since(t)
	return res, nil
}

// Analyze analyzes image bytes in ModeFull keeping topK colors.
func Analyze(data []byte, topK int) (*Analysis, error) {
	return NewAnalyzer(Options{TopK: topK}).Analyze("", data)
}
