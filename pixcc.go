// Package pixcc computes color frequency profile of raster images: amount of
// pixels and distinct colors, most prevalent colors with their share, image
// quantized to these colors and image with these colors masked by white.
// Package also provides functionality for batch image processing.
package pixcc

import (
	"context"
)

// Resulter is the interface that wraps Result and Header methods.
//
// Result returns string representation of processing result.
//
// Header returns header if output format expects header (e.g. CSV file format).
// If output format does not requires header, method implementation can return
// empty string.
type Resulter interface {
	Result() string
	Header() string
}

// Outputer is the interface that wraps Save and Close method,
//
// Save receives Resulter to be written to the output.
//
// Close flushes output buffer and closes output.
type Outputer interface {
	Save(Resulter) error
	Close() error
}

// ImageStore is the interface that wraps the basic Store method.
//
// Store persists images rendered by Analyzer.
type ImageStore interface {
	Store(*Analysis) error
}

// Counter is the interface that wraps the basic Count method,
//
// Count returns distinct colors of the image with amount of pixels of
// each color. Histogram must be ordered by ascending RGB value, Rank relies
// on this order to break ties.
type Counter interface {
	Count(*Image) Histogram
}

// Inputer is the interface that wraps the basic Next method.
//
// Next returns channel of image locations (URL or file path) read from input.
// Channel closes when input EOF is reached.
type Inputer interface {
	Next() <-chan string
}

// Downloader is the interface that groups methods Download and Next.
//
// Download retrieves image addressed by location and returns it wrapped into Imager.
//
// Next returns channel of Imager downloaded and ready to be processed. Channel
// closes when nothing to download.
type Downloader interface {
	Download(ctx context.Context, location string) (Imager, error)
	Next() <-chan Imager
}

// Imager is the interface that groups methods to deal with
// downloaded image.
//
// Bytes returns downloaded image as []byte.
//
// Reset releases []byte of HTTP Body. Do not call Bytes() after
// calling Reset.
//
// Source returns the URL or file path of downloaded image.
type Imager interface {
	Bytes() []byte
	Reset()
	Source() string
}
