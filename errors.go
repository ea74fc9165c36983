package pixcc

import "errors"

var (
	// ErrMediaIsEmpty is returned when size of image payload is equal to zero.
	ErrMediaIsEmpty = errors.New("media is empty")

	// ErrMediaTooLarge is returned when image payload exceeds configured size limit.
	ErrMediaTooLarge = errors.New("media is too large")

	// ErrMediaNotImage is returned when declared content type is not image/*.
	ErrMediaNotImage = errors.New("media is not an image")

	// ErrZeroArea is returned when decoded image has no pixels.
	ErrZeroArea = errors.New("image has zero area")

	// ErrTooManyPixels is returned when image dimensions exceed configured pixel limit.
	ErrTooManyPixels = errors.New("image has too many pixels")

	// ErrEmptyPalette is returned when there are no top colors to quantize to.
	ErrEmptyPalette = errors.New("palette is empty")
)

// DecodeError is returned when input bytes are not a recognized or valid raster image.
// Retrying makes no sense, input is malformed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "image could not be decoded [" + e.Err.Error() + "]"
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ProcessingError is returned when counting, ranking, quantization or encoding fails.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return e.Stage + " failed [" + e.Err.Error() + "]"
}

func (e *ProcessingError) Unwrap() error { return e.Err }
