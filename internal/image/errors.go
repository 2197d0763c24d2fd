package imagepkg

import "github.com/pkg/errors"

var (
	// ErrSourceNotFound is returned when a layer source does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrDecodeFailure is returned when a source exists but cannot be decoded.
	ErrDecodeFailure = errors.New("cannot decode source")
	// ErrInvalidDimension is returned when a fit would produce an image
	// smaller than one pixel in either axis.
	ErrInvalidDimension = errors.New("invalid dimension")
)
