package imagepkg

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// FitSpec decides the size a source is scaled to before placement.
// Implementations are TargetHeight and MaxBox.
type FitSpec interface {
	ratio(w, h int) float64
	String() string
}

// TargetHeight scales the source so that its height becomes H.
type TargetHeight struct {
	H int
}

// MaxBox scales the source to fit inside W x H, keeping its aspect ratio.
type MaxBox struct {
	W, H int
}

func (f TargetHeight) ratio(_, h int) float64 {
	return float64(f.H) / float64(h)
}

func (f MaxBox) ratio(w, h int) float64 {
	return math.Min(float64(f.W)/float64(w), float64(f.H)/float64(h))
}

func (f TargetHeight) String() string { return fmt.Sprintf("height=%d", f.H) }
func (f MaxBox) String() string       { return fmt.Sprintf("max=%dx%d", f.W, f.H) }

// Resampler selects the resize engine. Both engines use a Lanczos kernel.
type Resampler string

const (
	ResamplerImaging Resampler = "imaging"
	ResamplerNfnt    Resampler = "nfnt"
)

// ParseResampler maps a configuration value to a Resampler; the empty
// string selects the default engine.
func ParseResampler(s string) (Resampler, error) {
	switch Resampler(s) {
	case "", ResamplerImaging:
		return ResamplerImaging, nil
	case ResamplerNfnt:
		return ResamplerNfnt, nil
	}
	return "", errors.Errorf("unknown resampler %q", s)
}

// FitSize computes the output size of a w x h source under fit. Both
// dimensions are floored independently from the same ratio, so the result
// never overflows the requested bounds.
func FitSize(w, h int, fit FitSpec) (int, int, error) {
	if w < 1 || h < 1 {
		return 0, 0, errors.Wrapf(ErrInvalidDimension, "source is %dx%d", w, h)
	}
	switch f := fit.(type) {
	case TargetHeight:
		if f.H < 1 {
			return 0, 0, errors.Wrapf(ErrInvalidDimension, "target height %d", f.H)
		}
	case MaxBox:
		if f.W < 1 || f.H < 1 {
			return 0, 0, errors.Wrapf(ErrInvalidDimension, "box %dx%d", f.W, f.H)
		}
	case nil:
		return 0, 0, errors.New("no fit given")
	}
	r := fit.ratio(w, h)
	nw := int(math.Floor(float64(w) * r))
	nh := int(math.Floor(float64(h) * r))
	if nw < 1 || nh < 1 {
		return 0, 0, errors.Wrapf(ErrInvalidDimension, "%dx%d scaled by %s gives %dx%d", w, h, fit, nw, nh)
	}
	return nw, nh, nil
}

// Resize returns a new raster scaled according to fit. The result keeps the
// source mode.
func Resize(src *Raster, fit FitSpec, engine Resampler) (*Raster, error) {
	nw, nh, err := FitSize(src.Width(), src.Height(), fit)
	if err != nil {
		return nil, err
	}

	var out image.Image
	switch engine {
	case ResamplerNfnt:
		out = resize.Resize(uint(nw), uint(nh), src.Image(), resize.Lanczos3)
	default:
		out = imaging.Resize(src.Image(), nw, nh, imaging.Lanczos)
	}

	if _, ok := src.Mode().(Transparent); ok {
		return &Raster{img: out, mode: Transparent{Mask: alphaMask(out)}}, nil
	}
	return &Raster{img: out, mode: Opaque{}}, nil
}
