package imagepkg

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// CanvasSpec describes a fresh compositing surface.
type CanvasSpec struct {
	Width      int
	Height     int
	Background color.NRGBA
}

func (s CanvasSpec) Validate() error {
	if s.Width < 1 || s.Height < 1 {
		return errors.Wrapf(ErrInvalidDimension, "canvas %dx%d", s.Width, s.Height)
	}
	return nil
}

// Canvas is the only mutable image in a job. Its pixels are always fully
// opaque.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas allocates a canvas filled with the background color.
func NewCanvas(spec CanvasSpec) (*Canvas, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	bg := spec.Background
	bg.A = 0xff
	return &Canvas{img: imaging.New(spec.Width, spec.Height, bg)}, nil
}

func (c *Canvas) Image() *image.NRGBA      { return c.img }
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Paste draws r with its top-left corner at p. Opaque rasters overwrite the
// covered pixels, transparent ones are blended by their own alpha. Anything
// outside the canvas is dropped.
func (c *Canvas) Paste(r *Raster, p image.Point) {
	dst := image.Rectangle{Min: p, Max: p.Add(r.Size())}
	if !dst.Overlaps(c.img.Bounds()) {
		return
	}
	switch r.Mode().(type) {
	case Opaque:
		c.img = imaging.Paste(c.img, r.Image(), p)
	case Transparent:
		// the canvas is opaque, so Overlay reduces to s*a + d*(1-a)
		c.img = imaging.Overlay(c.img, r.Image(), p, 1.0)
	}
}
