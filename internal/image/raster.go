package imagepkg

import (
	"image"
	"image/color"
)

// Mode tells the compositor how a raster must be pasted. It is either
// Opaque or Transparent; no other implementations exist.
type Mode interface {
	isMode()
	String() string
}

// Opaque rasters overwrite every covered canvas pixel.
type Opaque struct{}

// Transparent rasters carry their alpha channel as a paste mask. Paletted
// is set when the transparency comes from palette entries.
type Transparent struct {
	Mask     *image.Alpha
	Paletted bool
}

func (Opaque) isMode()      {}
func (Transparent) isMode() {}

func (Opaque) String() string      { return "RGB" }
func (t Transparent) String() string {
	if t.Paletted {
		return "P"
	}
	return "RGBA"
}

// Raster is a decoded image together with its mode. Operations on a Raster
// return new values and never modify the wrapped image.
type Raster struct {
	img  image.Image
	mode Mode
}

// NewRaster wraps img and decides its mode from the color model: images
// stored with an alpha channel are Transparent even when every pixel
// happens to be opaque.
func NewRaster(img image.Image) *Raster {
	if hasAlphaChannel(img) {
		_, paletted := img.(*image.Paletted)
		return &Raster{img: img, mode: Transparent{Mask: alphaMask(img), Paletted: paletted}}
	}
	return &Raster{img: img, mode: Opaque{}}
}

func (r *Raster) Image() image.Image { return r.img }
func (r *Raster) Mode() Mode         { return r.mode }
func (r *Raster) Width() int         { return r.img.Bounds().Dx() }
func (r *Raster) Height() int        { return r.img.Bounds().Dy() }

// Size returns the raster dimensions as a point.
func (r *Raster) Size() image.Point { return r.img.Bounds().Size() }

func hasAlphaChannel(img image.Image) bool {
	switch m := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.Alpha, *image.Alpha16:
		return true
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	case interface{ Opaque() bool }:
		return !m.Opaque()
	}
	return true
}

func alphaMask(img image.Image) *image.Alpha {
	b := img.Bounds()
	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			row := n.Pix[y*n.Stride : y*n.Stride+b.Dx()*4]
			for x := 0; x < b.Dx(); x++ {
				mask.Pix[y*mask.Stride+x] = row[x*4+3]
			}
		}
		return mask
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := color.AlphaModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Alpha)
			mask.SetAlpha(x, y, a)
		}
	}
	return mask
}
