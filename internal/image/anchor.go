package imagepkg

import "image"

// AnchorSpec is the point a resized image is centered on. A nil axis
// centers the image on the whole canvas along that axis.
type AnchorSpec struct {
	X, Y *int
}

// Center anchors on the canvas center.
func Center() AnchorSpec { return AnchorSpec{} }

// At anchors on a fixed point.
func At(x, y int) AnchorSpec { return AnchorSpec{X: &x, Y: &y} }

// Column fixes the horizontal anchor and centers vertically.
func Column(x int) AnchorSpec { return AnchorSpec{X: &x} }

// Half anchors on the midpoint of the left (0) or right (1) half of a
// canvas of the given width, centered vertically.
func Half(canvasWidth, half int) AnchorSpec {
	return Column(canvasWidth/4 + half*(canvasWidth/2))
}

// Position returns the top-left paste origin for a w x h image. Results are
// not clamped; the compositor clips whatever falls outside the canvas.
func Position(w, h int, anchor AnchorSpec, canvas CanvasSpec) image.Point {
	return image.Point{
		X: place(w, anchor.X, canvas.Width),
		Y: place(h, anchor.Y, canvas.Height),
	}
}

func place(size int, anchor *int, extent int) int {
	if anchor == nil {
		return floorDiv(extent-size, 2)
	}
	return *anchor - size/2
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
