package job

import (
	imagepkg "github.com/youruser/storeassets/internal/image"
)

// Job composes its layers, in order, onto a fresh canvas and writes the
// result to Output.
type Job struct {
	Name      string
	Canvas    imagepkg.CanvasSpec
	Layers    []Layer
	Output    string
	Resampler imagepkg.Resampler
}

// Layer is one source pasted onto the canvas.
type Layer struct {
	Source string
	Fit    imagepkg.FitSpec
	Anchor imagepkg.AnchorSpec
}
