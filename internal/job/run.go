package job

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/pkg/errors"

	imagepkg "github.com/youruser/storeassets/internal/image"
)

// Loader resolves a layer source into a raster.
type Loader interface {
	Load(ctx context.Context, source string) (*imagepkg.Raster, error)
}

// Warning is a recovered per-source failure.
type Warning struct {
	Source string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Source, w.Err)
}

// Placement records where a layer ended up on the canvas, before clipping.
type Placement struct {
	Source string
	Rect   image.Rectangle
}

// Result describes the outcome of one job.
type Result struct {
	Job      string
	Output   string
	Warnings []Warning
	Placed   []Placement
	Err      error
}

// Render composes j without writing it. Missing or undecodable sources are
// skipped with a warning; any other failure aborts the job.
func Render(ctx context.Context, j Job, loader Loader) (*imagepkg.Canvas, Result, error) {
	res := Result{Job: j.Name, Output: j.Output}
	canvas, err := imagepkg.NewCanvas(j.Canvas)
	if err != nil {
		return nil, res, errors.Wrapf(err, "%s", j.Name)
	}

	for _, l := range j.Layers {
		if err := ctx.Err(); err != nil {
			return nil, res, err
		}
		src, err := loader.Load(ctx, l.Source)
		if err != nil {
			if errors.Is(err, imagepkg.ErrSourceNotFound) || errors.Is(err, imagepkg.ErrDecodeFailure) {
				log.Printf("warning: %s: skipping %s: %v", j.Name, l.Source, err)
				res.Warnings = append(res.Warnings, Warning{Source: l.Source, Err: err})
				continue
			}
			return nil, res, errors.Wrapf(err, "%s: %s", j.Name, l.Source)
		}
		resized, err := imagepkg.Resize(src, l.Fit, j.Resampler)
		if err != nil {
			return nil, res, errors.Wrapf(err, "%s: %s", j.Name, l.Source)
		}
		at := imagepkg.Position(resized.Width(), resized.Height(), l.Anchor, j.Canvas)
		canvas.Paste(resized, at)
		res.Placed = append(res.Placed, Placement{
			Source: l.Source,
			Rect:   image.Rectangle{Min: at, Max: at.Add(resized.Size())},
		})
	}
	return canvas, res, nil
}

// Run renders j and writes the canvas to j.Output.
func Run(ctx context.Context, j Job, loader Loader) Result {
	canvas, res, err := Render(ctx, j, loader)
	if err != nil {
		res.Err = err
		log.Printf("error: %v", err)
		return res
	}
	if err := imagepkg.WritePNG(j.Output, canvas.Image()); err != nil {
		res.Err = errors.Wrapf(err, "%s", j.Name)
		log.Printf("error: %v", res.Err)
		return res
	}
	log.Printf("Generated: %s", j.Output)
	return res
}

// RunAll runs the jobs one after another. A failed job does not stop the
// ones after it.
func RunAll(ctx context.Context, jobs []Job, loader Loader) []Result {
	out := make([]Result, 0, len(jobs))
	for _, j := range jobs {
		if ctx.Err() != nil {
			out = append(out, Result{Job: j.Name, Output: j.Output, Err: ctx.Err()})
			continue
		}
		out = append(out, Run(ctx, j, loader))
	}
	return out
}

// Failed counts results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
