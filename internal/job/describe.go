package job

import (
	"fmt"
	"strings"

	imagepkg "github.com/youruser/storeassets/internal/image"
)

// Describe renders the plan of a job as text, one line per layer.
func Describe(j Job) string {
	bg := j.Canvas.Background
	lines := []string{
		fmt.Sprintf("# %s -> %s", j.Name, j.Output),
		fmt.Sprintf("canvas %dx%d #%02x%02x%02x", j.Canvas.Width, j.Canvas.Height, bg.R, bg.G, bg.B),
	}
	for i, l := range j.Layers {
		lines = append(lines, fmt.Sprintf("%d. %s fit %s anchor %s", i+1, l.Source, l.Fit, describeAnchor(l.Anchor)))
	}
	return strings.Join(lines, "\n")
}

func describeAnchor(a imagepkg.AnchorSpec) string {
	axis := func(v *int) string {
		if v == nil {
			return "center"
		}
		return fmt.Sprint(*v)
	}
	return fmt.Sprintf("(%s, %s)", axis(a.X), axis(a.Y))
}
