package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/youruser/storeassets/internal/compliance"
	imagepkg "github.com/youruser/storeassets/internal/image"
	"github.com/youruser/storeassets/internal/job"
)

// Manifest is the job file read by the CLI.
type Manifest struct {
	Resampler  string           `yaml:"resampler"`
	Background string           `yaml:"background"`
	Jobs       []JobConfig      `yaml:"jobs"`
	Compliance ComplianceConfig `yaml:"compliance"`

	// dir is the manifest directory; relative paths resolve against it.
	dir string
}

type JobConfig struct {
	Name   string        `yaml:"name" json:"name"`
	Output string        `yaml:"output" json:"output"`
	Canvas CanvasConfig  `yaml:"canvas" json:"canvas"`
	Layers []LayerConfig `yaml:"layers" json:"layers"`
}

type CanvasConfig struct {
	Width      int    `yaml:"width" json:"width"`
	Height     int    `yaml:"height" json:"height"`
	Background string `yaml:"background" json:"background"`
}

type LayerConfig struct {
	Source string       `yaml:"source" json:"source"`
	Fit    FitConfig    `yaml:"fit" json:"fit"`
	Anchor AnchorConfig `yaml:"anchor" json:"anchor"`
}

// FitConfig sets either Height or both MaxWidth and MaxHeight.
type FitConfig struct {
	Height    int `yaml:"height" json:"height"`
	MaxWidth  int `yaml:"max_width" json:"max_width"`
	MaxHeight int `yaml:"max_height" json:"max_height"`
}

// AnchorConfig places a layer. Half is "left" or "right" and sets X to the
// middle of that half; unset axes are centered on the canvas.
type AnchorConfig struct {
	X    *int   `yaml:"x" json:"x"`
	Y    *int   `yaml:"y" json:"y"`
	Half string `yaml:"half" json:"half"`
}

type ComplianceConfig struct {
	Sizes []string `yaml:"sizes"`
	Files []string `yaml:"files"`
}

const DefaultBackground = "#111827"

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	m.dir = filepath.Dir(path)

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// Validate checks every job and the compliance section.
func (m *Manifest) Validate() error {
	if _, err := imagepkg.ParseResampler(m.Resampler); err != nil {
		return err
	}
	if m.Background != "" {
		if _, err := ParseColor(m.Background); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	}
	names := map[string]bool{}
	for i, j := range m.Jobs {
		if j.Name == "" {
			return fmt.Errorf("jobs[%d]: name is required", i)
		}
		if names[j.Name] {
			return fmt.Errorf("jobs[%d]: duplicate name %q", i, j.Name)
		}
		names[j.Name] = true
		if j.Output == "" {
			return fmt.Errorf("job %s: output is required", j.Name)
		}
		if _, err := j.Job(m.Background, m.Resampler); err != nil {
			return fmt.Errorf("job %s: %w", j.Name, err)
		}
	}
	if _, err := m.ComplianceSizes(); err != nil {
		return fmt.Errorf("compliance: %w", err)
	}
	return nil
}

// BuildJobs converts the manifest into runnable jobs with paths resolved
// against the manifest directory.
func (m *Manifest) BuildJobs() ([]job.Job, error) {
	out := make([]job.Job, 0, len(m.Jobs))
	for _, jc := range m.Jobs {
		j, err := jc.Job(m.Background, m.Resampler)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", jc.Name, err)
		}
		j.Output = m.resolve(j.Output)
		for i := range j.Layers {
			if imagepkg.IsLocalSource(j.Layers[i].Source) {
				j.Layers[i].Source = m.resolve(j.Layers[i].Source)
			}
		}
		out = append(out, j)
	}
	return out, nil
}

// ComplianceSizes returns the configured allow-list, or the store
// screenshot sizes when none is set.
func (m *Manifest) ComplianceSizes() ([]compliance.Size, error) {
	if len(m.Compliance.Sizes) == 0 {
		return compliance.ScreenshotSizes, nil
	}
	return compliance.ParseSizes(strings.Join(m.Compliance.Sizes, ","))
}

// ComplianceFiles returns the files to inspect, resolved.
func (m *Manifest) ComplianceFiles() []string {
	out := make([]string, len(m.Compliance.Files))
	for i, f := range m.Compliance.Files {
		out[i] = m.resolve(f)
	}
	return out
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

// Job converts a single job section. defaultBg applies when the canvas has
// no background of its own.
func (jc JobConfig) Job(defaultBg, resampler string) (job.Job, error) {
	engine, err := imagepkg.ParseResampler(resampler)
	if err != nil {
		return job.Job{}, err
	}
	bgText := jc.Canvas.Background
	if bgText == "" {
		bgText = defaultBg
	}
	if bgText == "" {
		bgText = DefaultBackground
	}
	bg, err := ParseColor(bgText)
	if err != nil {
		return job.Job{}, fmt.Errorf("canvas background: %w", err)
	}
	spec := imagepkg.CanvasSpec{Width: jc.Canvas.Width, Height: jc.Canvas.Height, Background: bg}
	if err := spec.Validate(); err != nil {
		return job.Job{}, err
	}

	j := job.Job{Name: jc.Name, Canvas: spec, Output: jc.Output, Resampler: engine}
	for i, lc := range jc.Layers {
		if lc.Source == "" {
			return job.Job{}, fmt.Errorf("layers[%d]: source is required", i)
		}
		fit, err := lc.Fit.Spec()
		if err != nil {
			return job.Job{}, fmt.Errorf("layers[%d]: %w", i, err)
		}
		anchor, err := lc.Anchor.Spec(spec.Width)
		if err != nil {
			return job.Job{}, fmt.Errorf("layers[%d]: %w", i, err)
		}
		j.Layers = append(j.Layers, job.Layer{Source: lc.Source, Fit: fit, Anchor: anchor})
	}
	return j, nil
}

func (f FitConfig) Spec() (imagepkg.FitSpec, error) {
	box := f.MaxWidth != 0 || f.MaxHeight != 0
	switch {
	case f.Height != 0 && box:
		return nil, fmt.Errorf("fit: height and max box are exclusive")
	case f.Height > 0:
		return imagepkg.TargetHeight{H: f.Height}, nil
	case box && f.MaxWidth > 0 && f.MaxHeight > 0:
		return imagepkg.MaxBox{W: f.MaxWidth, H: f.MaxHeight}, nil
	case box:
		return nil, fmt.Errorf("fit: max_width and max_height must both be positive")
	case f.Height < 0:
		return nil, fmt.Errorf("fit: height must be positive")
	}
	return nil, fmt.Errorf("fit: one of height or max_width/max_height is required")
}

func (a AnchorConfig) Spec(canvasWidth int) (imagepkg.AnchorSpec, error) {
	spec := imagepkg.AnchorSpec{X: a.X, Y: a.Y}
	switch a.Half {
	case "":
	case "left", "right":
		if a.X != nil {
			return spec, fmt.Errorf("anchor: x and half are exclusive")
		}
		half := 0
		if a.Half == "right" {
			half = 1
		}
		spec.X = imagepkg.Half(canvasWidth, half).X
	default:
		return spec, fmt.Errorf("anchor: unknown half %q", a.Half)
	}
	return spec, nil
}

// ParseColor parses "#rgb" or "#rrggbb" into an opaque color.
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("color %q: want #rgb or #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
