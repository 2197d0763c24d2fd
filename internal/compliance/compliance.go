// Package compliance checks finished assets against store listing rules:
// the image must have one of the allowed sizes and no alpha channel.
package compliance

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	imagepkg "github.com/youruser/storeassets/internal/image"
)

// Size is an allowed width x height pair.
type Size struct {
	W, H int
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

var (
	ScreenshotSizes = []Size{{1280, 800}, {640, 400}}
	MarqueeSizes    = []Size{{1400, 560}}
	TileSizes       = []Size{{440, 280}}
)

// ParseSize parses "WxH".
func ParseSize(s string) (Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Size{}, errors.Errorf("size %q: want WxH", s)
	}
	wi, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, errors.Wrapf(err, "size %q", s)
	}
	hi, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, errors.Wrapf(err, "size %q", s)
	}
	if wi < 1 || hi < 1 {
		return Size{}, errors.Errorf("size %q: dimensions must be positive", s)
	}
	return Size{wi, hi}, nil
}

// ParseSizes parses a comma separated list of sizes.
func ParseSizes(list string) ([]Size, error) {
	var out []Size
	for _, f := range strings.Split(list, ",") {
		if strings.TrimSpace(f) == "" {
			continue
		}
		s, err := ParseSize(f)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Report holds the outcome of each check for one file.
type Report struct {
	Path    string      `json:"path,omitempty"`
	Size    image.Point `json:"size"`
	Mode    string      `json:"mode"`
	SizeOK  bool        `json:"size_ok"`
	ModeOK  bool        `json:"mode_ok"`
	Allowed []Size      `json:"allowed"`
	Err     error       `json:"-"`
}

// OK reports whether the file was read and passed every check.
func (r Report) OK() bool {
	return r.Err == nil && r.SizeOK && r.ModeOK
}

// Inspect checks r against the allowed sizes and the no-transparency rule.
func Inspect(r *imagepkg.Raster, allowed []Size) Report {
	rep := Report{
		Size:    r.Size(),
		Mode:    r.Mode().String(),
		Allowed: allowed,
	}
	for _, s := range allowed {
		if s.W == rep.Size.X && s.H == rep.Size.Y {
			rep.SizeOK = true
			break
		}
	}
	_, rep.ModeOK = r.Mode().(imagepkg.Opaque)
	return rep
}

// InspectFile opens path and inspects it. Read failures are recorded in
// the report instead of being returned.
func InspectFile(path string, allowed []Size) Report {
	r, err := imagepkg.Open(path)
	if err != nil {
		return Report{Path: path, Allowed: allowed, Err: err}
	}
	rep := Inspect(r, allowed)
	rep.Path = path
	return rep
}

// Summary aggregates the reports of one inspection run.
type Summary struct {
	Reports []Report
}

// InspectFiles inspects every path in order.
func InspectFiles(paths []string, allowed []Size) Summary {
	var s Summary
	for _, p := range paths {
		s.Reports = append(s.Reports, InspectFile(p, allowed))
	}
	return s
}

func (s Summary) OK() bool {
	for _, r := range s.Reports {
		if !r.OK() {
			return false
		}
	}
	return true
}

// Failed counts the reports that did not pass.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Reports {
		if !r.OK() {
			n++
		}
	}
	return n
}

// WriteText prints a human readable report, one block per file.
func (s Summary) WriteText(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Inspecting images...\n")
	for _, r := range s.Reports {
		writeReport(&b, r)
	}
	if s.OK() {
		fmt.Fprintf(&b, "All %d file(s) passed.\n", len(s.Reports))
	} else {
		fmt.Fprintf(&b, "%d of %d file(s) failed.\n", s.Failed(), len(s.Reports))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeReport(b *strings.Builder, r Report) {
	if r.Err != nil {
		if errors.Is(r.Err, imagepkg.ErrSourceNotFound) {
			fmt.Fprintf(b, "File %s not found.\n", r.Path)
		} else {
			fmt.Fprintf(b, "Error reading %s: %v\n", r.Path, r.Err)
		}
		return
	}
	fmt.Fprintf(b, "File: %s\n", r.Path)
	fmt.Fprintf(b, "  Size: %dx%d\n", r.Size.X, r.Size.Y)
	fmt.Fprintf(b, "  Mode: %s\n", r.Mode)
	if r.SizeOK {
		b.WriteString("  ✅ Size OK.\n")
	} else {
		fmt.Fprintf(b, "  ❌ INVALID SIZE! Expected %s.\n", expected(r.Allowed))
	}
	switch {
	case r.ModeOK:
		b.WriteString("  ✅ Mode OK (No Alpha).\n")
	case r.Mode == "P":
		b.WriteString("  ❌ HAS TRANSPARENT PALETTE ENTRY! Palette transparency counts as alpha; store requires 24-bit (RGB).\n")
	default:
		b.WriteString("  ❌ HAS ALPHA CHANNEL (Transparency)! Store requires 24-bit (RGB).\n")
	}
	b.WriteString(strings.Repeat("-", 20) + "\n")
}

func expected(allowed []Size) string {
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = s.String()
	}
	return strings.Join(names, " or ")
}
