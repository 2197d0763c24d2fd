package compliance

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imagepkg "github.com/youruser/storeassets/internal/image"
)

func opaqueImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestInspect(t *testing.T) {
	cases := []struct {
		name string
		img  image.Image
		want Report
	}{
		{
			name: "valid screenshot",
			img:  opaqueImage(640, 400),
			want: Report{Size: image.Pt(640, 400), Mode: "RGB", SizeOK: true, ModeOK: true, Allowed: ScreenshotSizes},
		},
		{
			name: "off by one",
			img:  opaqueImage(641, 400),
			want: Report{Size: image.Pt(641, 400), Mode: "RGB", SizeOK: false, ModeOK: true, Allowed: ScreenshotSizes},
		},
		{
			name: "alpha channel",
			img:  image.NewNRGBA(image.Rect(0, 0, 1280, 800)),
			want: Report{Size: image.Pt(1280, 800), Mode: "RGBA", SizeOK: true, ModeOK: false, Allowed: ScreenshotSizes},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Inspect(imagepkg.NewRaster(tc.img), ScreenshotSizes)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInspectDoesNotMutate(t *testing.T) {
	img := opaqueImage(4, 4)
	before := append([]uint8(nil), img.Pix...)
	Inspect(imagepkg.NewRaster(img), ScreenshotSizes)
	assert.Equal(t, before, img.Pix)
}

func TestInspectFiles(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "home.png", opaqueImage(1280, 800))
	wrong := writePNG(t, dir, "login.png", opaqueImage(641, 400))
	alpha := image.NewNRGBA(image.Rect(0, 0, 640, 400))
	alpha.SetNRGBA(0, 0, color.NRGBA{A: 10})
	translucent := writePNG(t, dir, "alpha.png", alpha)
	missing := filepath.Join(dir, "missing.png")

	s := InspectFiles([]string{good, wrong, translucent, missing}, ScreenshotSizes)
	require.Len(t, s.Reports, 4)

	assert.True(t, s.Reports[0].OK())
	assert.False(t, s.Reports[1].SizeOK)
	assert.True(t, s.Reports[1].ModeOK)
	assert.True(t, s.Reports[2].SizeOK)
	assert.False(t, s.Reports[2].ModeOK)
	assert.True(t, errors.Is(s.Reports[3].Err, imagepkg.ErrSourceNotFound))
	assert.False(t, s.Reports[3].OK())

	assert.False(t, s.OK())
	assert.Equal(t, 3, s.Failed())

	var out bytes.Buffer
	require.NoError(t, s.WriteText(&out))
	text := out.String()
	assert.Contains(t, text, "File: "+good)
	assert.Contains(t, text, "✅ Size OK.")
	assert.Contains(t, text, "❌ INVALID SIZE! Expected 1280x800 or 640x400.")
	assert.Contains(t, text, "❌ HAS ALPHA CHANNEL")
	assert.Contains(t, text, "File "+missing+" not found.")
	assert.Contains(t, text, "3 of 4 file(s) failed.")
}

func TestSummaryAllPass(t *testing.T) {
	dir := t.TempDir()
	s := InspectFiles([]string{writePNG(t, dir, "tile.png", opaqueImage(440, 280))}, TileSizes)
	assert.True(t, s.OK())

	var out bytes.Buffer
	require.NoError(t, s.WriteText(&out))
	assert.Contains(t, out.String(), "All 1 file(s) passed.")
}

func TestParseSizes(t *testing.T) {
	got, err := ParseSizes("1280x800, 640X400")
	require.NoError(t, err)
	assert.Equal(t, []Size{{1280, 800}, {640, 400}}, got)

	for _, bad := range []string{"1280", "ax800", "0x10", "10x-1"} {
		_, err := ParseSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestInspectPalettedTransparency(t *testing.T) {
	dir := t.TempDir()
	pal := image.NewPaletted(image.Rect(0, 0, 640, 400), color.Palette{color.White, color.Transparent})
	path := writePNG(t, dir, "paletted.png", pal)

	s := InspectFiles([]string{path}, ScreenshotSizes)
	require.Len(t, s.Reports, 1)
	r := s.Reports[0]
	assert.Equal(t, "P", r.Mode)
	assert.True(t, r.SizeOK)
	assert.False(t, r.ModeOK)

	var out bytes.Buffer
	require.NoError(t, s.WriteText(&out))
	assert.Contains(t, out.String(), "Palette transparency counts as alpha")
	assert.NotContains(t, out.String(), "HAS ALPHA CHANNEL")
}
