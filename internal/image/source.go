package imagepkg

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"

	"github.com/youruser/storeassets/internal/util"
)

// QRPrefix marks a source that is generated as a QR code of the text
// following the prefix.
const QRPrefix = "qr:"

// SourceLoader turns layer source strings into rasters. Sources are local
// paths, http(s) URLs or QR texts. Every failure except cancellation is
// reported as either ErrSourceNotFound or ErrDecodeFailure.
type SourceLoader struct {
	// AllowLocal permits reading sources from the filesystem.
	AllowLocal bool
	// QRSize is the edge length of generated QR codes before fitting.
	QRSize int
}

// NewSourceLoader returns a loader that accepts every source kind.
func NewSourceLoader() *SourceLoader {
	return &SourceLoader{AllowLocal: true, QRSize: 512}
}

// IsLocalSource reports whether source names a file on disk.
func IsLocalSource(source string) bool {
	return !isURL(source) && !strings.HasPrefix(source, QRPrefix)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (l *SourceLoader) Load(ctx context.Context, source string) (*Raster, error) {
	switch {
	case strings.HasPrefix(source, QRPrefix):
		size := l.QRSize
		if size <= 0 {
			size = 512
		}
		return GenerateQR(strings.TrimPrefix(source, QRPrefix), size)
	case isURL(source):
		return DownloadImage(ctx, source)
	case !l.AllowLocal:
		return nil, errors.Wrapf(ErrSourceNotFound, "%s: local sources are disabled", source)
	}
	return Open(source)
}

// Open decodes the image file at path.
func Open(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrSourceNotFound, path)
		}
		return nil, errors.Wrapf(ErrDecodeFailure, "%s: %v", path, err)
	}
	defer f.Close()
	r, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return r, nil
}

// Decode reads an image in any registered format. EXIF orientation is
// ignored so the pixel grid matches the stored dimensions.
func Decode(rd io.Reader) (*Raster, error) {
	img, err := imaging.Decode(rd)
	if err != nil {
		return nil, errors.Wrapf(ErrDecodeFailure, "%v", err)
	}
	return NewRaster(img), nil
}

// DownloadImage fetches url and decodes the body. Cancellation of ctx is
// returned as is so the caller aborts instead of skipping the source.
func DownloadImage(ctx context.Context, url string) (*Raster, error) {
	body, err := util.GetBytes(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrapf(ErrSourceNotFound, "%s: %v", url, err)
	}
	r, err := Decode(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, url)
	}
	return r, nil
}
