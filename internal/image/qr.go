package imagepkg

import (
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// GenerateQR renders text as an opaque QR code of size x size pixels.
func GenerateQR(text string, size int) (*Raster, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, errors.Wrapf(ErrDecodeFailure, "qr %q: %v", text, err)
	}
	return NewRaster(q.Image(size)), nil
}
