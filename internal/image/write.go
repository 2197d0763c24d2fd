package imagepkg

import (
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/youruser/storeassets/internal/util"
)

// WritePNG encodes img as PNG at path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if err := util.EnsureParent(path); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding %s", path)
	}
	return f.Close()
}
