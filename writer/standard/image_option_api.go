package standard

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"
)

// ImageOption customizes a single Render call.
type ImageOption interface {
	apply(oo *outputImageOptions)
}

type outputImageOptions struct {
	// preview draws a checkerboard under a transparent background.
	preview bool

	format Format

	// logo is drawn inside every logo backdrop when set.
	logo image.Image

	// imageEncoder overrides the raster encoder picked by format.
	imageEncoder ImageEncoder

	// errs collects failures from options that touch the file system.
	errs []error
}

func defaultOutputImageOption() *outputImageOptions {
	return &outputImageOptions{format: FormatPNG}
}

func (oo *outputImageOptions) encoder() ImageEncoder {
	if oo.imageEncoder != nil {
		return oo.imageEncoder
	}
	return encoderFor(oo.format)
}

// funcOption wraps a function that modifies outputImageOptions into an
// implementation of the ImageOption interface.
type funcOption struct {
	f func(oo *outputImageOptions)
}

func (fo *funcOption) apply(oo *outputImageOptions) {
	fo.f(oo)
}

func newFuncOption(f func(oo *outputImageOptions)) *funcOption {
	return &funcOption{
		f: f,
	}
}

// WithPreview paints the 8px checkerboard under a transparent background, the
// way an editor shows transparency. Without it transparent pixels stay
// transparent in the output.
func WithPreview() ImageOption {
	return newFuncOption(func(oo *outputImageOptions) {
		oo.preview = true
	})
}

// WithFormat picks the output serialization, PNG by default.
func WithFormat(f Format) ImageOption {
	return newFuncOption(func(oo *outputImageOptions) {
		oo.format = f
	})
}

// WithLogoImage draws img, scaled to fit, inside each logo backdrop. It has no
// effect when the style carries no logo.
func WithLogoImage(img image.Image) ImageOption {
	return newFuncOption(func(oo *outputImageOptions) {
		if img == nil {
			return
		}

		oo.logo = img
	})
}

// WithLogoImageFileJPEG load image from file, jpeg is required.
func WithLogoImageFileJPEG(f string) ImageOption {
	return newFuncOption(func(oo *outputImageOptions) {
		img, err := readLogo(f, jpeg.Decode)
		if err != nil {
			oo.errs = append(oo.errs, err)
			return
		}

		oo.logo = img
	})
}

// WithLogoImageFilePNG load image from file, PNG is required.
func WithLogoImageFilePNG(f string) ImageOption {
	return newFuncOption(func(oo *outputImageOptions) {
		img, err := readLogo(f, png.Decode)
		if err != nil {
			oo.errs = append(oo.errs, err)
			return
		}

		oo.logo = img
	})
}

func readLogo(f string, decode func(r io.Reader) (image.Image, error)) (image.Image, error) {
	fd, err := os.Open(f)
	if err != nil {
		return nil, errors.Wrapf(err, "open logo %s", f)
	}
	defer fd.Close()

	img, err := decode(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "decode logo %s", f)
	}
	return img, nil
}

// WithCustomImageEncoder to use custom image encoder to encode image.Image into
// io.Writer. It only applies to raster formats.
func WithCustomImageEncoder(encoder ImageEncoder) ImageOption {
	return newFuncOption(func(oo *outputImageOptions) {
		if encoder == nil {
			return
		}

		oo.imageEncoder = encoder
	})
}
