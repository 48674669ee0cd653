// Package imgkit holds the small raster helpers shared by the renderer and the
// decoder: grey conversion, scaling, thresholding and alpha flattening.
package imgkit

import (
	"image"
	"image/color"
	"io"

	// register decoders for Read
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Read decodes a PNG or JPEG image from r.
func Read(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "imgkit: decode image")
	}
	return img, nil
}

// Binaryzation process image with threshold value (0-255) and return new image.
func Binaryzation(src image.Image, threshold uint8) *image.Gray {
	gray := Gray(src)
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if gray.GrayAt(x, y).Y > threshold {
				gray.SetGray(x, y, color.Gray{Y: 255})
			} else {
				gray.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return gray
}

// Gray converts src to an 8-bit grey image. Transparent pixels read as white,
// the way a printed code on paper would.
func Gray(src image.Image) *image.Gray {
	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(gray, bounds, src, bounds.Min, draw.Over)
	return gray
}

// Scale resamples src into rect. A nil scaler means ApproxBiLinear.
func Scale(src image.Image, rect image.Rectangle, scale draw.Scaler) image.Image {
	if scale == nil {
		scale = draw.ApproxBiLinear
	}

	dst := image.NewRGBA(rect)
	scale.Scale(dst, rect, src, src.Bounds(), draw.Over, nil)
	return dst
}

// Fit scales src with CatmullRom so that it fits an edge x edge box while
// keeping its aspect ratio. Alpha is preserved.
func Fit(src image.Image, edge int) *image.NRGBA {
	b := src.Bounds()
	sw, sh := float64(b.Dx()), float64(b.Dy())
	if edge < 1 {
		edge = 1
	}

	w, h := edge, edge
	if sw > sh {
		h = int(float64(edge) * sh / sw)
	} else if sh > sw {
		w = int(float64(edge) * sw / sh)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// Flatten composites src over an opaque bg, dropping alpha.
func Flatten(src image.Image, bg color.Color) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Over)
	return dst
}
