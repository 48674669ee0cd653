package standard

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	svgo "github.com/ajstarks/svgo"
	"github.com/pkg/errors"

	"github.com/Mictilt/qrforge/writer/standard/imgkit"
)

// Format is the serialization of an Artifact.
type Format uint8

const (
	// FormatPNG as default output file format.
	FormatPNG Format = iota
	// FormatJPEG is lossy and has no alpha channel.
	FormatJPEG
	// FormatSVG is a vector document.
	FormatSVG
)

// Kind separates pixel output from vector output.
type Kind uint8

const (
	KindRaster Kind = iota
	KindVector
)

func (k Kind) String() string {
	if k == KindVector {
		return "vector"
	}
	return "raster"
}

var ErrUnknownFormat = errors.New("standard: unknown format")

// ParseFormat accepts "png", "jpeg"/"jpg" and "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "svg":
		return FormatSVG, nil
	}
	return FormatPNG, errors.Wrapf(ErrUnknownFormat, "%q", s)
}

func (f Format) Kind() Kind {
	if f == FormatSVG {
		return KindVector
	}
	return KindRaster
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatSVG:
		return "svg"
	}
	return "png"
}

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatSVG:
		return "svg"
	}
	return "png"
}

// ImageEncoder is an interface which describes the rule how to encode image.Image into io.Writer
type ImageEncoder interface {
	// Encode specify which format to encode image into io.Writer.
	Encode(w io.Writer, img image.Image) error
}

type pngEncoder struct{}

func (pngEncoder) Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// jpegEncoder flattens alpha onto white first, JPEG has no alpha channel.
type jpegEncoder struct{}

func (jpegEncoder) Encode(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, imgkit.Flatten(img, color.White), &jpeg.Options{Quality: 92})
}

func encoderFor(f Format) ImageEncoder {
	if f == FormatJPEG {
		return jpegEncoder{}
	}
	return pngEncoder{}
}

// svgRecorder records drawing operations and writes each filled path to an
// svgo canvas, so shapes draw the same way on both backends.
type svgRecorder struct {
	canvas *svgo.SVG
	path   []string
	fill   string
}

func newSVGRecorder(canvas *svgo.SVG) *svgRecorder {
	return &svgRecorder{canvas: canvas, fill: "#000000"}
}

func (r *svgRecorder) MoveTo(x, y float64) {
	r.path = append(r.path, fmt.Sprintf("M%.2f %.2f", x, y))
}

func (r *svgRecorder) LineTo(x, y float64) {
	r.path = append(r.path, fmt.Sprintf("L%.2f %.2f", x, y))
}

func (r *svgRecorder) QuadraticTo(cx, cy, x, y float64) {
	r.path = append(r.path, fmt.Sprintf("Q%.2f %.2f %.2f %.2f", cx, cy, x, y))
}

func (r *svgRecorder) ClosePath() {
	r.path = append(r.path, "Z")
}

func (r *svgRecorder) DrawCircle(cx, cy, radius float64) {
	r.path = append(r.path, circlePath(cx, cy, radius))
}

func (r *svgRecorder) DrawRectangle(x, y, w, h float64) {
	r.path = append(r.path,
		fmt.Sprintf("M%.2f %.2f L%.2f %.2f L%.2f %.2f L%.2f %.2f Z",
			x, y, x+w, y, x+w, y+h, x, y+h))
}

func (r *svgRecorder) SetColor(c color.Color) {
	r.fill = hexColor(c)
}

func (r *svgRecorder) Fill() {
	if len(r.path) == 0 {
		return
	}
	r.canvas.Path(strings.Join(r.path, " "), "fill:"+r.fill)
	r.path = nil
}

func circlePath(cx, cy, radius float64) string {
	return fmt.Sprintf("M%.2f %.2f A%.2f %.2f 0 1 1 %.2f %.2f A%.2f %.2f 0 1 1 %.2f %.2f Z",
		cx+radius, cy, radius, radius, cx-radius, cy, radius, radius, cx+radius, cy)
}

func hexColor(c color.Color) string {
	if c == nil {
		return "none"
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}
