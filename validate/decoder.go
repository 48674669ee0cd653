package validate

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/Mictilt/qrforge/writer/standard"
	"github.com/Mictilt/qrforge/writer/standard/imgkit"
)

// ErrDecode wraps every failure to read content back from an image.
var ErrDecode = errors.New("validate: could not decode")

// Decoder reads the content back out of a rendered artifact.
type Decoder interface {
	Decode(ctx context.Context, a *standard.Artifact) (string, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, a *standard.Artifact) (string, error)

func (f DecoderFunc) Decode(ctx context.Context, a *standard.Artifact) (string, error) {
	return f(ctx, a)
}

const (
	// modulePx is the module size images are normalised to before decoding.
	modulePx = 4
	// marginModules of white are added around the image, the renderer only
	// leaves one.
	marginModules = 3
	// threshold splits dark from light in images of unknown module size.
	threshold = 128
)

// ZXingDecoder decodes with the gozxing QR reader. Vector artifacts are
// rasterised with oksvg first.
type ZXingDecoder struct{}

func NewZXingDecoder() ZXingDecoder {
	return ZXingDecoder{}
}

func (d ZXingDecoder) Decode(ctx context.Context, a *standard.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a == nil {
		return "", errors.Wrap(ErrDecode, "no artifact")
	}

	img, err := rasterize(a)
	if err != nil {
		return "", errors.Wrap(ErrDecode, err.Error())
	}
	return d.decode(ctx, normalize(img, a.CellSize()))
}

// DecodeImage decodes an arbitrary image, such as a file from disk. Its module
// size is unknown so it is thresholded to black and white and given a margin.
func (d ZXingDecoder) DecodeImage(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.decode(ctx, normalize(img, 0))
}

func (d ZXingDecoder) decode(ctx context.Context, img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", errors.Wrap(ErrDecode, err.Error())
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	res, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", errors.Wrap(ErrDecode, err.Error())
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}
	return res.GetText(), nil
}

func rasterize(a *standard.Artifact) (image.Image, error) {
	if a.Kind() == standard.KindRaster {
		return imgkit.Read(bytes.NewReader(a.Bytes()))
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(a.Bytes()), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Wrap(err, "parse svg")
	}

	w, h := a.Width(), a.Height()
	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return rgba, nil
}

// normalize converts to grey over white and, when the module size is known,
// area-downsamples to about modulePx per module. That closes the gaps the
// module padding leaves, which the binarizer would otherwise read as light
// modules. Without a module size the image is thresholded instead, which
// drops gradients and anti-aliased edges. A white margin is added last.
func normalize(img image.Image, cell float64) *image.Gray {
	var gray *image.Gray
	if cell > 0 {
		gray = imgkit.Gray(img)
	} else {
		gray = imgkit.Binaryzation(img, threshold)
	}
	b := gray.Bounds()

	var src image.Image = gray
	margin := marginModules * modulePx
	if cell > modulePx {
		scale := modulePx / cell
		w := int(math.Round(float64(b.Dx()) * scale))
		h := int(math.Round(float64(b.Dy()) * scale))
		src = imgkit.Scale(gray, image.Rect(0, 0, w, h), draw.BiLinear)
	} else if cell > 0 {
		margin = int(math.Ceil(marginModules * cell))
	}

	sb := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, sb.Dx()+2*margin, sb.Dy()+2*margin))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, sb.Sub(sb.Min).Add(image.Pt(margin, margin)), src, sb.Min, draw.Over)
	return out
}
