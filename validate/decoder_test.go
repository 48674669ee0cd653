package validate

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/boombuler/barcode"
	bqr "github.com/boombuler/barcode/qr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mictilt/qrforge"
	"github.com/Mictilt/qrforge/style"
	"github.com/Mictilt/qrforge/writer/standard"
)

func Test_ZXingDecoder_DecodeImage(t *testing.T) {
	code, err := bqr.Encode("plain image", bqr.M, bqr.Auto)
	require.NoError(t, err)
	code, err = barcode.Scale(code, 250, 250)
	require.NoError(t, err)

	text, err := NewZXingDecoder().DecodeImage(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, "plain image", text)
}

func Test_ZXingDecoder_Errors(t *testing.T) {
	d := NewZXingDecoder()

	_, err := d.Decode(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrDecode))

	blank := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	_, err = d.DecodeImage(context.Background(), blank)
	assert.True(t, errors.Is(err, ErrDecode))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.DecodeImage(ctx, blank)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_ZXingDecoder_Vector(t *testing.T) {
	const content = "vector artifact"
	m, err := qrforge.BoombulerEncoder{}.Encode(context.Background(), content, qrforge.ECLevelM)
	require.NoError(t, err)

	a, err := standard.Render(m, style.Default(), (m.Size()+2)*10, standard.WithFormat(standard.FormatSVG))
	require.NoError(t, err)

	img, err := rasterize(a)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, a.Width(), a.Height()), img.Bounds())

	// the centre of the top-left eye corner module is dark
	r, g, b, _ := img.At(15, 15).RGBA()
	assert.Less(t, r>>8+g>>8+b>>8, uint32(60))
}

func Test_normalize(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	src.Set(50, 50, color.Black)

	out := normalize(src, 10)
	// 100px at 10px per module is 40px at 4px per module, plus the margin
	want := 40 + 2*marginModules*modulePx
	assert.Equal(t, image.Rect(0, 0, want, want), out.Bounds())
	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y, "transparent reads as white")

	out = normalize(src, 0)
	want = 100 + 2*marginModules*modulePx
	assert.Equal(t, image.Rect(0, 0, want, want), out.Bounds())
}

func Test_normalize_UnknownCellThresholds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	src.Set(2, 2, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	src.Set(3, 3, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	src.Set(4, 4, color.Black)

	m := marginModules * modulePx
	out := normalize(src, 0)
	assert.Equal(t, uint8(0), out.GrayAt(2+m, 2+m).Y, "dark grey becomes black")
	assert.Equal(t, uint8(255), out.GrayAt(3+m, 3+m).Y, "light grey becomes white")
	assert.Equal(t, uint8(0), out.GrayAt(4+m, 4+m).Y)
	assert.Equal(t, uint8(255), out.GrayAt(10+m, 10+m).Y, "transparent reads as white")

	for _, p := range out.Pix {
		assert.Contains(t, []uint8{0, 255}, p)
	}
}

func Test_ZXingDecoder_DecodeImage_Tinted(t *testing.T) {
	code, err := bqr.Encode("tinted image", bqr.M, bqr.Auto)
	require.NoError(t, err)
	code, err = barcode.Scale(code, 200, 200)
	require.NoError(t, err)

	// navy modules on an off-white background
	b := code.Bounds()
	img := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := code.At(x, y).RGBA(); r == 0 {
				img.Set(x, y, color.RGBA{R: 32, G: 48, B: 96, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 230, G: 230, B: 240, A: 255})
			}
		}
	}

	text, err := NewZXingDecoder().DecodeImage(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, "tinted image", text)
}
