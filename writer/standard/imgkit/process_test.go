package imgkit_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mictilt/qrforge/writer/standard/imgkit"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 20, G: 20, B: 20, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{R: 230, G: 230, B: 230, A: 255})
			}
		}
	}
	return img
}

func Test_Gray(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{A: 255})
	// pixel (1,0) stays fully transparent

	out := imgkit.Gray(src)
	assert.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, uint8(0), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), out.GrayAt(1, 0).Y)
}

func TestBinaryzation(t *testing.T) {
	out := imgkit.Binaryzation(checker(4, 4), 128)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	assert.Equal(t, uint8(0), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), out.GrayAt(1, 0).Y)
}

func TestScale(t *testing.T) {
	out := imgkit.Scale(checker(10, 10), image.Rect(0, 0, 100, 100), nil)
	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())
}

func TestFit(t *testing.T) {
	out := imgkit.Fit(checker(200, 100), 50)
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 25, out.Bounds().Dy())

	out = imgkit.Fit(checker(10, 40), 20)
	assert.Equal(t, 5, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
}

func TestFlatten(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	out := imgkit.Flatten(src, color.White)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(0, 0))
}

func TestRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker(3, 3)))

	img, err := imgkit.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 3), img.Bounds())

	_, err = imgkit.Read(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
