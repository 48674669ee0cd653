package qrforge

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankGrid(n int) [][]bool {
	g := make([][]bool, n)
	for i := range g {
		g[i] = make([]bool, n)
	}
	return g
}

func Test_NewMatrix(t *testing.T) {
	_, err := NewMatrix(nil)
	assert.True(t, errors.Is(err, ErrMatrixNotSquare))

	g := blankGrid(21)
	g[3] = make([]bool, 20)
	_, err = NewMatrix(g)
	assert.True(t, errors.Is(err, ErrMatrixNotSquare))

	g = blankGrid(21)
	g[0][5] = true
	m, err := NewMatrix(g)
	require.NoError(t, err)
	assert.Equal(t, 21, m.Size())
	assert.True(t, m.At(5, 0))
	assert.False(t, m.At(0, 5))
	assert.False(t, m.At(-1, 0))
	assert.False(t, m.At(21, 0))

	// the source slice is copied
	g[0][5] = false
	assert.True(t, m.At(5, 0))
}

func Test_Matrix_Validate(t *testing.T) {
	for _, n := range []int{1, 19, 20, 22} {
		m, err := NewMatrix(blankGrid(n))
		require.NoError(t, err)
		assert.True(t, errors.Is(m.Validate(), ErrMatrixTooSmall), "size %d", n)
	}

	m, err := NewMatrix(blankGrid(25))
	require.NoError(t, err)
	assert.NoError(t, m.Validate())

	var nilMatrix *Matrix
	assert.Error(t, nilMatrix.Validate())
}

func Test_Matrix_Region(t *testing.T) {
	m, err := NewMatrix(blankGrid(25))
	require.NoError(t, err)

	cases := []struct {
		x, y int
		want RegionKind
	}{
		{0, 0, RegionFinderEye},
		{6, 6, RegionFinderEye},
		{7, 7, RegionData},
		{7, 0, RegionData},
		{18, 0, RegionFinderEye},
		{24, 6, RegionFinderEye},
		{17, 0, RegionData},
		{0, 18, RegionFinderEye},
		{6, 24, RegionFinderEye},
		{18, 18, RegionData},
		{12, 12, RegionData},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, m.Region(c.x, c.y), "(%d,%d)", c.x, c.y)
	}

	x, y := m.EyeOrigin(EyeTopRight)
	assert.Equal(t, [2]int{18, 0}, [2]int{x, y})
	x, y = m.EyeOrigin(EyeBottomLeft)
	assert.Equal(t, [2]int{0, 18}, [2]int{x, y})
}

func Test_Matrix_EqualAndBitmap(t *testing.T) {
	g := blankGrid(21)
	g[10][11] = true
	a, _ := NewMatrix(g)
	b, _ := NewMatrix(a.Bitmap())
	assert.True(t, a.Equal(b))

	bm := a.Bitmap()
	bm[10][11] = false
	assert.True(t, a.At(11, 10), "Bitmap must hand out a copy")

	c, _ := NewMatrix(bm)
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))

	count := 0
	a.Iterate(func(x, y int, set bool, _ RegionKind) {
		if set {
			count++
			assert.Equal(t, 11, x)
			assert.Equal(t, 10, y)
		}
	})
	assert.Equal(t, 1, count)
}
