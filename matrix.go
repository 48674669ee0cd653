// Package qrforge holds the module grid every other package works from: an
// immutable square Matrix tagged with finder-eye regions, the error correction
// levels, and the Encoder adapters that turn content into a Matrix.
package qrforge

import (
	"github.com/pkg/errors"
)

const (
	// MinSize is the side of the smallest symbol (version 1).
	MinSize = 21

	// EyeSize is the side of one finder eye block.
	EyeSize = 7
)

var (
	ErrMatrixNotSquare = errors.New("qrforge: matrix is not square")
	ErrMatrixTooSmall  = errors.New("qrforge: matrix side must be odd and >= 21")
)

// RegionKind tells which structural area a cell belongs to.
type RegionKind uint8

const (
	// RegionData is every cell outside the three finder eyes.
	RegionData RegionKind = iota
	// RegionFinderEye is a cell inside one of the three 7x7 finder blocks.
	RegionFinderEye
)

func (k RegionKind) String() string {
	if k == RegionFinderEye {
		return "finder-eye"
	}
	return "data"
}

// Eye identifies one of the three finder eyes.
type Eye uint8

const (
	EyeTopLeft Eye = iota
	EyeTopRight
	EyeBottomLeft
)

// Matrix is an immutable square module grid. The zero value is not usable,
// build one with NewMatrix or through an Encoder.
type Matrix struct {
	size int
	bits []bool
}

// NewMatrix copies bits (indexed bits[y][x]) into a new Matrix. Rows must all
// have the same length as the number of rows.
func NewMatrix(bits [][]bool) (*Matrix, error) {
	n := len(bits)
	if n == 0 {
		return nil, errors.Wrap(ErrMatrixNotSquare, "empty grid")
	}

	flat := make([]bool, n*n)
	for y, row := range bits {
		if len(row) != n {
			return nil, errors.Wrapf(ErrMatrixNotSquare, "row %d has %d cells, want %d", y, len(row), n)
		}
		copy(flat[y*n:], row)
	}

	return &Matrix{size: n, bits: flat}, nil
}

// Size returns N, the number of modules along one side.
func (m *Matrix) Size() int { return m.size }

// At reports whether the module at column x, row y is set. Out of range
// coordinates are clear.
func (m *Matrix) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return false
	}
	return m.bits[y*m.size+x]
}

// Region returns the region the cell at (x, y) belongs to.
func (m *Matrix) Region(x, y int) RegionKind {
	n := m.size
	switch {
	case x < EyeSize && y < EyeSize,
		x >= n-EyeSize && y < EyeSize,
		x < EyeSize && y >= n-EyeSize:
		return RegionFinderEye
	}
	return RegionData
}

// EyeOrigin returns the top-left module of the given finder eye.
func (m *Matrix) EyeOrigin(e Eye) (x, y int) {
	switch e {
	case EyeTopRight:
		return m.size - EyeSize, 0
	case EyeBottomLeft:
		return 0, m.size - EyeSize
	default:
		return 0, 0
	}
}

// Validate checks the renderer precondition: N odd and >= MinSize.
func (m *Matrix) Validate() error {
	if m == nil || m.size < MinSize || m.size%2 == 0 {
		size := 0
		if m != nil {
			size = m.size
		}
		return errors.Wrapf(ErrMatrixTooSmall, "got %d", size)
	}
	return nil
}

// Iterate calls fn for every cell in row-major order.
func (m *Matrix) Iterate(fn func(x, y int, set bool, kind RegionKind)) {
	for y := 0; y < m.size; y++ {
		for x := 0; x < m.size; x++ {
			fn(x, y, m.bits[y*m.size+x], m.Region(x, y))
		}
	}
}

// Equal reports whether two matrices have the same size and cells.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.size != o.size {
		return false
	}
	for i := range m.bits {
		if m.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}

// Bitmap returns a fresh [y][x] copy of the grid.
func (m *Matrix) Bitmap() [][]bool {
	out := make([][]bool, m.size)
	for y := range out {
		out[y] = make([]bool, m.size)
		copy(out[y], m.bits[y*m.size:(y+1)*m.size])
	}
	return out
}
