package qrforge

import (
	"context"

	rscqr "rsc.io/qr"
)

// RSCEncoder encodes with rsc.io/qr.
type RSCEncoder struct{}

func (RSCEncoder) Encode(ctx context.Context, content string, level ECLevel) (*Matrix, error) {
	if err := checkContent(ctx, content); err != nil {
		return nil, err
	}

	code, err := rscqr.Encode(content, rscLevel(level))
	if err != nil {
		return nil, newEncodeError("", err)
	}

	bits := make([][]bool, code.Size)
	for y := range bits {
		bits[y] = make([]bool, code.Size)
		for x := range bits[y] {
			bits[y][x] = code.Black(x, y)
		}
	}

	return finish(bits)
}

func rscLevel(l ECLevel) rscqr.Level {
	switch l {
	case ECLevelL:
		return rscqr.L
	case ECLevelQ:
		return rscqr.Q
	case ECLevelH:
		return rscqr.H
	default:
		return rscqr.M
	}
}
