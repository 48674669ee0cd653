package qrforge

import (
	"context"
	"image/color"

	bqr "github.com/boombuler/barcode/qr"
)

// BoombulerEncoder encodes with github.com/boombuler/barcode/qr.
type BoombulerEncoder struct{}

func (BoombulerEncoder) Encode(ctx context.Context, content string, level ECLevel) (*Matrix, error) {
	if err := checkContent(ctx, content); err != nil {
		return nil, err
	}

	code, err := bqr.Encode(content, boombulerLevel(level), bqr.Auto)
	if err != nil {
		return nil, newEncodeError("", err)
	}

	b := code.Bounds()
	bits := make([][]bool, b.Dy())
	for y := range bits {
		bits[y] = make([]bool, b.Dx())
		for x := range bits[y] {
			g := color.GrayModel.Convert(code.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			bits[y][x] = g.Y < 128
		}
	}

	return finish(bits)
}

func boombulerLevel(l ECLevel) bqr.ErrorCorrectionLevel {
	switch l {
	case ECLevelL:
		return bqr.L
	case ECLevelQ:
		return bqr.Q
	case ECLevelH:
		return bqr.H
	default:
		return bqr.M
	}
}
