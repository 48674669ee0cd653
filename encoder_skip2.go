package qrforge

import (
	"context"

	skip2 "github.com/skip2/go-qrcode"
)

// Skip2Encoder encodes with github.com/skip2/go-qrcode.
type Skip2Encoder struct{}

func (Skip2Encoder) Encode(ctx context.Context, content string, level ECLevel) (*Matrix, error) {
	if err := checkContent(ctx, content); err != nil {
		return nil, err
	}

	q, err := skip2.New(content, skip2Level(level))
	if err != nil {
		return nil, newEncodeError("", err)
	}
	// the quiet zone belongs to the renderer
	q.DisableBorder = true

	return finish(q.Bitmap())
}

func skip2Level(l ECLevel) skip2.RecoveryLevel {
	switch l {
	case ECLevelL:
		return skip2.Low
	case ECLevelQ:
		return skip2.High
	case ECLevelH:
		return skip2.Highest
	default:
		return skip2.Medium
	}
}
