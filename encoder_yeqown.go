package qrforge

import (
	"context"

	qrcode "github.com/yeqown/go-qrcode/v2"
)

// YeqownEncoder encodes with github.com/yeqown/go-qrcode in byte mode.
type YeqownEncoder struct{}

func (YeqownEncoder) Encode(ctx context.Context, content string, level ECLevel) (*Matrix, error) {
	if err := checkContent(ctx, content); err != nil {
		return nil, err
	}

	qrc, err := qrcode.NewWith(content,
		qrcode.WithEncodingMode(qrcode.EncModeByte),
		yeqownLevel(level),
	)
	if err != nil {
		return nil, newEncodeError("", err)
	}

	capture := &matrixCapture{}
	if err = qrc.Save(capture); err != nil {
		return nil, newEncodeError("", err)
	}

	return finish(capture.bits)
}

// yeqownLevel builds the option directly, the level type itself is
// unexported upstream.
func yeqownLevel(l ECLevel) qrcode.EncodeOption {
	switch l {
	case ECLevelL:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow)
	case ECLevelQ:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart)
	case ECLevelH:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest)
	default:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium)
	}
}

// matrixCapture is a qrcode.Writer that keeps the set/clear state of every
// block instead of drawing it.
type matrixCapture struct {
	bits [][]bool
}

func (c *matrixCapture) Write(mat qrcode.Matrix) error {
	c.bits = make([][]bool, mat.Height())
	for i := range c.bits {
		c.bits[i] = make([]bool, mat.Width())
	}
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		c.bits[y][x] = v.IsSet()
	})
	return nil
}

func (c *matrixCapture) Close() error { return nil }
