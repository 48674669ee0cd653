package qrforge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allEncoders() map[string]Encoder {
	return map[string]Encoder{
		"yeqown":    YeqownEncoder{},
		"skip2":     Skip2Encoder{},
		"boombuler": BoombulerEncoder{},
		"rsc":       RSCEncoder{},
	}
}

func Test_ParseECLevel(t *testing.T) {
	assert.Equal(t, ECLevelL, ParseECLevel("l"))
	assert.Equal(t, ECLevelQ, ParseECLevel(" Q "))
	assert.Equal(t, ECLevelH, ParseECLevel("H"))
	assert.Equal(t, ECLevelM, ParseECLevel("M"))
	assert.Equal(t, ECLevelM, ParseECLevel("bogus"))
	assert.True(t, ECLevelL.Low())
	assert.True(t, ECLevelM.Low())
	assert.False(t, ECLevelQ.Low())
	assert.Equal(t, "H", ECLevelH.String())
}

func Test_Encoders_Deterministic(t *testing.T) {
	ctx := context.Background()
	for name, enc := range allEncoders() {
		t.Run(name, func(t *testing.T) {
			a, err := enc.Encode(ctx, "https://example.com", ECLevelM)
			require.NoError(t, err)
			b, err := enc.Encode(ctx, "https://example.com", ECLevelM)
			require.NoError(t, err)

			assert.True(t, a.Equal(b))
			assert.NoError(t, a.Validate())
			assert.Equal(t, 1, a.Size()%2)

			// every finder eye has a solid outer ring
			for _, e := range []Eye{EyeTopLeft, EyeTopRight, EyeBottomLeft} {
				ox, oy := a.EyeOrigin(e)
				for i := 0; i < EyeSize; i++ {
					assert.True(t, a.At(ox+i, oy), "eye %d top ring", e)
					assert.True(t, a.At(ox+i, oy+EyeSize-1), "eye %d bottom ring", e)
				}
			}
		})
	}
}

func Test_Encoders_RejectEmpty(t *testing.T) {
	for name, enc := range allEncoders() {
		_, err := enc.Encode(context.Background(), "", ECLevelM)
		assert.True(t, IsEncodeError(err), name)
	}
}

func Test_Encoders_RejectOversized(t *testing.T) {
	huge := strings.Repeat("x", 8000)
	for name, enc := range allEncoders() {
		_, err := enc.Encode(context.Background(), huge, ECLevelH)
		assert.True(t, IsEncodeError(err), name)
	}
}

func Test_Encoders_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := YeqownEncoder{}.Encode(ctx, "abc", ECLevelM)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_NewEncoder(t *testing.T) {
	enc, err := NewEncoder("")
	require.NoError(t, err)
	assert.IsType(t, YeqownEncoder{}, enc)

	enc, err = NewEncoder("RSC")
	require.NoError(t, err)
	assert.IsType(t, RSCEncoder{}, enc)

	_, err = NewEncoder("nope")
	assert.Error(t, err)
}

func Test_EncoderFunc(t *testing.T) {
	called := 0
	f := EncoderFunc(func(ctx context.Context, content string, level ECLevel) (*Matrix, error) {
		called++
		return NewMatrix(blankGrid(21))
	})
	m, err := f.Encode(context.Background(), "x", ECLevelL)
	require.NoError(t, err)
	assert.Equal(t, 21, m.Size())
	assert.Equal(t, 1, called)
}
