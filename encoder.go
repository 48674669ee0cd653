package qrforge

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ECLevel is the error correction redundancy tier.
type ECLevel uint8

const (
	ECLevelL ECLevel = iota + 1
	ECLevelM
	ECLevelQ
	ECLevelH
)

// ParseECLevel never fails, anything it does not know becomes M.
func ParseECLevel(s string) ECLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return ECLevelL
	case "Q":
		return ECLevelQ
	case "H":
		return ECLevelH
	default:
		return ECLevelM
	}
}

func (l ECLevel) String() string {
	switch l {
	case ECLevelL:
		return "L"
	case ECLevelQ:
		return "Q"
	case ECLevelH:
		return "H"
	default:
		return "M"
	}
}

// Low reports whether the level is L or M, the tiers that cannot absorb
// logo occlusion reliably.
func (l ECLevel) Low() bool {
	return l == ECLevelL || l == ECLevelM
}

// Encoder turns content into a Matrix. Implementations must be deterministic
// for identical inputs.
type Encoder interface {
	Encode(ctx context.Context, content string, level ECLevel) (*Matrix, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(ctx context.Context, content string, level ECLevel) (*Matrix, error)

func (f EncoderFunc) Encode(ctx context.Context, content string, level ECLevel) (*Matrix, error) {
	return f(ctx, content, level)
}

// EncodeError reports content the symbol family cannot carry. It is surfaced
// to the caller and never retried.
type EncodeError struct {
	Reason string
	cause  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode: %s", e.Reason)
}

func (e *EncodeError) Unwrap() error { return e.cause }

func newEncodeError(reason string, cause error) *EncodeError {
	if cause != nil && reason == "" {
		reason = cause.Error()
	}
	return &EncodeError{Reason: reason, cause: cause}
}

// IsEncodeError reports whether err is, or wraps, an *EncodeError.
func IsEncodeError(err error) bool {
	var ee *EncodeError
	return errors.As(err, &ee)
}

// NewEncoder returns the named encoder backend. Known names are "yeqown"
// (default), "skip2", "boombuler" and "rsc".
func NewEncoder(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "yeqown":
		return YeqownEncoder{}, nil
	case "skip2":
		return Skip2Encoder{}, nil
	case "boombuler":
		return BoombulerEncoder{}, nil
	case "rsc":
		return RSCEncoder{}, nil
	}
	return nil, errors.Errorf("qrforge: unknown encoder %q", name)
}

func checkContent(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if content == "" {
		return newEncodeError("content is empty", nil)
	}
	return nil
}

// finish validates a freshly encoded grid before handing it out.
func finish(bits [][]bool) (*Matrix, error) {
	m, err := NewMatrix(bits)
	if err != nil {
		return nil, newEncodeError("", err)
	}
	if err = m.Validate(); err != nil {
		return nil, newEncodeError("", err)
	}
	return m, nil
}
