// Package validate estimates whether a rendered code will scan: it decodes the
// artifact, compares the result with the expected content, and weighs the
// style's structural risk before trusting a successful decode.
package validate

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Mictilt/qrforge/style"
	"github.com/Mictilt/qrforge/writer/standard"
)

// State is the lifecycle position of a Verdict.
type State uint8

const (
	StateIdle State = iota
	StateValidating
	StatePass
	StateWarn
	StateFail
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StatePass:
		return "pass"
	case StateWarn:
		return "warn"
	case StateFail:
		return "fail"
	}
	return "idle"
}

// Terminal reports whether s is Pass, Warn or Fail.
func (s State) Terminal() bool {
	return s >= StatePass
}

// Verdict is the outcome of one estimate. Fail and Warn always carry a
// message and at least one suggestion, the first being the most important.
type Verdict struct {
	State          State
	DecodedContent string
	Matched        bool
	Message        string
	Suggestions    []string
}

const (
	MsgPass           = "QR code scans correctly"
	MsgCouldNotDecode = "could not decode"
	MsgMismatch       = "content mismatch"
	MsgCornerConflict = "logos on all three finder eyes are not recoverable at error correction L or M"
	MsgMarginal       = "decoded but reliability is low"

	SuggestRaiseEC      = "increase error correction to Q or H"
	SuggestLessCustom   = "reduce customization"
	SuggestLogoEC       = "use EC level Q or H when embedding a logo"
	SuggestMoveLogo     = "move the logo to the center"
	SuggestShrinkLogo   = "reduce the logo size"
	SuggestCheckContent = "verify the QR content is correct"
)

// Estimator classifies artifacts. It calls its Decoder exactly once per
// estimate and never retries.
type Estimator struct {
	decoder Decoder
	logger  *logrus.Logger
}

type EstimatorOption func(e *Estimator)

// WithEstimatorLogger replaces the standard logrus logger.
func WithEstimatorLogger(l *logrus.Logger) EstimatorOption {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEstimator(d Decoder, opts ...EstimatorOption) *Estimator {
	e := &Estimator{decoder: d, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate decodes a and classifies the result against expected and s.
func (e *Estimator) Estimate(ctx context.Context, a *standard.Artifact, expected string, s style.Style) Verdict {
	decoded, err := e.decoder.Decode(ctx, a)
	v := classify(decoded, err, expected, s)

	entry := e.logger.WithFields(logrus.Fields{
		"state":   v.State.String(),
		"matched": v.Matched,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Debug("validate: estimated")

	return v
}

// Request is one item of a bulk estimate.
type Request struct {
	Artifact *standard.Artifact
	Expected string
	Style    style.Style
}

// EstimateAll estimates every request in order. It stops and returns the
// context error if ctx ends before all requests are done.
func (e *Estimator) EstimateAll(ctx context.Context, reqs []Request) ([]Verdict, error) {
	out := make([]Verdict, 0, len(reqs))
	for _, r := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, e.Estimate(ctx, r.Artifact, r.Expected, r.Style))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// classify applies the structural override before looking at the decode, so
// a lucky decode never upgrades a layout that is unreliable by construction.
func classify(decoded string, decodeErr error, expected string, s style.Style) Verdict {
	var v Verdict
	if decodeErr == nil {
		v.DecodedContent = decoded
		v.Matched = strings.TrimSpace(decoded) == strings.TrimSpace(expected)
	}

	logo := s.Logo
	lowEC := s.ErrorCorrection.Low()

	switch {
	case logo != nil && logo.Position == style.LogoAllCorners && lowEC:
		v.State = StateFail
		v.Message = MsgCornerConflict
		v.Suggestions = []string{SuggestLogoEC, SuggestMoveLogo}
	case decodeErr != nil:
		v.State = StateFail
		v.Message = MsgCouldNotDecode
		v.Suggestions = []string{SuggestRaiseEC, SuggestLessCustom}
	case !v.Matched:
		v.State = StateFail
		v.Message = MsgMismatch
		v.Suggestions = []string{SuggestCheckContent, SuggestRaiseEC}
	case logo != nil && lowEC && logo.Position.Corner():
		v.State = StateWarn
		v.Message = MsgMarginal
		v.Suggestions = []string{SuggestLogoEC, SuggestMoveLogo}
	case logo != nil && lowEC && logo.SizePercent > 30:
		v.State = StateWarn
		v.Message = MsgMarginal
		v.Suggestions = []string{SuggestLogoEC, SuggestShrinkLogo}
	default:
		v.State = StatePass
		v.Message = MsgPass
	}

	return v
}
