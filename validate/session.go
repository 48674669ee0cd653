package validate

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/Mictilt/qrforge"
	"github.com/Mictilt/qrforge/style"
	"github.com/Mictilt/qrforge/writer/standard"
)

// ErrSuperseded is returned by Session.Validate when the content or style
// changed while the validation was running. Its result is dropped.
var ErrSuperseded = errors.New("validate: content or style changed during validation")

const defaultCanvasSize = 512

// Session is the single-code editing flow: it holds the current content and
// style and the verdict that belongs to them. Any change resets the verdict to
// Idle before the setter returns.
type Session struct {
	encoder   qrforge.Encoder
	estimator *Estimator

	canvasSize int
	renderOpts []standard.ImageOption
	observers  []func(Verdict)

	mu       sync.Mutex
	content  string
	style    style.Style
	revision uint64
	verdict  Verdict
}

type SessionOption func(s *Session)

// WithObserver registers fn to receive every verdict change. fn is called
// with the session lock held and must not call back into the Session.
func WithObserver(fn func(Verdict)) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

// WithCanvasSize sets the edge of the image rendered for validation.
func WithCanvasSize(px int) SessionOption {
	return func(s *Session) {
		if px > 0 {
			s.canvasSize = px
		}
	}
}

// WithRenderOptions passes options through to standard.Render.
func WithRenderOptions(opts ...standard.ImageOption) SessionOption {
	return func(s *Session) {
		s.renderOpts = append(s.renderOpts, opts...)
	}
}

func NewSession(enc qrforge.Encoder, est *Estimator, opts ...SessionOption) *Session {
	s := &Session{
		encoder:    enc,
		estimator:  est,
		canvasSize: defaultCanvasSize,
		style:      style.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetContent replaces the content. A different value invalidates the verdict.
func (s *Session) SetContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if content == s.content {
		return
	}
	s.content = content
	s.invalidateLocked()
}

// SetStyle replaces the style. A different value invalidates the verdict.
func (s *Session) SetStyle(st style.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Equal(s.style) {
		return
	}
	s.style = st
	s.invalidateLocked()
}

func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

func (s *Session) Style() style.Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

func (s *Session) Verdict() Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verdict
}

// Render encodes and renders the current content and style.
func (s *Session) Render(ctx context.Context, opts ...standard.ImageOption) (*standard.Artifact, error) {
	s.mu.Lock()
	content, st := s.content, s.style
	s.mu.Unlock()

	return s.render(ctx, content, st, opts...)
}

func (s *Session) render(ctx context.Context, content string, st style.Style, opts ...standard.ImageOption) (*standard.Artifact, error) {
	m, err := s.encoder.Encode(ctx, content, st.ErrorCorrection)
	if err != nil {
		return nil, err
	}
	all := append(append([]standard.ImageOption{}, s.renderOpts...), opts...)
	return standard.Render(m, st, s.canvasSize, all...)
}

// Validate moves the verdict to Validating, renders and estimates the current
// content and style, and stores the terminal verdict. An encode or render
// failure is stored as a Fail verdict and also returned.
func (s *Session) Validate(ctx context.Context) (Verdict, error) {
	s.mu.Lock()
	rev, content, st := s.revision, s.content, s.style
	s.setLocked(Verdict{State: StateValidating})
	s.mu.Unlock()

	var v Verdict
	a, err := s.render(ctx, content, st)
	switch {
	case err == nil:
		v = s.estimator.Estimate(ctx, a, content, st)
	case ctx.Err() != nil:
		return s.finish(rev, Verdict{State: StateIdle}, err)
	default:
		v = Verdict{State: StateFail, Message: err.Error(), Suggestions: []string{SuggestCheckContent}}
	}

	return s.finish(rev, v, err)
}

func (s *Session) finish(rev uint64, v Verdict, err error) (Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rev != s.revision {
		return s.verdict, ErrSuperseded
	}
	s.setLocked(v)
	return v, err
}

func (s *Session) invalidateLocked() {
	s.revision++
	s.setLocked(Verdict{State: StateIdle})
}

func (s *Session) setLocked(v Verdict) {
	s.verdict = v
	for _, fn := range s.observers {
		fn(v)
	}
}
