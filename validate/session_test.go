package validate

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mictilt/qrforge"
	"github.com/Mictilt/qrforge/style"
	"github.com/Mictilt/qrforge/writer/standard"
)

// recorder collects verdict states seen by an observer.
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) observe(v Verdict) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, v.State)
}

func (r *recorder) seen() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

// echoDecoder reports whatever content the session currently expects.
func echoDecoder(text *string) Decoder {
	return DecoderFunc(func(context.Context, *standard.Artifact) (string, error) {
		return *text, nil
	})
}

func newTestSession(d Decoder, opts ...SessionOption) *Session {
	est, _ := newTestEstimator(d)
	opts = append([]SessionOption{WithCanvasSize(256)}, opts...)
	return NewSession(qrforge.BoombulerEncoder{}, est, opts...)
}

func Test_Session_ValidateAndReset(t *testing.T) {
	text := "hello"
	rec := &recorder{}
	s := newTestSession(echoDecoder(&text), WithObserver(rec.observe))

	s.SetContent("hello")
	assert.Equal(t, StateIdle, s.Verdict().State)

	v, err := s.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatePass, v.State)
	assert.Equal(t, StatePass, s.Verdict().State)

	s.SetContent("world")
	assert.Equal(t, StateIdle, s.Verdict().State, "reset happens before SetContent returns")

	_, err = s.Validate(context.Background())
	require.NoError(t, err)
	s.SetStyle(style.Resolve(style.Config{ModuleShape: "dots"}))
	assert.Equal(t, StateIdle, s.Verdict().State)

	assert.Equal(t, []State{
		StateIdle, StateValidating, StatePass,
		StateIdle, StateValidating, StateFail,
		StateIdle,
	}, rec.seen())
}

func Test_Session_SameValueKeepsVerdict(t *testing.T) {
	text := "same"
	s := newTestSession(echoDecoder(&text))
	s.SetContent("same")

	_, err := s.Validate(context.Background())
	require.NoError(t, err)

	s.SetContent("same")
	s.SetStyle(style.Default())
	assert.Equal(t, StatePass, s.Verdict().State)
}

func Test_Session_SupersededResultIsDropped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	d := DecoderFunc(func(context.Context, *standard.Artifact) (string, error) {
		close(entered)
		<-release
		return "first", nil
	})

	s := newTestSession(d)
	s.SetContent("first")

	type result struct {
		v   Verdict
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := s.Validate(context.Background())
		done <- result{v, err}
	}()

	<-entered
	assert.Equal(t, StateValidating, s.Verdict().State)
	s.SetContent("second")
	assert.Equal(t, StateIdle, s.Verdict().State)
	close(release)

	r := <-done
	assert.ErrorIs(t, r.err, ErrSuperseded)
	assert.Equal(t, StateIdle, r.v.State)
	assert.Equal(t, StateIdle, s.Verdict().State)
}

func Test_Session_EncodeFailure(t *testing.T) {
	text := ""
	s := newTestSession(echoDecoder(&text))

	v, err := s.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, qrforge.IsEncodeError(err))
	assert.Equal(t, StateFail, v.State)
	assert.NotEmpty(t, v.Message)
	assert.NotEmpty(t, v.Suggestions)
}

func Test_Session_Render(t *testing.T) {
	text := "render"
	s := newTestSession(echoDecoder(&text))
	s.SetContent("render")

	a, err := s.Render(context.Background(), standard.WithFormat(standard.FormatSVG))
	require.NoError(t, err)
	assert.Equal(t, standard.KindVector, a.Kind())
	assert.Equal(t, 256, a.Width())
	assert.Equal(t, "render", s.Content())
	assert.True(t, s.Style().Equal(style.Default()))
}
