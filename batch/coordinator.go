// Package batch drives many content rows through encoding, rendering and
// validation, one state machine per row.
package batch

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Mictilt/qrforge"
	"github.com/Mictilt/qrforge/export"
	"github.com/Mictilt/qrforge/style"
	"github.com/Mictilt/qrforge/validate"
	"github.com/Mictilt/qrforge/writer/standard"
)

const (
	defaultCanvasSize = 512
	defaultRowTimeout = 30 * time.Second
)

var (
	ErrNoSuchRow       = errors.New("batch: no such row")
	ErrNotRetryable    = errors.New("batch: only failed rows can be retried")
	ErrNothingToExport = errors.New("batch: no generated rows to export")
	ErrBusy            = errors.New("batch: generate all is already running")
	ErrBatchReset      = errors.New("batch: rows were reset during the pass")

	// ErrTimeout is the row error when encoding and rendering exceed the row
	// timeout.
	ErrTimeout = errors.New("timeout")
)

// Coordinator owns the rows of one batch. Every transition replaces the row
// list as a whole, so a slice returned by Rows is never modified afterwards.
type Coordinator struct {
	id        uuid.UUID
	encoder   qrforge.Encoder
	estimator *validate.Estimator
	style     style.Style
	logger    *logrus.Logger

	canvasSize int
	rowTimeout time.Duration
	renderOpts []standard.ImageOption
	observers  []func([]Row)

	mu       sync.Mutex
	rows     []Row
	format   standard.Format
	epoch    uint64
	inflight map[int]flight
	running  bool
}

// flight is a generation in progress. A flight started before the last reset
// belongs to rows that no longer exist and does not block its index.
type flight struct {
	epoch uint64
	done  chan struct{}
}

type Option func(c *Coordinator)

func WithLogger(l *logrus.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCanvasSize sets the edge in pixels of every rendered row.
func WithCanvasSize(px int) Option {
	return func(c *Coordinator) {
		if px > 0 {
			c.canvasSize = px
		}
	}
}

// WithFormat sets the initial export format.
func WithFormat(f standard.Format) Option {
	return func(c *Coordinator) {
		c.format = f
	}
}

// WithRowTimeout bounds encoding plus rendering of a single row. Zero or a
// negative value keeps the default of 30s.
func WithRowTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.rowTimeout = d
		}
	}
}

// WithRenderOptions passes options through to standard.Render. The batch
// format always wins over a format option given here.
func WithRenderOptions(opts ...standard.ImageOption) Option {
	return func(c *Coordinator) {
		c.renderOpts = append(c.renderOpts, opts...)
	}
}

// WithObserver registers fn to receive every new row list. fn is called with
// the coordinator lock held and must not call back into the Coordinator.
func WithObserver(fn func([]Row)) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

func NewCoordinator(enc qrforge.Encoder, est *validate.Estimator, s style.Style, opts ...Option) *Coordinator {
	c := &Coordinator{
		id:         uuid.New(),
		encoder:    enc,
		estimator:  est,
		style:      s,
		logger:     logrus.StandardLogger(),
		canvasSize: defaultCanvasSize,
		rowTimeout: defaultRowTimeout,
		format:     standard.FormatPNG,
		inflight:   make(map[int]flight),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) ID() uuid.UUID { return c.id }

// Load replaces the batch with items, all Pending. Results of work still in
// flight for the previous batch are dropped.
func (c *Coordinator) Load(items []Item) {
	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = Row{Item: it, Status: StatusPending}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.publishLocked(rows)
	c.log(-1).WithField("rows", len(rows)).Info("batch loaded")
}

// Clear destroys every row.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.publishLocked(nil)
}

// Rows returns the current row list. Callers must not modify it.
func (c *Coordinator) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

func (c *Coordinator) Format() standard.Format {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.format
}

// SetFormat changes the batch-wide export format. A different format resets
// every row to Pending and drops artifacts, errors and verdicts.
func (c *Coordinator) SetFormat(f standard.Format) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f == c.format {
		return
	}
	c.format = f
	c.epoch++

	rows := make([]Row, len(c.rows))
	for i, r := range c.rows {
		rows[i] = r.reset()
	}
	c.publishLocked(rows)
	c.log(-1).WithField("format", f).Info("format changed, batch reset")
}

// Progress is the share of rows whose generation resolved, in percent.
func (c *Coordinator) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.rows) == 0 {
		return 0
	}
	n := 0
	for _, r := range c.rows {
		if r.processed() {
			n++
		}
	}
	return float64(n) / float64(len(c.rows)) * 100
}

// AllGenerated reports whether every row holds an artifact.
func (c *Coordinator) AllGenerated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.rows {
		if !r.generated() {
			return false
		}
	}
	return len(c.rows) > 0
}

// Generate encodes and renders one row. It returns started=false without
// doing anything when the row is already in flight or being validated.
//
// The work is not cancelled with ctx. It always runs to completion or to the
// row timeout and then updates the row, unless the batch was reset meanwhile.
func (c *Coordinator) Generate(ctx context.Context, index int) (bool, error) {
	c.mu.Lock()
	if index < 0 || index >= len(c.rows) {
		c.mu.Unlock()
		return false, errors.Wrapf(ErrNoSuchRow, "index %d", index)
	}
	if c.busyLocked(index) || c.rows[index].Status == StatusValidating {
		c.mu.Unlock()
		return false, nil
	}

	done := make(chan struct{})
	c.inflight[index] = flight{epoch: c.epoch, done: done}
	epoch, item, format, st := c.epoch, c.rows[index].Item, c.format, c.style
	c.setLocked(index, Row{Item: item, Status: StatusGenerating})
	c.mu.Unlock()

	defer c.release(index, done)

	a, err := c.produce(ctx, item, st, format)

	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		c.log(index).Debug("batch reset, result dropped")
		return true, nil
	}

	r := Row{Item: item, Status: StatusDone, Artifact: a}
	if err != nil {
		r = Row{Item: item, Status: StatusError, Err: err.Error()}
		c.log(index).WithError(err).Warn("row failed")
	}
	c.setLocked(index, r)
	return true, nil
}

// Retry regenerates a row that ended in Error.
func (c *Coordinator) Retry(ctx context.Context, index int) (bool, error) {
	c.mu.Lock()
	if index < 0 || index >= len(c.rows) {
		c.mu.Unlock()
		return false, errors.Wrapf(ErrNoSuchRow, "index %d", index)
	}
	status := c.rows[index].Status
	c.mu.Unlock()

	if status != StatusError {
		return false, errors.Wrapf(ErrNotRetryable, "row %d is %s", index, status)
	}
	return c.Generate(ctx, index)
}

// GenerateAll resets every row to Pending and generates the rows in
// ascending index order. Once each has resolved, the Done rows move to
// Validating together and are estimated with a single bulk call. Rows that
// pass or warn with matching content end Validated, the rest end in Error.
//
// When ctx is cancelled no further rows are started. If the bulk call fails
// the Validating rows fall back to Done.
func (c *Coordinator) GenerateAll(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrBusy
	}
	c.running = true
	epoch := c.epoch

	rows := make([]Row, len(c.rows))
	for i, r := range c.rows {
		rows[i] = r
		if !c.busyLocked(i) {
			rows[i] = r.reset()
		}
	}
	c.publishLocked(rows)
	n := len(rows)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !c.sameEpoch(epoch) {
			return ErrBatchReset
		}

		started, err := c.Generate(ctx, i)
		if err != nil {
			return err
		}
		if !started {
			c.wait(ctx, i)
		}
	}

	return c.validateAll(ctx, epoch)
}

func (c *Coordinator) validateAll(ctx context.Context, epoch uint64) error {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return ErrBatchReset
	}

	rows := append([]Row(nil), c.rows...)
	var (
		reqs []validate.Request
		idx  []int
	)
	for i, r := range rows {
		if r.Status != StatusDone {
			continue
		}
		rows[i].Status = StatusValidating
		reqs = append(reqs, validate.Request{Artifact: r.Artifact, Expected: r.Content, Style: c.style})
		idx = append(idx, i)
	}
	if len(reqs) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.publishLocked(rows)
	c.mu.Unlock()

	verdicts, err := c.estimator.EstimateAll(ctx, reqs)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return ErrBatchReset
	}

	rows = append([]Row(nil), c.rows...)
	if err != nil {
		for _, i := range idx {
			if rows[i].Status == StatusValidating {
				rows[i].Status = StatusDone
			}
		}
		c.publishLocked(rows)
		c.log(-1).WithError(err).Warn("bulk validation failed")
		return errors.Wrap(err, "batch: validate")
	}

	for k, i := range idx {
		v := verdicts[k]
		rows[i].Verdict = &v
		if (v.State == validate.StatePass || v.State == validate.StateWarn) && v.Matched {
			rows[i].Status = StatusValidated
			continue
		}
		rows[i].Status = StatusError
		rows[i].Err = v.Message
		if rows[i].Err == "" {
			rows[i].Err = validate.MsgMismatch
		}
	}
	c.publishLocked(rows)
	c.log(-1).WithField("validated", len(idx)).Info("batch validated")
	return nil
}

// Export packs every row holding an artifact, named after its label or
// index. A nil packager writes a ZIP archive.
func (c *Coordinator) Export(w io.Writer, p export.Packager) error {
	c.mu.Lock()
	rows, format := c.rows, c.format
	c.mu.Unlock()

	var entries []export.Entry
	for _, r := range rows {
		if !r.generated() {
			continue
		}
		entries = append(entries, export.Entry{Index: r.Index, Label: r.Label, Data: r.Artifact.Bytes()})
	}
	if len(entries) == 0 {
		return ErrNothingToExport
	}

	if p == nil {
		p = export.ZipPackager{}
	}
	return p.Pack(w, export.Files(entries, format))
}

func (c *Coordinator) produce(ctx context.Context, item Item, st style.Style, f standard.Format) (*standard.Artifact, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.rowTimeout)
	defer cancel()

	type result struct {
		a   *standard.Artifact
		err error
	}
	out := make(chan result, 1)

	go func() {
		m, err := c.encoder.Encode(ctx, item.Content, st.ErrorCorrection)
		if err != nil {
			out <- result{err: err}
			return
		}
		opts := append(append([]standard.ImageOption{}, c.renderOpts...), standard.WithFormat(f))
		a, err := standard.Render(m, st, c.canvasSize, opts...)
		out <- result{a: a, err: err}
	}()

	select {
	case r := <-out:
		if errors.Is(r.err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return r.a, r.err
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}

func (c *Coordinator) release(index int, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.inflight[index]; ok && f.done == done {
		delete(c.inflight, index)
	}
	close(done)
}

// busyLocked reports whether a flight of the current batch holds index.
func (c *Coordinator) busyLocked(index int) bool {
	f, ok := c.inflight[index]
	return ok && f.epoch == c.epoch
}

func (c *Coordinator) wait(ctx context.Context, index int) {
	c.mu.Lock()
	f, ok := c.inflight[index]
	c.mu.Unlock()

	if !ok {
		return
	}
	select {
	case <-f.done:
	case <-ctx.Done():
	}
}

func (c *Coordinator) sameEpoch(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch == epoch
}

func (c *Coordinator) setLocked(index int, r Row) {
	rows := append([]Row(nil), c.rows...)
	rows[index] = r
	c.publishLocked(rows)
	c.log(index).WithField("status", r.Status).Debug("row transition")
}

func (c *Coordinator) publishLocked(rows []Row) {
	c.rows = rows
	for _, fn := range c.observers {
		fn(rows)
	}
}

func (c *Coordinator) log(index int) *logrus.Entry {
	e := c.logger.WithField("batch", c.id.String())
	if index >= 0 {
		e = e.WithField("row", index)
	}
	return e
}
