package batch

import (
	"github.com/Mictilt/qrforge/content"
	"github.com/Mictilt/qrforge/validate"
	"github.com/Mictilt/qrforge/writer/standard"
)

// Status is the position of a row in its state machine.
type Status uint8

const (
	StatusPending Status = iota
	StatusGenerating
	StatusValidating
	StatusDone
	StatusValidated
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusGenerating:
		return "generating"
	case StatusValidating:
		return "validating"
	case StatusDone:
		return "done"
	case StatusValidated:
		return "validated"
	case StatusError:
		return "error"
	}
	return "pending"
}

// Item is one parsed input row.
type Item struct {
	// Index is 0-based over accepted rows, assigned once at parse time.
	Index   int
	Content string
	Type    content.Type
	Label   string
}

// Row is a read-only view of one batch row. The Coordinator never changes a
// Row it has handed out, it replaces the whole list instead.
type Row struct {
	Item

	Status   Status
	Artifact *standard.Artifact
	// Err is the human readable cause when Status is StatusError.
	Err string
	// Verdict is set once the row went through validation.
	Verdict *validate.Verdict
}

// generated reports whether the row holds an artifact.
func (r Row) generated() bool {
	return r.Artifact != nil
}

// processed reports whether generation for the row has resolved.
func (r Row) processed() bool {
	switch r.Status {
	case StatusDone, StatusError, StatusValidating, StatusValidated:
		return true
	}
	return false
}

func (r Row) reset() Row {
	return Row{Item: r.Item, Status: StatusPending}
}
