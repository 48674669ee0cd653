package standard

import (
	"github.com/google/uuid"
)

// artifactSpace namespaces artifact ids, so equal bytes always share an id.
var artifactSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("qrforge.artifact"))

// Artifact is one rendered image. It is immutable: a new render produces a
// new Artifact rather than changing an existing one.
type Artifact struct {
	id       uuid.UUID
	data     []byte
	format   Format
	width    int
	height   int
	cellSize float64
}

func newArtifact(data []byte, f Format, width, height int, cell float64) *Artifact {
	return &Artifact{
		id:       uuid.NewSHA1(artifactSpace, data),
		data:     data,
		format:   f,
		width:    width,
		height:   height,
		cellSize: cell,
	}
}

// ID is derived from the encoded bytes.
func (a *Artifact) ID() uuid.UUID { return a.id }

// Bytes returns a copy of the encoded image.
func (a *Artifact) Bytes() []byte {
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return out
}

// Len is the encoded size in bytes.
func (a *Artifact) Len() int { return len(a.data) }

func (a *Artifact) Format() Format { return a.format }

func (a *Artifact) Kind() Kind { return a.format.Kind() }

func (a *Artifact) Width() int { return a.width }

func (a *Artifact) Height() int { return a.height }

// CellSize is the side of one module in pixels.
func (a *Artifact) CellSize() float64 { return a.cellSize }
