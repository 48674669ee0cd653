// Package standard renders a qrforge.Matrix under a resolved style.Style into
// an encoded Artifact, either as a raster image drawn with gg or as an SVG
// document written with svgo.
package standard

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	svgo "github.com/ajstarks/svgo"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/Mictilt/qrforge"
	"github.com/Mictilt/qrforge/style"
	"github.com/Mictilt/qrforge/writer/standard/imgkit"
)

var (
	// ErrMatrixTooSmall is returned for matrices that are not odd or smaller
	// than 21 modules, which is also what keeps corner logos in bounds.
	ErrMatrixTooSmall = qrforge.ErrMatrixTooSmall

	ErrRender = errors.New("standard: render failed")
)

const (
	// quietZone is the empty border around the grid, in modules.
	quietZone = 1

	checkerTile  = 8
	logoPadding  = 5.0
	cornerModule = 5
)

var (
	checkerLight = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	checkerDark  = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
)

// Render draws m with s onto a canvasSize x canvasSize canvas and encodes it.
// The cell size is canvasSize/(N+2), leaving one quiet cell on each side.
// m is only read.
func Render(m *qrforge.Matrix, s style.Style, canvasSize int, opts ...ImageOption) (*Artifact, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if canvasSize < m.Size()+2*quietZone {
		return nil, errors.Wrapf(ErrRender, "canvas of %dpx cannot hold %d modules", canvasSize, m.Size())
	}

	oo := defaultOutputImageOption()
	for _, opt := range opts {
		opt.apply(oo)
	}
	if len(oo.errs) > 0 {
		return nil, errors.Wrap(ErrRender, oo.errs[0].Error())
	}

	l := newLayout(m, s, canvasSize)

	var (
		buf bytes.Buffer
		err error
	)
	if oo.format.Kind() == KindVector {
		err = l.writeSVG(&buf, oo)
	} else {
		err = oo.encoder().Encode(&buf, l.drawRaster(oo))
	}
	if err != nil {
		return nil, errors.Wrapf(ErrRender, "encode %s: %v", oo.format, err)
	}

	return newArtifact(buf.Bytes(), oo.format, canvasSize, canvasSize, l.cell), nil
}

// layout is the geometry of one render.
type layout struct {
	m     *qrforge.Matrix
	s     style.Style
	shape IShape

	size   int
	cell   float64
	offset float64
}

func newLayout(m *qrforge.Matrix, s style.Style, size int) *layout {
	cell := float64(size) / float64(m.Size()+2*quietZone)
	return &layout{
		m:      m,
		s:      s,
		shape:  shapeOf(s),
		size:   size,
		cell:   cell,
		offset: cell * quietZone,
	}
}

// logoMark is one logo placement: its centre and the edge of the logo itself,
// without the backdrop padding.
type logoMark struct {
	cx, cy float64
	edge   float64
}

func (l *layout) marks() []logoMark {
	lg := l.s.Logo
	if lg == nil {
		return nil
	}

	if !lg.Position.Corner() {
		half := float64(l.size) / 2
		return []logoMark{{cx: half, cy: half, edge: float64(l.size) * float64(lg.SizePercent) / 100}}
	}

	eyes := lg.Position.Eyes()
	marks := make([]logoMark, 0, len(eyes))
	for _, e := range eyes {
		ox, oy := l.m.EyeOrigin(e)
		// centre of the eye's middle module
		marks = append(marks, logoMark{
			cx:   l.offset + float64(ox+3)*l.cell + l.cell/2,
			cy:   l.offset + float64(oy+3)*l.cell + l.cell/2,
			edge: l.cell * cornerModule,
		})
	}
	return marks
}

// paint draws background, modules and logo backdrops. Both backends share it.
func (l *layout) paint(gc GraphicsContext, preview bool) {
	size := float64(l.size)

	switch {
	case !l.s.Transparent:
		gc.DrawRectangle(0, 0, size, size)
		gc.SetColor(l.s.Background)
		gc.Fill()
	case preview:
		l.paintChecker(gc)
	}

	n := l.m.Size()
	l.m.Iterate(func(x, y int, set bool, kind qrforge.RegionKind) {
		if !set {
			return
		}

		ctx := &DrawContext{
			GraphicsContext: gc,
			x:               l.offset + float64(x)*l.cell,
			y:               l.offset + float64(y)*l.cell,
			cell:            l.cell,
			color:           l.s.Fill(x, y, n),
		}
		if kind == qrforge.RegionFinderEye {
			l.shape.DrawFinder(ctx)
		} else {
			l.shape.Draw(ctx)
		}
	})

	for _, mk := range l.marks() {
		if l.s.Logo.Shape == style.LogoCircle {
			gc.DrawCircle(mk.cx, mk.cy, mk.edge/2+logoPadding)
		} else {
			side := mk.edge + 2*logoPadding
			roundedRect(gc, mk.cx-side/2, mk.cy-side/2, side, side, logoPadding)
		}
		gc.SetColor(l.s.Backdrop())
		gc.Fill()
	}
}

func (l *layout) paintChecker(gc GraphicsContext) {
	size := float64(l.size)
	gc.DrawRectangle(0, 0, size, size)
	gc.SetColor(checkerLight)
	gc.Fill()

	for ty := 0; ty < l.size; ty += checkerTile {
		for tx := 0; tx < l.size; tx += checkerTile {
			if (tx/checkerTile+ty/checkerTile)%2 != 0 {
				continue
			}
			w := math.Min(checkerTile, size-float64(tx))
			h := math.Min(checkerTile, size-float64(ty))
			gc.DrawRectangle(float64(tx), float64(ty), w, h)
		}
	}
	gc.SetColor(checkerDark)
	gc.Fill()
}

// fittedLogo scales the logo image once. Every mark of a render has the same
// edge.
func (l *layout) fittedLogo(oo *outputImageOptions, marks []logoMark) *image.NRGBA {
	if oo.logo == nil || len(marks) == 0 {
		return nil
	}
	return imgkit.Fit(oo.logo, int(marks[0].edge))
}

func (l *layout) drawRaster(oo *outputImageOptions) image.Image {
	dc := gg.NewContext(l.size, l.size)
	l.paint(&GGContextWrapper{Context: dc}, oo.preview)

	marks := l.marks()
	logo := l.fittedLogo(oo, marks)
	if logo == nil {
		return dc.Image()
	}

	b := logo.Bounds()
	for _, mk := range marks {
		x := int(math.Round(mk.cx - float64(b.Dx())/2))
		y := int(math.Round(mk.cy - float64(b.Dy())/2))
		if l.s.Logo.Shape == style.LogoCircle {
			dc.DrawCircle(mk.cx, mk.cy, mk.edge/2)
			dc.Clip()
			dc.DrawImage(logo, x, y)
			dc.ResetClip()
			continue
		}
		dc.DrawImage(logo, x, y)
	}

	return dc.Image()
}

func (l *layout) writeSVG(w io.Writer, oo *outputImageOptions) error {
	canvas := svgo.New(w)
	canvas.Startview(l.size, l.size, 0, 0, l.size, l.size)
	l.paint(newSVGRecorder(canvas), oo.preview)

	marks := l.marks()
	if logo := l.fittedLogo(oo, marks); logo != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, logo); err != nil {
			return errors.Wrap(err, "encode logo")
		}
		href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

		b := logo.Bounds()
		for i, mk := range marks {
			x := int(math.Round(mk.cx - float64(b.Dx())/2))
			y := int(math.Round(mk.cy - float64(b.Dy())/2))

			if l.s.Logo.Shape != style.LogoCircle {
				canvas.Image(x, y, b.Dx(), b.Dy(), href)
				continue
			}

			id := fmt.Sprintf("logo-clip-%d", i)
			canvas.Def()
			canvas.ClipPath(fmt.Sprintf(`id="%s"`, id))
			canvas.Path(circlePath(mk.cx, mk.cy, mk.edge/2))
			canvas.ClipEnd()
			canvas.DefEnd()
			canvas.Image(x, y, b.Dx(), b.Dy(), href, fmt.Sprintf(`clip-path="url(#%s)"`, id))
		}
	}

	canvas.End()
	return nil
}
