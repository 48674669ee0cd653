package standard

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/Mictilt/qrforge/style"
)

// padRatio is the gap left on each side of a module, relative to the cell.
const padRatio = 0.08

var (
	_ GraphicsContext = (*GGContextWrapper)(nil)
	_ GraphicsContext = (*svgRecorder)(nil)
)

type IShape interface {
	// Draw a data module inside the cell described by ctx.
	Draw(ctx *DrawContext)

	// DrawFinder draws a module that belongs to one of the three finder eyes.
	DrawFinder(ctx *DrawContext)
}

// GraphicsContext is the drawing surface shapes paint on. The raster backend
// is a gg.Context, the vector backend records the same calls as SVG paths.
type GraphicsContext interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	ClosePath()
	DrawCircle(cx, cy, radius float64)
	DrawRectangle(x, y, w, h float64)
	SetColor(c color.Color)
	Fill()
}

// GGContextWrapper wraps gg.Context to implement GraphicsContext
type GGContextWrapper struct {
	*gg.Context
}

// DrawContext is one cell of the grid.
type DrawContext struct {
	GraphicsContext

	x, y float64
	cell float64

	color color.Color
}

// UpperLeft returns the point which indicates the upper left position.
func (dc *DrawContext) UpperLeft() (dx, dy float64) {
	return dc.x, dc.y
}

// Cell returns the side of the cell in pixels.
func (dc *DrawContext) Cell() float64 {
	return dc.cell
}

// Pad returns the inset applied on every side of the cell.
func (dc *DrawContext) Pad() float64 {
	return dc.cell * padRatio
}

// Color returns the color which should be fill into the shape.
func (dc *DrawContext) Color() color.Color {
	return dc.color
}

func (dc *DrawContext) center() (float64, float64) {
	return dc.x + dc.cell/2, dc.y + dc.cell/2
}

// inset is the padded square every shape is drawn into.
func (dc *DrawContext) inset() (x, y, side float64) {
	pad := dc.Pad()
	return dc.x + pad, dc.y + pad, dc.cell - 2*pad
}

// shapeOf pairs the data module shape with the eye shape of s.
func shapeOf(s style.Style) IShape {
	return styledShape{module: s.ModuleShape, eye: s.EyeShape}
}

type styledShape struct {
	module style.ModuleShape
	eye    style.EyeShape
}

func (s styledShape) Draw(c *DrawContext) {
	x, y, side := c.inset()

	switch s.module {
	case style.ModuleRounded:
		roundedRect(c, x, y, side, side, c.cell*0.35)
	case style.ModuleDots:
		cx, cy := c.center()
		c.DrawCircle(cx, cy, side*0.45)
	case style.ModuleDiamond:
		cx, cy := c.center()
		pad := c.Pad()
		c.MoveTo(cx, c.y+pad)
		c.LineTo(c.x+c.cell-pad, cy)
		c.LineTo(cx, c.y+c.cell-pad)
		c.LineTo(c.x+pad, cy)
		c.ClosePath()
	default:
		c.DrawRectangle(x, y, side, side)
	}

	c.SetColor(c.color)
	c.Fill()
}

func (s styledShape) DrawFinder(c *DrawContext) {
	x, y, side := c.inset()

	switch s.eye {
	case style.EyeRounded:
		roundedRect(c, x, y, side, side, c.cell*0.3)
	case style.EyeCircle:
		cx, cy := c.center()
		c.DrawCircle(cx, cy, side/2)
	case style.EyeLeaf:
		roundedRect(c, x, y, side, side, c.cell*0.45)
	default:
		c.DrawRectangle(x, y, side, side)
	}

	c.SetColor(c.color)
	c.Fill()
}

// roundedRect traces a rectangle with quadratic corners. r is capped at half
// the shorter side.
func roundedRect(gc GraphicsContext, x, y, w, h, r float64) {
	r = math.Min(r, math.Min(w, h)/2)

	gc.MoveTo(x+r, y)
	gc.LineTo(x+w-r, y)
	gc.QuadraticTo(x+w, y, x+w, y+r)
	gc.LineTo(x+w, y+h-r)
	gc.QuadraticTo(x+w, y+h, x+w-r, y+h)
	gc.LineTo(x+r, y+h)
	gc.QuadraticTo(x, y+h, x, y+h-r)
	gc.LineTo(x, y+r)
	gc.QuadraticTo(x, y, x+r, y)
	gc.ClosePath()
}
