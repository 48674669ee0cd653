// Package style resolves raw, user supplied style settings into a Style the
// renderer can consume. Resolution never fails: bad input is clamped or
// replaced with defaults.
package style

import (
	"encoding/json"
	"image/color"
	"strings"

	"github.com/Mictilt/qrforge"
)

type ModuleShape uint8

const (
	ModuleSquare ModuleShape = iota
	ModuleRounded
	ModuleDots
	ModuleDiamond
)

type EyeShape uint8

const (
	EyeSquare EyeShape = iota
	EyeRounded
	EyeCircle
	EyeLeaf
)

type LogoShape uint8

const (
	LogoSquare LogoShape = iota
	LogoCircle
)

type LogoPosition uint8

const (
	LogoCenter LogoPosition = iota
	LogoTopLeft
	LogoTopRight
	LogoBottomLeft
	LogoAllCorners
)

// Corner reports whether the logo sits on at least one finder eye.
func (p LogoPosition) Corner() bool {
	return p != LogoCenter
}

// Eyes lists the finder eyes a corner placement covers.
func (p LogoPosition) Eyes() []qrforge.Eye {
	switch p {
	case LogoTopLeft:
		return []qrforge.Eye{qrforge.EyeTopLeft}
	case LogoTopRight:
		return []qrforge.Eye{qrforge.EyeTopRight}
	case LogoBottomLeft:
		return []qrforge.Eye{qrforge.EyeBottomLeft}
	case LogoAllCorners:
		return []qrforge.Eye{qrforge.EyeTopLeft, qrforge.EyeTopRight, qrforge.EyeBottomLeft}
	}
	return nil
}

const (
	MinLogoPercent     = 10
	MaxLogoPercent     = 40
	DefaultLogoPercent = 25
)

// Gradient is a two stop diagonal ramp.
type Gradient struct {
	From color.RGBA
	To   color.RGBA
}

// Logo describes an overlay. SizePercent is relative to the canvas edge for
// center placement and ignored for corner placements, which always cover
// five modules.
type Logo struct {
	Shape       LogoShape
	SizePercent int
	Position    LogoPosition
}

// Style is a resolved, renderer-ready description. Values are compared with
// ==, so every field is a value type or a pointer to one that Resolve owns.
type Style struct {
	ModuleShape     ModuleShape
	EyeShape        EyeShape
	Foreground      color.RGBA
	Background      color.RGBA
	Gradient        *Gradient
	Transparent     bool
	Logo            *Logo
	ErrorCorrection qrforge.ECLevel
}

// Default is the style used when nothing is configured.
func Default() Style {
	return Resolve(Config{})
}

// Equal compares two styles by value.
func (s Style) Equal(o Style) bool {
	if s.ModuleShape != o.ModuleShape || s.EyeShape != o.EyeShape ||
		s.Foreground != o.Foreground || s.Background != o.Background ||
		s.Transparent != o.Transparent || s.ErrorCorrection != o.ErrorCorrection {
		return false
	}
	if (s.Gradient == nil) != (o.Gradient == nil) || (s.Logo == nil) != (o.Logo == nil) {
		return false
	}
	if s.Gradient != nil && *s.Gradient != *o.Gradient {
		return false
	}
	if s.Logo != nil && *s.Logo != *o.Logo {
		return false
	}
	return true
}

// Fill returns the module colour at grid position (x, y) of an n-sized
// matrix: the foreground, or the gradient sampled at t = (x+y)/(2n).
func (s Style) Fill(x, y, n int) color.RGBA {
	if s.Gradient == nil || n <= 0 {
		return s.Foreground
	}
	t := float64(x+y) / float64(2*n)
	return Lerp(s.Gradient.From, s.Gradient.To, t)
}

// Backdrop is the colour painted behind logos: the background, or white when
// the background is transparent.
func (s Style) Backdrop() color.RGBA {
	if s.Transparent {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return s.Background
}

// Lerp linearly interpolates the RGB channels of two colours. t is clamped to
// [0, 1] and the result is opaque.
func Lerp(a, b color.RGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	mix := func(p, q uint8) uint8 {
		return uint8(float64(p) + t*(float64(q)-float64(p)) + 0.5)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// Config returns the canonical raw form of s. Resolve(s.Config()) equals s.
func (s Style) Config() Config {
	c := Config{
		ModuleShape:     moduleShapeNames[s.ModuleShape],
		EyeShape:        eyeShapeNames[s.EyeShape],
		Foreground:      Hex(s.Foreground),
		Background:      Hex(s.Background),
		Transparent:     s.Transparent,
		ErrorCorrection: s.ErrorCorrection.String(),
	}
	if s.Gradient != nil {
		c.Gradient = &GradientConfig{From: Hex(s.Gradient.From), To: Hex(s.Gradient.To)}
	}
	if s.Logo != nil {
		c.Logo = &LogoConfig{
			Shape:       logoShapeNames[s.Logo.Shape],
			SizePercent: s.Logo.SizePercent,
			Position:    logoPositionNames[s.Logo.Position],
		}
	}
	return c
}

func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Config())
}

func (s *Style) UnmarshalJSON(b []byte) error {
	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return err
	}
	*s = Resolve(c)
	return nil
}

var (
	moduleShapeNames = map[ModuleShape]string{
		ModuleSquare: "square", ModuleRounded: "rounded", ModuleDots: "dots", ModuleDiamond: "diamond",
	}
	eyeShapeNames = map[EyeShape]string{
		EyeSquare: "square", EyeRounded: "rounded", EyeCircle: "circle", EyeLeaf: "leaf",
	}
	logoShapeNames = map[LogoShape]string{
		LogoSquare: "square", LogoCircle: "circle",
	}
	logoPositionNames = map[LogoPosition]string{
		LogoCenter: "center", LogoTopLeft: "top-left", LogoTopRight: "top-right",
		LogoBottomLeft: "bottom-left", LogoAllCorners: "all-corners",
	}
)

func (m ModuleShape) String() string  { return moduleShapeNames[m] }
func (e EyeShape) String() string     { return eyeShapeNames[e] }
func (l LogoShape) String() string    { return logoShapeNames[l] }
func (p LogoPosition) String() string { return logoPositionNames[p] }

// lookup does a case and separator insensitive reverse lookup.
func lookup[K comparable](names map[K]string, s string, fallback K) K {
	key := normalizeName(s)
	for k, v := range names {
		if normalizeName(v) == key {
			return k
		}
	}
	return fallback
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
