package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/Mictilt/qrforge"
)

// Config is the raw, serializable style as a host UI or a saved template
// provides it. Every field is optional.
type Config struct {
	ModuleShape     string          `json:"moduleShape,omitempty"`
	EyeShape        string          `json:"eyeShape,omitempty"`
	Foreground      string          `json:"foreground,omitempty"`
	Background      string          `json:"background,omitempty"`
	Gradient        *GradientConfig `json:"gradient,omitempty"`
	Transparent     bool            `json:"transparentBackground,omitempty"`
	Logo            *LogoConfig     `json:"logo,omitempty"`
	ErrorCorrection string          `json:"errorCorrectionLevel,omitempty"`
}

type GradientConfig struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type LogoConfig struct {
	Shape       string `json:"shape,omitempty"`
	SizePercent int    `json:"sizePercent,omitempty"`
	Position    string `json:"position,omitempty"`
}

var (
	defaultForeground = color.RGBA{A: 255}
	defaultBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Resolve validates and normalizes c. It is total and idempotent.
func Resolve(c Config) Style {
	s := Style{
		ModuleShape:     lookup(moduleShapeNames, c.ModuleShape, ModuleSquare),
		EyeShape:        lookup(eyeShapeNames, c.EyeShape, EyeSquare),
		Foreground:      ParseColor(c.Foreground, defaultForeground),
		Transparent:     c.Transparent,
		ErrorCorrection: qrforge.ParseECLevel(c.ErrorCorrection),
	}

	if strings.EqualFold(strings.TrimSpace(c.Background), "transparent") {
		s.Transparent = true
		s.Background = defaultBackground
	} else {
		s.Background = ParseColor(c.Background, defaultBackground)
	}

	if g := c.Gradient; g != nil {
		from, okFrom := parseHex(g.From)
		to, okTo := parseHex(g.To)
		if okFrom && okTo {
			s.Gradient = &Gradient{From: from, To: to}
		}
	}

	if l := c.Logo; l != nil {
		s.Logo = &Logo{
			Shape:       lookup(logoShapeNames, l.Shape, LogoSquare),
			SizePercent: clampLogoPercent(l.SizePercent),
			Position:    lookup(logoPositionNames, l.Position, LogoCenter),
		}
	}

	return s
}

func clampLogoPercent(p int) int {
	switch {
	case p == 0:
		return DefaultLogoPercent
	case p < MinLogoPercent:
		return MinLogoPercent
	case p > MaxLogoPercent:
		return MaxLogoPercent
	}
	return p
}

// ParseColor parses "#rrggbb", "rrggbb" or "#rgb" into an opaque colour and
// returns def for anything else.
func ParseColor(s string, def color.RGBA) color.RGBA {
	if c, ok := parseHex(s); ok {
		return c
	}
	return def
}

func parseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
