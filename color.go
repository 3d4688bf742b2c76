package grabview

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

var White = Color{1, 1, 1, 1}

// Named is the palette the renderer refers to by name.
var Named = map[string]Color{
	"pink":   {1.00, 0.75, 0.80, 1},
	"purple": {0.63, 0.13, 0.94, 1},
	"red":    {1.00, 0.00, 0.00, 1},
	"green":  {0.00, 1.00, 0.00, 1},
	"yellow": {1.00, 1.00, 0.00, 1},
	"brown":  {1.00, 0.25, 0.25, 1},
	"blue":   {0.00, 0.00, 1.00, 1},
	"white":  {1.00, 1.00, 1.00, 1},
	"orange": {1.00, 0.65, 0.00, 1},
	"grey":   {0.75, 0.75, 0.75, 1},
	"black":  {0.00, 0.00, 0.00, 1},
}

type Color struct {
	R, G, B, A float64
}

// NamedColor looks a color up in Named.
func NamedColor(name string) (Color, error) {
	c, ok := Named[name]
	if !ok {
		return Color{}, fmt.Errorf("grabview: unknown color %q", name)
	}
	return c, nil
}

func MakeColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	const d = 0xffff
	return Color{float64(r) / d, float64(g) / d, float64(b) / d, float64(a) / d}
}

// HexColor parses "rgb", "rrggbb" or "rrggbbaa", with or without a leading #.
func HexColor(x string) Color {
	x = strings.TrimPrefix(x, "#")
	var r, g, b, a int
	a = 255
	switch len(x) {
	case 3:
		fmt.Sscanf(x, "%1x%1x%1x", &r, &g, &b)
		r = (r << 4) | r
		g = (g << 4) | g
		b = (b << 4) | b
	case 6:
		fmt.Sscanf(x, "%02x%02x%02x", &r, &g, &b)
	case 8:
		fmt.Sscanf(x, "%02x%02x%02x%02x", &r, &g, &b, &a)
	}
	const d = 255
	return Color{float64(r) / d, float64(g) / d, float64(b) / d, float64(a) / d}
}

func (c Color) NRGBA() color.NRGBA {
	const d = 255
	r := Clamp(c.R, 0, 1)
	g := Clamp(c.G, 0, 1)
	b := Clamp(c.B, 0, 1)
	a := Clamp(c.A, 0, 1)
	return color.NRGBA{uint8(r * d), uint8(g * d), uint8(b * d), uint8(a * d)}
}

func (a Color) Add(b Color) Color {
	return Color{a.R + b.R, a.G + b.G, a.B + b.B, a.A + b.A}
}

func (a Color) Mul(b Color) Color {
	return Color{a.R * b.R, a.G * b.G, a.B * b.B, a.A * b.A}
}

func (a Color) MulScalar(b float64) Color {
	return Color{a.R * b, a.G * b, a.B * b, a.A * b}
}

func (a Color) Min(b Color) Color {
	return Color{math.Min(a.R, b.R), math.Min(a.G, b.G), math.Min(a.B, b.B), math.Min(a.A, b.A)}
}

func (a Color) Alpha(alpha float64) Color {
	return Color{a.R, a.G, a.B, alpha}
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
