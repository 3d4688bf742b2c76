package grabview

import (
	"math"
	"testing"
)

func flatTriangle(z float64, c Color, clockwise bool) *Triangle {
	v := func(x, y float64) Vertex {
		return Vertex{Position: V(x, y, z), Color: c}
	}
	a, b, d := v(-0.9, -0.9), v(0.9, -0.9), v(0, 0.9)
	if clockwise {
		return NewTriangle(a, d, b)
	}
	return NewTriangle(a, b, d)
}

func TestContextDepthOrder(t *testing.T) {
	red, green := Named["red"], Named["green"]
	for _, nearestFirst := range []bool{true, false} {
		dc := NewContext(16, 16, NewSolidColorShader(Identity()))
		dc.ClearColorBufferWith(White)

		// many overlapping triangles drawn by concurrent workers; the
		// nearest one must win every pixel it covers
		var triangles []*Triangle
		for i := 0; i < 64; i++ {
			triangles = append(triangles, flatTriangle(0.1+float64(i)/100, red, i%2 == 1))
		}
		nearest := flatTriangle(0.05, green, false)
		if nearestFirst {
			triangles = append([]*Triangle{nearest}, triangles...)
		} else {
			triangles = append(triangles, nearest)
		}
		dc.DrawTriangles(triangles)

		got := dc.ColorBuffer.NRGBAAt(8, 8)
		if got.R != 0 || got.G != 255 {
			t.Errorf("nearestFirst=%v: center = %v, want green", nearestFirst, got)
		}
		if z := dc.DepthBuffer[8*16+8]; math.Abs(z-0.525) > 1e-9 {
			t.Errorf("nearestFirst=%v: depth = %v", nearestFirst, z)
		}
	}
}

func TestContextDrawsBothFaces(t *testing.T) {
	for _, clockwise := range []bool{false, true} {
		dc := NewContext(16, 16, NewSolidColorShader(Identity()))
		dc.ClearColorBufferWith(White)
		dc.DrawTriangle(flatTriangle(0, Named["blue"], clockwise))
		if got := dc.ColorBuffer.NRGBAAt(8, 8); got.B != 255 || got.R != 0 {
			t.Errorf("clockwise=%v: center = %v, want blue", clockwise, got)
		}
	}
}
