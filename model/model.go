// Package model evaluates the parametric deformation models that turn
// recorded per-frame parameters into vertex positions: the SMPL-X body model
// and the rigid object model used for grasped objects and tables.
package model

import (
	"github.com/netisu/grabview/seq"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Model maps a batch of parameters to vertex positions.
type Model interface {
	Forward(p Params) (*Output, error)
	NumVertices() int
	BatchSize() int
}

// Params maps a parameter name to a (batch x width) matrix.
type Params map[string]*mat.Dense

// ToParams converts recorded trajectories into a batch of parameters.
// Single-row trajectories are repeated for every frame.
func ToParams(raw map[string]seq.Array, batch int) (Params, error) {
	p := Params{}
	for name, a := range raw {
		rows, cols := a.Rows(), a.Cols()
		if cols == 0 {
			return nil, errors.Errorf("model: param %s is empty", name)
		}
		switch rows {
		case batch:
			p[name] = mat.NewDense(batch, cols, append([]float64(nil), a.Data...))
		case 1:
			d := mat.NewDense(batch, cols, nil)
			for t := 0; t < batch; t++ {
				d.SetRow(t, a.Data)
			}
			p[name] = d
		default:
			return nil, errors.Errorf("model: param %s has %d rows for batch %d", name, rows, batch)
		}
	}
	return p, nil
}

// get returns the named param after checking its shape. A missing param is
// reported as nil; callers treat it as zeros.
func (p Params) get(name string, batch, width int) (*mat.Dense, error) {
	d, ok := p[name]
	if !ok {
		return nil, nil
	}
	r, c := d.Dims()
	if r != batch {
		return nil, errors.Errorf("model: param %s has batch %d, want %d", name, r, batch)
	}
	if c != width {
		return nil, errors.Errorf("model: param %s has width %d, want %d", name, c, width)
	}
	return d, nil
}

// rowOf copies row t of d into dst; a nil d yields zeros.
func rowOf(d *mat.Dense, t int, dst []float64) []float64 {
	if d == nil {
		for i := range dst {
			dst[i] = 0
		}
		return dst
	}
	return mat.Row(dst, t, d)
}

// Output holds vertex positions for every frame of a batch, frame-major.
type Output struct {
	T, V     int
	Vertices []r3.Vec
}

func newOutput(t, v int) *Output {
	return &Output{T: t, V: v, Vertices: make([]r3.Vec, t*v)}
}

// Shape is (T, V, 3).
func (o *Output) Shape() [3]int {
	return [3]int{o.T, o.V, 3}
}

// Frame returns the vertices of frame t. The slice aliases o.
func (o *Output) Frame(t int) []r3.Vec {
	return o.Vertices[t*o.V : (t+1)*o.V]
}

// Evaluate converts raw trajectories and runs m over the whole batch.
func Evaluate(m Model, raw map[string]seq.Array) (*Output, error) {
	p, err := ToParams(raw, m.BatchSize())
	if err != nil {
		return nil, err
	}
	out, err := m.Forward(p)
	if err != nil {
		return nil, err
	}
	if out.T != m.BatchSize() || out.V != m.NumVertices() {
		return nil, errors.Errorf("model: output shape %v, want (%d, %d, 3)", out.Shape(), m.BatchSize(), m.NumVertices())
	}
	return out, nil
}
