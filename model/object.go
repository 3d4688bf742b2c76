package model

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Object is a rigid model: every frame rotates the template by
// global_orient and shifts it by transl. The template is treated as row
// vectors multiplied on the right by the rotation, matching how the
// recorded object orientations were fitted.
type Object struct {
	Template []r3.Vec
	Batch    int
}

func NewObject(template []r3.Vec, batch int) *Object {
	return &Object{Template: template, Batch: batch}
}

func (o *Object) NumVertices() int { return len(o.Template) }
func (o *Object) BatchSize() int   { return o.Batch }

func (o *Object) Forward(p Params) (*Output, error) {
	if o.Batch <= 0 {
		return nil, errors.Errorf("model: object batch size %d", o.Batch)
	}
	orient, err := p.get("global_orient", o.Batch, 3)
	if err != nil {
		return nil, err
	}
	transl, err := p.get("transl", o.Batch, 3)
	if err != nil {
		return nil, err
	}

	out := newOutput(o.Batch, len(o.Template))
	aa := make([]float64, 3)
	tr := make([]float64, 3)
	for t := 0; t < o.Batch; t++ {
		rowOf(orient, t, aa)
		rowOf(transl, t, tr)
		// v R == R^T v
		m := rigid(rodrigues(aa[0], aa[1], aa[2]).Transpose(), r3.Vec{X: tr[0], Y: tr[1], Z: tr[2]})
		frame := out.Frame(t)
		for i, v := range o.Template {
			frame[i] = fromVec3(mgl64.TransformCoordinate(toVec3(v), m))
		}
	}
	return out, nil
}
