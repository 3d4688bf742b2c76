package render

import (
	"path/filepath"

	"github.com/netisu/grabview"
	"github.com/netisu/grabview/model"
	"github.com/netisu/grabview/seq"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Scene is one sequence with vertex trajectories evaluated for every frame.
type Scene struct {
	Record *seq.Record

	Body, Object, Table                *model.Output
	BodyFaces, ObjectFaces, TableFaces [][3]int
}

// Evaluate loads the reference meshes of rec and runs the body, object and
// table models over all of its frames.
func Evaluate(cfg Config, rec *seq.Record) (*Scene, error) {
	meshRoot := filepath.Join(cfg.GrabPath, "..")
	s := &Scene{Record: rec}

	sbjMesh, err := grabview.LoadMesh(filepath.Join(meshRoot, rec.Body.Mesh))
	if err != nil {
		return nil, err
	}
	body, err := model.LoadBody(cfg.ModelPath, rec.Gender, rec.NComps, toR3(sbjMesh.Vertices), rec.Frames)
	if err != nil {
		return nil, err
	}
	if s.Body, err = model.Evaluate(body, rec.Body.Params); err != nil {
		return nil, errors.Wrap(err, "render: body")
	}
	s.BodyFaces = body.Faces

	if s.Object, s.ObjectFaces, err = evalRigid(filepath.Join(meshRoot, rec.Object.Mesh), rec.Object.Params, rec.Frames); err != nil {
		return nil, errors.Wrap(err, "render: object")
	}
	if s.Table, s.TableFaces, err = evalRigid(filepath.Join(meshRoot, rec.Table.Mesh), rec.Table.Params, rec.Frames); err != nil {
		return nil, errors.Wrap(err, "render: table")
	}
	return s, nil
}

func evalRigid(meshPath string, params map[string]seq.Array, frames int) (*model.Output, [][3]int, error) {
	mesh, err := grabview.LoadMesh(meshPath)
	if err != nil {
		return nil, nil, err
	}
	out, err := model.Evaluate(model.NewObject(toR3(mesh.Vertices), frames), params)
	if err != nil {
		return nil, nil, err
	}
	return out, mesh.Faces, nil
}

func toR3(vs []grabview.Vector) []r3.Vec {
	out := make([]r3.Vec, len(vs))
	for i, v := range vs {
		out[i] = r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
	}
	return out
}

func fromR3(vs []r3.Vec) []grabview.Vector {
	out := make([]grabview.Vector, len(vs))
	for i, v := range vs {
		out[i] = grabview.Vector{X: v.X, Y: v.Y, Z: v.Z}
	}
	return out
}
