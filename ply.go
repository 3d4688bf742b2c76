package grabview

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/fileformats"
)

func LoadPLY(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadPLYFromReader(file)
}

// LoadPLYFromReader reads ascii and binary PLY files in file order. Only
// vertex x/y/z and the face index list are kept; other elements and
// properties are skipped.
func LoadPLYFromReader(r io.Reader) (*Mesh, error) {
	pr, err := fileformats.NewPLYReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "ply")
	}

	var vertices []Vector
	var faces [][3]int
	for row := 0; ; row++ {
		values, el, err := pr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "ply: row %d", row)
		}
		switch el.Name {
		case "vertex":
			v, err := plyVertex(el, values)
			if err != nil {
				return nil, errors.Wrapf(err, "ply: vertex %d", len(vertices))
			}
			vertices = append(vertices, v)
		case "face":
			idx, err := plyFace(el, values)
			if err != nil {
				return nil, errors.Wrapf(err, "ply: face row %d", row)
			}
			for k := 1; k < len(idx)-1; k++ {
				faces = append(faces, [3]int{idx[0], idx[k], idx[k+1]})
			}
		}
	}
	mesh := NewMesh(vertices, faces)
	return mesh, mesh.Validate()
}

func plyVertex(el *fileformats.PLYElement, values []fileformats.PLYValue) (Vector, error) {
	var v Vector
	for i, prop := range el.Properties {
		var dst *float64
		switch prop.Name {
		case "x":
			dst = &v.X
		case "y":
			dst = &v.Y
		case "z":
			dst = &v.Z
		default:
			continue
		}
		x, err := plyScalar(values[i])
		if err != nil {
			return v, errors.Wrap(err, prop.Name)
		}
		*dst = x
	}
	return v, nil
}

func plyFace(el *fileformats.PLYElement, values []fileformats.PLYValue) ([]int, error) {
	for i, prop := range el.Properties {
		if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
			continue
		}
		list, ok := values[i].(fileformats.PLYValueList)
		if !ok {
			return nil, errors.Errorf("%s is not a list", prop.Name)
		}
		idx := make([]int, len(list.Values))
		for k, val := range list.Values {
			x, err := plyScalar(val)
			if err != nil {
				return nil, err
			}
			idx[k] = int(x)
		}
		return idx, nil
	}
	return nil, nil
}

func plyScalar(v fileformats.PLYValue) (float64, error) {
	switch v := v.(type) {
	case fileformats.PLYValueInt8:
		return float64(v.Value), nil
	case fileformats.PLYValueUint8:
		return float64(v.Value), nil
	case fileformats.PLYValueInt16:
		return float64(v.Value), nil
	case fileformats.PLYValueUint16:
		return float64(v.Value), nil
	case fileformats.PLYValueInt32:
		return float64(v.Value), nil
	case fileformats.PLYValueUint32:
		return float64(v.Value), nil
	case fileformats.PLYValueInt64:
		return float64(v.Value), nil
	case fileformats.PLYValueUint64:
		return float64(v.Value), nil
	case fileformats.PLYValueFloat32:
		return float64(v.Value), nil
	case fileformats.PLYValueFloat64:
		return v.Value, nil
	}
	return 0, errors.Errorf("unexpected value %T", v)
}
