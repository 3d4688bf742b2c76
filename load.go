package grabview

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LoadMesh picks a loader from the file extension.
func LoadMesh(path string) (*Mesh, error) {
	var (
		m   *Mesh
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		m, err = LoadPLY(path)
	case ".obj":
		m, err = LoadOBJ(path)
	case ".glb", ".gltf":
		m, err = LoadGLTF(path)
	default:
		return nil, errors.Errorf("grabview: unsupported mesh format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "grabview: load mesh %s", path)
	}
	return m, nil
}
