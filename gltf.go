package grabview

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF loads a .gltf or .glb file and merges all triangle primitives
// into one indexed Mesh. Node transforms are not applied.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	var vertices []Vector
	var faces [][3]int

	for _, mesh := range doc.Meshes {
		for _, primitive := range mesh.Primitives {
			// We only support Triangles (mode 4)
			if primitive.Mode != gltf.PrimitiveTriangles {
				continue
			}

			posIdx, ok := primitive.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, err
			}

			var indices []uint32
			if primitive.Indices != nil {
				// ReadIndices automatically converts uint8/uint16/uint32 to []uint32
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
				if err != nil {
					return nil, err
				}
			} else {
				indices = make([]uint32, len(positions))
				for k := range indices {
					indices[k] = uint32(k)
				}
			}

			base := len(vertices)
			for _, p := range positions {
				vertices = append(vertices, Vector{float64(p[0]), float64(p[1]), float64(p[2])})
			}
			for i := 0; i+2 < len(indices); i += 3 {
				faces = append(faces, [3]int{
					base + int(indices[i]),
					base + int(indices[i+1]),
					base + int(indices[i+2]),
				})
			}
		}
	}

	if len(faces) == 0 {
		return nil, errors.New("no triangles found in gltf")
	}
	m := NewMesh(vertices, faces)
	return m, m.Validate()
}
