package grabview

import "github.com/fogleman/simplify"

// Simplify returns a decimated copy of v keeping roughly factor of its faces.
// Vertex identity is not preserved, so the copy takes the color of the first
// vertex; use it only for uniformly colored views such as wireframes.
func (v *MeshView) Simplify(factor float64) *MeshView {
	if factor >= 1 || len(v.Faces) == 0 {
		return v
	}
	triangles := make([]*simplify.Triangle, 0, len(v.Faces))
	for _, f := range v.Faces {
		triangles = append(triangles, simplify.NewTriangle(
			toSimplify(v.Vertices[f[0]]),
			toSimplify(v.Vertices[f[1]]),
			toSimplify(v.Vertices[f[2]]),
		))
	}
	simplified := simplify.NewMesh(triangles).Simplify(factor)

	index := make(map[simplify.Vector]int)
	var vertices []Vector
	faces := make([][3]int, 0, len(simplified.Triangles))
	lookup := func(p simplify.Vector) int {
		if i, ok := index[p]; ok {
			return i
		}
		i := len(vertices)
		index[p] = i
		vertices = append(vertices, Vector{p.X, p.Y, p.Z})
		return i
	}
	for _, t := range simplified.Triangles {
		faces = append(faces, [3]int{lookup(t.V1), lookup(t.V2), lookup(t.V3)})
	}

	c := White
	if len(v.Colors) > 0 {
		c = v.Colors[0]
	}
	out := NewMeshView(vertices, faces, c)
	out.Smooth = v.Smooth
	out.Wireframe = v.Wireframe
	return out
}

func toSimplify(p Vector) simplify.Vector {
	return simplify.Vector{X: p.X, Y: p.Y, Z: p.Z}
}
