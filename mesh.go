package grabview

import "fmt"

// Mesh is indexed triangle geometry. Faces index into Vertices with
// counter-clockwise winding.
type Mesh struct {
	Vertices []Vector
	Faces    [][3]int
}

func NewMesh(vertices []Vector, faces [][3]int) *Mesh {
	return &Mesh{Vertices: vertices, Faces: faces}
}

// Validate checks that every face refers to an existing vertex.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("grabview: face %d refers to vertex %d of %d", i, idx, n)
			}
		}
	}
	return nil
}

func (m *Mesh) BoundingBox() Box {
	if len(m.Vertices) == 0 {
		return Box{}
	}
	box := Box{m.Vertices[0], m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		box.Min = box.Min.Min(v)
		box.Max = box.Max.Max(v)
	}
	return box
}

// VertexNormals averages the area weighted face normals around each vertex.
func VertexNormals(vertices []Vector, faces [][3]int) []Vector {
	normals := make([]Vector, len(vertices))
	for _, f := range faces {
		a, b, c := vertices[f[0]], vertices[f[1]], vertices[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		normals[f[0]] = normals[f[0]].Add(n)
		normals[f[1]] = normals[f[1]].Add(n)
		normals[f[2]] = normals[f[2]].Add(n)
	}
	for i, n := range normals {
		normals[i] = n.Normalize()
	}
	return normals
}

// Edges returns each undirected edge of faces once, in first-seen order.
func Edges(faces [][3]int) [][2]int {
	seen := make(map[[2]int]struct{}, len(faces)*3/2)
	var edges [][2]int
	for _, f := range faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			edges = append(edges, key)
		}
	}
	return edges
}

type Box struct {
	Min, Max Vector
}

func (a Box) Size() Vector {
	return a.Max.Sub(a.Min)
}

func (a Box) Center() Vector {
	return a.Min.Add(a.Size().DivScalar(2))
}
