package grabview

import "fmt"

// MeshView is one colored mesh as it is submitted to a MeshViewer. It owns
// its vertex slice for the lifetime of a frame.
type MeshView struct {
	Vertices  []Vector
	Faces     [][3]int
	Colors    []Color
	Smooth    bool
	Wireframe bool
}

type ViewOption func(*MeshView)

// Smooth interpolates vertex normals across faces instead of flat shading.
func Smooth() ViewOption {
	return func(v *MeshView) { v.Smooth = true }
}

// Wireframe draws only the edges of the mesh, unlit.
func Wireframe() ViewOption {
	return func(v *MeshView) { v.Wireframe = true }
}

// NewMeshView builds a view with every vertex set to c.
func NewMeshView(vertices []Vector, faces [][3]int, c Color, opts ...ViewOption) *MeshView {
	colors := make([]Color, len(vertices))
	for i := range colors {
		colors[i] = c
	}
	v := &MeshView{Vertices: vertices, Faces: faces, Colors: colors}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func NewMeshViewFromMesh(m *Mesh, c Color, opts ...ViewOption) *MeshView {
	return NewMeshView(m.Vertices, m.Faces, c, opts...)
}

// SetVertexColors recolors the vertices whose entry in ids is true.
func (v *MeshView) SetVertexColors(c Color, ids []bool) error {
	if len(ids) != len(v.Colors) {
		return fmt.Errorf("grabview: vertex mask has %d entries for %d vertices", len(ids), len(v.Colors))
	}
	for i, ok := range ids {
		if ok {
			v.Colors[i] = c
		}
	}
	return nil
}

// SetColor sets every vertex to c.
func (v *MeshView) SetColor(c Color) {
	for i := range v.Colors {
		v.Colors[i] = c
	}
}

func (v *MeshView) vertex(i int, normals []Vector) Vertex {
	out := Vertex{Position: v.Vertices[i], Color: v.Colors[i]}
	if normals != nil {
		out.Normal = normals[i]
	}
	return out
}

func (v *MeshView) Triangles() []*Triangle {
	var normals []Vector
	if v.Smooth {
		normals = VertexNormals(v.Vertices, v.Faces)
	}
	triangles := make([]*Triangle, 0, len(v.Faces))
	for _, f := range v.Faces {
		t := NewTriangle(v.vertex(f[0], normals), v.vertex(f[1], normals), v.vertex(f[2], normals))
		t.FixNormals()
		triangles = append(triangles, t)
	}
	return triangles
}

func (v *MeshView) Lines() []*Line {
	edges := Edges(v.Faces)
	lines := make([]*Line, 0, len(edges))
	for _, e := range edges {
		lines = append(lines, NewLine(v.vertex(e[0], nil), v.vertex(e[1], nil)))
	}
	return lines
}
