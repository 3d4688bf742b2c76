package grabview

// SolidColorShader renders interpolated vertex colors without lighting.
type SolidColorShader struct {
	Matrix Matrix
}

func NewSolidColorShader(matrix Matrix) *SolidColorShader {
	return &SolidColorShader{matrix}
}

func (s *SolidColorShader) Vertex(v Vertex) Vertex {
	v.Output = s.Matrix.MulPositionW(v.Position)
	return v
}

func (s *SolidColorShader) Fragment(v Vertex) Color {
	return v.Color
}
