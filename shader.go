package grabview

import (
	"math"
)

// Shader shader interface
type Shader interface {
	Vertex(Vertex) Vertex
	Fragment(Vertex) Color
}

// PhongShader lights interpolated vertex colors with one directional light.
type PhongShader struct {
	Matrix         Matrix
	LightDirection Vector
	CameraPosition Vector
	AmbientColor   Color
	DiffuseColor   Color
	SpecularColor  Color
	SpecularPower  float64
	// TwoSided lights back faces as if they faced the light. Table tops
	// and open object scans have no consistent winding.
	TwoSided bool
}

// NewPhongShader f
func NewPhongShader(matrix Matrix, lightDirection, cameraPosition Vector, ambient Color, diffuse Color) *PhongShader {
	specular := Color{1, 1, 1, 1}
	return &PhongShader{
		Matrix:         matrix,
		LightDirection: lightDirection.Normalize(),
		CameraPosition: cameraPosition,
		AmbientColor:   ambient,
		DiffuseColor:   diffuse,
		SpecularColor:  specular,
		SpecularPower:  0,
		TwoSided:       true,
	}
}

// Vertex f
func (shader *PhongShader) Vertex(v Vertex) Vertex {
	v.Output = shader.Matrix.MulPositionW(v.Position)
	return v
}

// Fragment f
func (shader *PhongShader) Fragment(v Vertex) Color {
	color := v.Color
	light := shader.AmbientColor
	d := v.Normal.Dot(shader.LightDirection)
	if shader.TwoSided {
		d = math.Abs(d)
	}
	diffuse := math.Max(d, 0)
	light = light.Add(shader.DiffuseColor.MulScalar(diffuse))
	if diffuse > 0 && shader.SpecularPower > 0 {
		camera := shader.CameraPosition.Sub(v.Position).Normalize()
		reflected := shader.LightDirection.Negate().Reflect(v.Normal)
		specular := math.Max(camera.Dot(reflected), 0)
		if specular > 0 {
			specular = math.Pow(specular, shader.SpecularPower)
			light = light.Add(shader.SpecularColor.MulScalar(specular))
		}
	}
	return color.Mul(light).Min(White).Alpha(color.A)
}
