package grabview

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// EulerRotation composes rotations about the axes named in order, applying
// them left to right: for order "xzx" the result is Rx(c) * Rz(b) * Rx(a).
// Angles are in degrees.
func EulerRotation(angles [3]float64, order string) (mgl64.Mat3, error) {
	if len(order) != 3 {
		return mgl64.Mat3{}, fmt.Errorf("grabview: euler order %q must name three axes", order)
	}
	r := mgl64.Ident3()
	for i, theta := range angles {
		rad := mgl64.DegToRad(theta)
		var m mgl64.Mat3
		switch order[i] {
		case 'x':
			m = mgl64.Rotate3DX(rad)
		case 'y':
			m = mgl64.Rotate3DY(rad)
		case 'z':
			m = mgl64.Rotate3DZ(rad)
		default:
			return mgl64.Mat3{}, fmt.Errorf("grabview: unknown euler axis %q", order[i])
		}
		r = m.Mul3(r)
	}
	return r, nil
}

// CameraPose builds a camera-to-world transform from Euler angles and a
// camera position.
func CameraPose(angles [3]float64, order string, position Vector) (Matrix, error) {
	r, err := EulerRotation(angles, order)
	if err != nil {
		return Matrix{}, err
	}
	pose := mgl64.Translate3D(position.X, position.Y, position.Z).Mul4(r.Mat4())
	return MatrixFromMgl(pose), nil
}

// Inverse inverts a.
func (a Matrix) Inverse() Matrix {
	return MatrixFromMgl(a.Mgl().Inv())
}

// Mgl converts a to a column-major mathgl matrix.
func (a Matrix) Mgl() mgl64.Mat4 {
	return mgl64.Mat4FromRows(
		mgl64.Vec4{a.X00, a.X01, a.X02, a.X03},
		mgl64.Vec4{a.X10, a.X11, a.X12, a.X13},
		mgl64.Vec4{a.X20, a.X21, a.X22, a.X23},
		mgl64.Vec4{a.X30, a.X31, a.X32, a.X33},
	)
}

func MatrixFromMgl(m mgl64.Mat4) Matrix {
	return Matrix{
		m.At(0, 0), m.At(0, 1), m.At(0, 2), m.At(0, 3),
		m.At(1, 0), m.At(1, 1), m.At(1, 2), m.At(1, 3),
		m.At(2, 0), m.At(2, 1), m.At(2, 2), m.At(2, 3),
		m.At(3, 0), m.At(3, 1), m.At(3, 2), m.At(3, 3),
	}
}
