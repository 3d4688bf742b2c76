package model

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// rodrigues converts an axis-angle vector to a rotation matrix.
func rodrigues(x, y, z float64) mgl64.Mat3 {
	aa := mgl64.Vec3{x, y, z}
	theta := aa.Len()
	if theta < 1e-12 {
		return mgl64.Ident3()
	}
	return mgl64.HomogRotate3D(theta, aa.Mul(1/theta)).Mat3()
}

// rigid is the homogeneous transform that rotates by r, then moves by t.
func rigid(r mgl64.Mat3, t r3.Vec) mgl64.Mat4 {
	return mgl64.Translate3D(t.X, t.Y, t.Z).Mul4(r.Mat4())
}

func toVec3(v r3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromVec3(v mgl64.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
