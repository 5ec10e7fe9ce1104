package geom

import "math"

// RotationOrder names the matrix product of the axis rotations, left to right.
// RotationOrderZYX is Rz*Ry*Rx, which rotates about X first.
type RotationOrder int

const (
	RotationOrderXYZ RotationOrder = iota
	RotationOrderYXZ
	RotationOrderZXY
	RotationOrderZYX
	RotationOrderXZY
	RotationOrderYZX
)

type EulerAngles struct {
	Vector3
	Order RotationOrder
}

func NewEuler(x, y, z float32, order RotationOrder) *EulerAngles {
	return &EulerAngles{Vector3: Vector3{x, y, z}, Order: order}
}

// NewEulerDegrees converts degrees to radians.
func NewEulerDegrees(v *Vector3, order RotationOrder) *EulerAngles {
	const d2r = math.Pi / 180
	return NewEuler(v.X*d2r, v.Y*d2r, v.Z*d2r, order)
}

func NewEulerFromQuaternion(q *Quaternion, order RotationOrder) *EulerAngles {
	return NewEulerFromMatrix4(NewRotationMatrix4FromQuaternion(q), order)
}

func clamp1(v float64) float64 {
	return math.Max(-1, math.Min(v, 1))
}

func NewEulerFromMatrix4(mat *Matrix4, order RotationOrder) *EulerAngles {
	const eps = 0.00000001
	m11, m21, m31 := float64(mat[0]), float64(mat[1]), float64(mat[2])
	m12, m22, m32 := float64(mat[4]), float64(mat[5]), float64(mat[6])
	m13, m23, m33 := float64(mat[8]), float64(mat[9]), float64(mat[10])

	var x, y, z float64
	switch order {
	case RotationOrderXYZ:
		y = math.Asin(clamp1(m13))
		if math.Abs(m13) < 1-eps {
			x = math.Atan2(-m23, m33)
			z = math.Atan2(-m12, m11)
		} else {
			x = math.Atan2(m32, m22)
		}
	case RotationOrderYXZ:
		x = math.Asin(-clamp1(m23))
		if math.Abs(m23) < 1-eps {
			y = math.Atan2(m13, m33)
			z = math.Atan2(m21, m22)
		} else {
			y = math.Atan2(-m31, m11)
		}
	case RotationOrderZXY:
		x = math.Asin(clamp1(m32))
		if math.Abs(m32) < 1-eps {
			y = math.Atan2(-m31, m33)
			z = math.Atan2(-m12, m22)
		} else {
			z = math.Atan2(m21, m11)
		}
	case RotationOrderZYX:
		y = math.Asin(-clamp1(m31))
		if math.Abs(m31) < 1-eps {
			x = math.Atan2(m32, m33)
			z = math.Atan2(m21, m11)
		} else {
			z = math.Atan2(-m12, m22)
		}
	case RotationOrderXZY:
		z = math.Asin(-clamp1(m12))
		if math.Abs(m12) < 1-eps {
			x = math.Atan2(m32, m22)
			y = math.Atan2(m13, m11)
		} else {
			x = math.Atan2(-m23, m33)
		}
	case RotationOrderYZX:
		z = math.Asin(clamp1(m21))
		if math.Abs(m21) < 1-eps {
			x = math.Atan2(-m23, m22)
			y = math.Atan2(-m31, m11)
		} else {
			y = math.Atan2(m13, m33)
		}
	}
	return NewEuler(Element(x), Element(y), Element(z), order)
}

func (v *EulerAngles) ToQuaternion() *Quaternion {
	cx := math.Cos(float64(v.X / 2))
	cy := math.Cos(float64(v.Y / 2))
	cz := math.Cos(float64(v.Z / 2))
	sx := math.Sin(float64(v.X / 2))
	sy := math.Sin(float64(v.Y / 2))
	sz := math.Sin(float64(v.Z / 2))

	// sign of the second product term per component
	var s [4]float64
	switch v.Order {
	case RotationOrderXYZ:
		s = [4]float64{1, -1, 1, -1}
	case RotationOrderYXZ:
		s = [4]float64{1, -1, -1, 1}
	case RotationOrderZXY:
		s = [4]float64{-1, 1, 1, -1}
	case RotationOrderZYX:
		s = [4]float64{-1, 1, -1, 1}
	case RotationOrderXZY:
		s = [4]float64{-1, -1, 1, 1}
	case RotationOrderYZX:
		s = [4]float64{1, 1, -1, -1}
	default:
		return IdentityQuaternion()
	}
	return &Quaternion{
		X: float32(sx*cy*cz + s[0]*cx*sy*sz),
		Y: float32(cx*sy*cz + s[1]*sx*cy*sz),
		Z: float32(cx*cy*sz + s[2]*sx*sy*cz),
		W: float32(cx*cy*cz + s[3]*sx*sy*sz),
	}
}

func (v *EulerAngles) ToMatrix4() *Matrix4 {
	return NewEulerRotationMatrix4(v.X, v.Y, v.Z, v.Order)
}
