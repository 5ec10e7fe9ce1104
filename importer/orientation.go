package importer

import (
	"fmt"

	"github.com/binzume/lmoconv/geom"
)

// Orientation is the up axis of the source scene.
type Orientation int

const (
	OrientationYUp Orientation = iota
	OrientationZUp
	OrientationZMinusUp
	OrientationXMinusUp
	OrientationXUp
)

func orientationOf(axis, sign int) (Orientation, error) {
	if sign == 0 {
		sign = 1
	}
	switch {
	case axis == 0 && sign > 0:
		return OrientationXUp, nil
	case axis == 0:
		return OrientationXMinusUp, nil
	case axis == 1 && sign > 0:
		return OrientationYUp, nil
	case axis == 2 && sign > 0:
		return OrientationZUp, nil
	case axis == 2:
		return OrientationZMinusUp, nil
	}
	return 0, fmt.Errorf("%w: unsupported up axis %d (sign %d)", ErrConfig, axis, sign)
}

// FixVector converts v to the engine's Y up coordinates.
func (o Orientation) FixVector(v *geom.Vector3) geom.Vector3 {
	switch o {
	case OrientationZUp:
		return geom.Vector3{X: v.X, Y: v.Z, Z: -v.Y}
	case OrientationZMinusUp:
		return geom.Vector3{X: v.X, Y: -v.Z, Z: v.Y}
	case OrientationXMinusUp:
		return geom.Vector3{X: v.Y, Y: -v.X, Z: v.Z}
	case OrientationXUp:
		return geom.Vector3{X: -v.Y, Y: v.X, Z: v.Z}
	}
	return *v
}

func (o Orientation) FixQuaternion(q *geom.Quaternion) geom.Quaternion {
	v := o.FixVector(&geom.Vector3{X: q.X, Y: q.Y, Z: q.Z})
	return geom.Quaternion{X: v.X, Y: v.Y, Z: v.Z, W: q.W}
}
