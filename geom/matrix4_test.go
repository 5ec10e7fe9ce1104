package geom

import (
	"math"
	"testing"
)

func TestDecomposeMatrix(t *testing.T) {
	const eps = 0.00001

	pos := NewVector3(1, 2, 3)
	rot := NewEuler(10*math.Pi/180, 20*math.Pi/180, 30*math.Pi/180, RotationOrderZXY).ToQuaternion()
	scale := NewVector3(1.5, 1.6, 1.7)

	mat := NewTRSMatrix4(pos, rot, scale)
	pos1, rot1, scale1 := mat.Decompose()

	if pos.Sub(pos1).Len() > eps {
		t.Error("pos: ", pos, pos1)
	}
	if rot.Sub(rot1).Len() > eps {
		t.Error("rot: ", rot, rot1)
	}
	if scale.Sub(scale1).Len() > eps {
		t.Error("scale: ", scale, scale1)
	}

	mat2 := NewRotationMatrix4FromQuaternion(rot)
	pos1, rot1, scale1 = mat2.Decompose()
	if rot.Sub(rot1).Len() > eps {
		t.Error("rot: ", rot, rot1)
	}
	if pos1.Len() > eps {
		t.Error("pos: ", pos1)
	}
	if scale1.Sub(NewVector3(1, 1, 1)).Len() > eps {
		t.Error("scale: ", scale1)
	}
}

func TestMatrixInverse(t *testing.T) {
	const eps = 0.0001

	rot := NewEuler(0.3, 0.2, 0.1, RotationOrderZYX).ToQuaternion()
	mat := NewTRSMatrix4(NewVector3(4, 5, 6), rot, NewVector3(2, 2, 2))
	v := NewVector3(1, -2, 3)
	v2 := mat.Inverse().ApplyTo(mat.ApplyTo(v))
	if v.Sub(v2).Len() > eps {
		t.Error("inverse: ", v, v2)
	}

	id := mat.Mul(mat.Inverse())
	for i, e := range NewMatrix4() {
		if Abs(id[i]-e) > eps {
			t.Error("m * m^-1 != I", id)
			break
		}
	}
}

func TestMatrixTranslation(t *testing.T) {
	mat := NewTranslateMatrix4(1, 2, 3)
	if *mat.ApplyTo(&Vector3{}) != *NewVector3(1, 2, 3) {
		t.Error("translate", mat.ApplyTo(&Vector3{}))
	}
	if *mat.ApplyToVector(NewVector3(1, 0, 0)) != *NewVector3(1, 0, 0) {
		t.Error("direction must ignore translation")
	}
	mat.SetTranslation(&Vector3{})
	if mat.Translation().Len() != 0 {
		t.Error("SetTranslation", mat)
	}
}

func TestLookAt(t *testing.T) {
	const eps = 0.00001

	view := NewLookAtMatrix4(NewVector3(0, 0, 5), &Vector3{}, NewVector3(0, 1, 0))
	p := view.ApplyTo(&Vector3{})
	if p.Sub(NewVector3(0, 0, -5)).Len() > eps {
		t.Error("target must be in front of the camera", p)
	}

	// looking straight down must not produce NaN
	view = NewLookAtMatrix4(NewVector3(0, 5, 0), &Vector3{}, NewVector3(0, 1, 0))
	p = view.ApplyTo(NewVector3(1, 0, 0))
	if p.X != p.X || p.Y != p.Y || p.Z != p.Z {
		t.Error("NaN", p)
	}
}
