package geom

import (
	"testing"
)

func TestTriangulate(t *testing.T) {
	tris := Triangulate([]*Vector3{
		{0, 0, 0},
		{0, 1, 0},
		{0, 1, 1},
	})
	if len(tris) != 1 {
		t.Error("triangle", tris)
	}

	tris2 := Triangulate([]*Vector3{
		{0, 0, 0},
		{0, 1, 0},
		{0, 1, 1},
		{0, 0, 1},
	})
	if len(tris2) != 2 {
		t.Error("quad", tris2)
	}

	// non-convex
	tris3 := Triangulate([]*Vector3{
		{0, 0, 0},
		{0, 1, 0},
		{0, 1, 1},
		{0, 0.8, 0.2},
	})
	if len(tris3) != 2 {
		t.Error("non-convex", tris3)
	}
	t.Log(tris3)

	// Empty
	if len(Triangulate(nil)) != 0 {
		t.Error("not empty")
	}
}

func TestAABB(t *testing.T) {
	b := NewAABBAtOrigin()
	b.AddPoint(NewVector3(1, 2, 3))
	b.AddPoint(NewVector3(2, 1, 4))
	if b.Min != (Vector3{}) || b.Max != (Vector3{2, 2, 4}) {
		t.Error("aabb", b)
	}
	if *b.Center() != (Vector3{1, 1, 2}) {
		t.Error("center", b.Center())
	}
	s := b.Scale(2)
	if s.Max != (Vector3{4, 4, 8}) {
		t.Error("scale", s)
	}
	c := b.Corners()
	if c[0] != b.Min || c[7] != b.Max {
		t.Error("corners", c)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(2, 0, 1) != 1 || Clamp(-1, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("clamp")
	}
}
