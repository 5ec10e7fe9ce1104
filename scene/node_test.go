package scene

import (
	"testing"

	"github.com/binzume/lmoconv/geom"
)

func TestNodeGlobalMatrix(t *testing.T) {
	const eps = 0.0001

	root := NewNode("root")
	root.Translation = geom.Vector3{X: 1}
	root.Rotation = geom.Vector3{Z: 90}

	child := NewNode("child")
	child.Parent = root
	child.Translation = geom.Vector3{X: 2}

	p := child.GlobalMatrix().ApplyTo(&geom.Vector3{})
	if p.Sub(&geom.Vector3{X: 1, Y: 2}).Len() > eps {
		t.Error("child origin", p)
	}
	if child.Depth() != 2 || root.Depth() != 1 {
		t.Error("depth", child.Depth(), root.Depth())
	}
}

func TestNodeEvalLocal(t *testing.T) {
	const eps = 0.0001

	n := NewNode("n")
	n.Scaling = geom.Vector3{X: 2, Y: 2, Z: 2}
	n.PreRotation = geom.Vector3{X: 90}

	m := n.EvalLocal(&geom.Vector3{Y: 3}, &geom.Vector3{})
	if m.Translation().Sub(&geom.Vector3{Y: 3}).Len() > eps {
		t.Error("translation", m.Translation())
	}
	// pre rotation X 90 maps Y to Z
	v := m.ApplyToVector(&geom.Vector3{Y: 1})
	if v.Sub(&geom.Vector3{Z: 2}).Len() > eps {
		t.Error("pre rotation", v)
	}

	// rotation pivot keeps the pivot fixed
	n = NewNode("pivot")
	n.RotationPivot = geom.Vector3{X: 1}
	n.Rotation = geom.Vector3{Z: 180}
	p := n.LocalMatrix().ApplyTo(&geom.Vector3{X: 1})
	if p.Sub(&geom.Vector3{X: 1}).Len() > eps {
		t.Error("pivot", p)
	}
}

func TestNodeGeometricMatrix(t *testing.T) {
	n := NewNode("g")
	n.GeometricTranslation = geom.Vector3{Z: 5}
	if n.GeometricMatrix().Translation().Z != 5 {
		t.Error("geometric translation", n.GeometricMatrix())
	}
}

func TestAnimationLayerCurveNode(t *testing.T) {
	bone := NewNode("bone")
	tn := &CurveNode{Bone: bone, Property: PropertyTranslation}
	rn := &CurveNode{Bone: bone, Property: PropertyRotation}
	layer := &AnimationLayer{CurveNodes: []*CurveNode{tn, rn}}
	if layer.CurveNode(bone, PropertyRotation) != rn || layer.CurveNode(bone, PropertyScaling) != nil {
		t.Error("curve node lookup")
	}
	if layer.CurveNode(NewNode("other"), PropertyTranslation) != nil {
		t.Error("other bone")
	}
}
