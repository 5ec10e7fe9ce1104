package scene

import (
	"math"

	"github.com/binzume/lmoconv/geom"
)

type Node struct {
	ID     int64
	Name   string
	Kind   string
	Parent *Node

	Translation geom.Vector3
	Rotation    geom.Vector3 // euler degrees
	Scaling     geom.Vector3

	RotationOrder  geom.RotationOrder
	PreRotation    geom.Vector3
	PostRotation   geom.Vector3
	RotationOffset geom.Vector3
	RotationPivot  geom.Vector3
	ScalingOffset  geom.Vector3
	ScalingPivot   geom.Vector3

	GeometricTranslation geom.Vector3
	GeometricRotation    geom.Vector3
	GeometricScaling     geom.Vector3
}

// NewNode returns a node with identity transforms and XYZ rotation order.
func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Scaling:          geom.Vector3{X: 1, Y: 1, Z: 1},
		GeometricScaling: geom.Vector3{X: 1, Y: 1, Z: 1},
		RotationOrder:    geom.RotationOrderZYX,
	}
}

func eulerMatrix(v *geom.Vector3, order geom.RotationOrder) *geom.Matrix4 {
	const d2r = math.Pi / 180
	return geom.NewEulerRotationMatrix4(v.X*d2r, v.Y*d2r, v.Z*d2r, order)
}

func translate(v *geom.Vector3) *geom.Matrix4 {
	return geom.NewTranslateMatrix4(v.X, v.Y, v.Z)
}

// EvalLocal returns the local transform for the given translation and euler rotation (degrees).
func (n *Node) EvalLocal(t, r *geom.Vector3) *geom.Matrix4 {
	s := &n.Scaling
	negPost := n.PostRotation.Scale(-1)
	return translate(t).
		Mul(translate(&n.RotationOffset)).
		Mul(translate(&n.RotationPivot)).
		Mul(eulerMatrix(&n.PreRotation, geom.RotationOrderZYX)).
		Mul(eulerMatrix(r, n.RotationOrder)).
		Mul(eulerMatrix(negPost, geom.RotationOrderXYZ)).
		Mul(translate(n.RotationPivot.Scale(-1))).
		Mul(translate(&n.ScalingOffset)).
		Mul(translate(&n.ScalingPivot)).
		Mul(geom.NewScaleMatrix4(s.X, s.Y, s.Z)).
		Mul(translate(n.ScalingPivot.Scale(-1)))
}

func (n *Node) LocalMatrix() *geom.Matrix4 {
	return n.EvalLocal(&n.Translation, &n.Rotation)
}

func (n *Node) GlobalMatrix() *geom.Matrix4 {
	if n.Parent == nil {
		return n.LocalMatrix()
	}
	return n.Parent.GlobalMatrix().Mul(n.LocalMatrix())
}

// GeometricMatrix is the offset applied to the geometry only.
func (n *Node) GeometricMatrix() *geom.Matrix4 {
	s := &n.GeometricScaling
	return translate(&n.GeometricTranslation).
		Mul(eulerMatrix(&n.GeometricRotation, geom.RotationOrderZYX)).
		Mul(geom.NewScaleMatrix4(s.X, s.Y, s.Z))
}

// Depth counts the node and its ancestors. A root node has depth 1.
func (n *Node) Depth() int {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	return depth
}
