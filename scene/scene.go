// Package scene is the read-only scene graph handed to the importer.
// Source adapters build it once; nothing downstream mutates it.
package scene

import (
	"github.com/binzume/lmoconv/geom"
)

// Animated node properties.
const (
	PropertyTranslation = "Lcl Translation"
	PropertyRotation    = "Lcl Rotation"
	PropertyScaling     = "Lcl Scaling"
)

type Settings struct {
	// UnitScaleFactor in centimeters per unit (100 for meters).
	UnitScaleFactor float64
	// UpAxis is 0 for X, 1 for Y and 2 for Z. UpAxisSign is 1 or -1.
	UpAxis     int
	UpAxisSign int
	// Seconds.
	TimeSpanStart float64
	TimeSpanStop  float64
}

type Scene struct {
	Settings        Settings
	Nodes           []*Node
	Meshes          []*Mesh
	AnimationStacks []*AnimationStack
	Takes           []*TakeInfo
}

// TakeInfo describes the time range of a take, in seconds.
type TakeInfo struct {
	Name          string
	Filename      string
	LocalTimeFrom float64
	LocalTimeTo   float64
}

func (s *Scene) TakeInfo(name string) *TakeInfo {
	for _, t := range s.Takes {
		if t.Name == name {
			return t
		}
	}
	return nil
}

type Mesh struct {
	Node      *Node
	Geometry  *Geometry
	Materials []*Material // slots. may contain nil
}

// Geometry is triangulated and expanded to one vertex per triangle corner.
// Optional channels are nil or have len(Vertices) entries.
type Geometry struct {
	Vertices []geom.Vector3
	Normals  []geom.Vector3
	UVs      []geom.Vector2
	Colors   []geom.Vector4
	Tangents []geom.Vector3
	// Materials holds the slot of each triangle. nil when every triangle uses slot 0.
	Materials []int
	Skin      *Skin
}

func (g *Geometry) TriangleCount() int {
	return len(g.Vertices) / 3
}

type Skin struct {
	Clusters []*Cluster
}

// Cluster binds geometry vertices to one bone.
type Cluster struct {
	Link    *Node
	Indices []int // into Geometry.Vertices
	Weights []float64
	// TransformLink is the bone's global transform at bind time. nil if unknown.
	TransformLink *geom.Matrix4
}

type Material struct {
	Name         string
	DiffuseColor geom.Vector3
	Textures     [TextureCount]*Texture
}

type TextureType int

const (
	TextureDiffuse TextureType = iota
	TextureNormal
	TextureSpecular
	TextureCount
)

type Texture struct {
	FileName         string
	RelativeFileName string
}

type AnimationStack struct {
	Name   string
	Layers []*AnimationLayer
}

type AnimationLayer struct {
	Name       string
	CurveNodes []*CurveNode
}

// CurveNode returns the curve node animating prop of bone, or nil.
func (l *AnimationLayer) CurveNode(bone *Node, prop string) *CurveNode {
	for _, n := range l.CurveNodes {
		if n.Bone == bone && n.Property == prop {
			return n
		}
	}
	return nil
}

type CurveNode struct {
	Bone     *Node
	Property string
	Curves   [3]*Curve // X, Y, Z. nil when the axis is not animated
}

// Curve keys. Times are in seconds.
type Curve struct {
	Times  []float64
	Values []float32
}
