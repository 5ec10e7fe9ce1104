// Package lmo reads and writes the engine resource formats:
// models (.lmo), animations (.ani) and physics geometry (.phy).
package lmo

import (
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/binzume/lmoconv/geom"
)

const (
	ModelMagic       = 0x5f4c4d4f // '_LMO'
	ModelVersion     = 5
	AnimationMagic   = 0x5f4c4146 // '_LAF'
	AnimationVersion = 3
	PhysicsMagic     = 0x5f4c5048 // '_LPH'
	PhysicsVersion   = 1
)

// TimeUnit is the number of animation time units per second.
const TimeUnit = 1 << 16

// NoLODDistance is written for LODs without a distance limit.
const NoLODDistance float32 = math.MaxFloat32

type AttributeSemantic uint8

const (
	SemanticPosition AttributeSemantic = iota
	SemanticNormal
	SemanticTangent
	SemanticBitangent
	SemanticColor0
	SemanticColor1
	SemanticIndices
	SemanticWeights
	SemanticTexCoord0
	SemanticTexCoord1
)

var semanticNames = []string{"position", "normal", "tangent", "bitangent", "color0", "color1", "indices", "weights", "texcoord0", "texcoord1"}

func (s AttributeSemantic) String() string {
	if int(s) < len(semanticNames) {
		return semanticNames[s]
	}
	return "unknown"
}

type AttributeType uint8

const (
	TypeU8 AttributeType = iota
	TypeFloat
	TypeI16
)

func (t AttributeType) Size() int {
	switch t {
	case TypeU8:
		return 1
	case TypeI16:
		return 2
	}
	return 4
}

type Attribute struct {
	Semantic AttributeSemantic
	Type     AttributeType
	Count    uint8
}

func (a Attribute) Size() int {
	return a.Type.Size() * int(a.Count)
}

type Mesh struct {
	// Attributes in vertex byte order.
	Attributes []Attribute
	Material   string
	Name       string
	Indices    []uint32
	Vertices   []byte
}

func (m *Mesh) VertexSize() int {
	size := 0
	for _, a := range m.Attributes {
		size += a.Size()
	}
	return size
}

func (m *Mesh) VertexCount() int {
	size := m.VertexSize()
	if size == 0 {
		return 0
	}
	return len(m.Vertices) / size
}

// IndexSize is 2 when every vertex is addressable with 16 bits, otherwise 4.
func (m *Mesh) IndexSize() int {
	if m.VertexCount() > 1<<16 {
		return 4
	}
	return 2
}

// Position returns the position of vertex i. Position is always the first attribute.
func (m *Mesh) Position(i int) geom.Vector3 {
	off := i * m.VertexSize()
	var v [3]float32
	for k := range v {
		v[k] = math.Float32frombits(binary.LittleEndian.Uint32(m.Vertices[off+k*4:]))
	}
	return geom.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

type Bone struct {
	Name     string
	Parent   int // -1 for roots
	Position geom.Vector3
	Rotation geom.Quaternion
}

type LOD struct {
	ToMesh int
	// Squared distance.
	Distance float32
}

type Model struct {
	Version        uint32
	Meshes         []*Mesh
	BoundingRadius float32
	AABB           geom.AABB
	Bones          []*Bone
	LODs           []LOD
}

func NewModel() *Model {
	return &Model{Version: ModelVersion}
}

type PositionKey struct {
	Time  uint16
	Value geom.Vector3
}

type RotationKey struct {
	Time  uint16
	Value geom.Quaternion
}

type BoneTrack struct {
	NameHash  uint32
	Positions []PositionKey
	Rotations []RotationKey
}

type Animation struct {
	Version uint32
	// Length in TimeUnit.
	Length         uint32
	RootMotionBone int32
	Tracks         []*BoneTrack
}

func NewAnimation(seconds float64) *Animation {
	return &Animation{Version: AnimationVersion, Length: SecondsToTime(seconds), RootMotionBone: -1}
}

func SecondsToTime(s float64) uint32 {
	return uint32(s * TimeUnit)
}

func (a *Animation) Seconds() float64 {
	return float64(a.Length) / TimeUnit
}

// NameHash is the bone name hash stored in animation tracks.
func NameHash(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(name))
}

type PhysicsGeometry struct {
	Version  uint32
	Convex   bool
	Vertices []geom.Vector3
	// Triangle list. Not written for convex geometry.
	Indices []uint32
}
