package gltfutil

import (
	"math"
	"path/filepath"

	"github.com/binzume/lmoconv/geom"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func Load(path string) (*gltf.Document, error) {
	return gltf.Open(path)
}

func isIdentity(m [16]float32) bool {
	return m == [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} || m == [16]float32{}
}

// NodeTRS returns the local transform of a node as translation, rotation and scale.
func NodeTRS(n *gltf.Node) (*geom.Vector3, *geom.Quaternion, *geom.Vector3) {
	if !isIdentity(n.Matrix) {
		return geom.NewMatrix4FromSlice(n.Matrix[:]).Decompose()
	}
	rot := geom.NewQuaternionFromArray(n.Rotation)
	if n.Rotation == [4]float32{} {
		rot = geom.IdentityQuaternion()
	}
	scale := geom.NewVector3FromArray(n.Scale)
	if n.Scale == [3]float32{} {
		scale = geom.NewVector3(1, 1, 1)
	}
	return geom.NewVector3FromArray(n.Translation), rot, scale
}

// QuaternionToEulerDegrees converts to euler angles applied in X, Y, Z order.
func QuaternionToEulerDegrees(q *geom.Quaternion) *geom.Vector3 {
	e := geom.NewEulerFromQuaternion(q, geom.RotationOrderZYX)
	return e.Vector3.Scale(180 / math.Pi)
}

// Parents returns the parent index of every node, -1 for roots.
func Parents(doc *gltf.Document) []int {
	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(parents) {
				parents[c] = i
			}
		}
	}
	return parents
}

// ReadInverseBindMatrices returns one matrix per joint. Identity when absent.
func ReadInverseBindMatrices(doc *gltf.Document, skin *gltf.Skin) ([]*geom.Matrix4, error) {
	r := make([]*geom.Matrix4, len(skin.Joints))
	for i := range r {
		r[i] = geom.NewMatrix4()
	}
	if skin.InverseBindMatrices == nil {
		return r, nil
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[*skin.InverseBindMatrices], nil)
	if err != nil {
		return nil, err
	}
	if mats, ok := data.([][4][4]float32); ok {
		for i := 0; i < len(mats) && i < len(r); i++ {
			for col, v := range mats[i] {
				copy(r[i][col*4:col*4+4], v[:])
			}
		}
	}
	return r, nil
}

// TextureURI returns the image uri of a texture, resolved against dir.
func TextureURI(doc *gltf.Document, texture uint32, dir string) string {
	if int(texture) >= len(doc.Textures) || doc.Textures[texture].Source == nil {
		return ""
	}
	img := doc.Images[*doc.Textures[texture].Source]
	if img.URI == "" || img.IsEmbeddedResource() {
		return ""
	}
	if filepath.IsAbs(img.URI) {
		return img.URI
	}
	return filepath.Join(dir, filepath.FromSlash(img.URI))
}
