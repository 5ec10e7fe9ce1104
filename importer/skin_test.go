package importer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/scene"
)

// chainSkinScene is a cube skinned to two bones: the lower half to root, the upper half to arm.
func chainSkinScene() *scene.Scene {
	sc := cubeScene()
	root := scene.NewNode("root")
	arm := scene.NewNode("arm")
	arm.Parent = root
	arm.Translation = geom.Vector3{Y: 2}
	sc.Nodes = append(sc.Nodes, root, arm)

	g := sc.Meshes[0].Geometry
	lower := &scene.Cluster{Link: root, TransformLink: geom.NewMatrix4()}
	upper := &scene.Cluster{Link: arm, TransformLink: geom.NewTranslateMatrix4(0, 2, 0)}
	for i, v := range g.Vertices {
		c := lower
		if v.Y > 0 {
			c = upper
		}
		c.Indices = append(c.Indices, i)
		c.Weights = append(c.Weights, 1)
	}
	g.Skin = &scene.Skin{Clusters: []*scene.Cluster{lower, upper}}
	return sc
}

func TestSkeleton(t *testing.T) {
	s := newTestSession(chainSkinScene(), nil)
	model, err := s.BuildModel()
	if err != nil {
		t.Fatal(err)
	}
	if len(model.Bones) != 2 {
		t.Fatal("bones", len(model.Bones))
	}
	root, arm := model.Bones[0], model.Bones[1]
	if root.Name != "root" || root.Parent != -1 || arm.Name != "arm" || arm.Parent != 0 {
		t.Error("hierarchy", root, arm)
	}
	if arm.Position != (geom.Vector3{Y: 2}) || arm.Rotation != (geom.Quaternion{W: 1}) {
		t.Error("bind pose", arm.Position, arm.Rotation)
	}

	m := model.Meshes[0]
	if len(m.Attributes) != 3 || m.VertexSize() != 12+8+16 {
		t.Fatal("attributes", m.Attributes)
	}
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertices[i*m.VertexSize():]
		joint := int16(binary.LittleEndian.Uint16(v[12:]))
		w := math.Float32frombits(binary.LittleEndian.Uint32(v[20:]))
		p := m.Position(i)
		if (p.Y > 0) != (joint == 1) || w != 1 {
			t.Error("skin", i, p, joint, w)
		}
	}
}

func TestSortBones(t *testing.T) {
	a := scene.NewNode("a")
	b := scene.NewNode("b")
	c := scene.NewNode("c")
	d := scene.NewNode("d")
	b.Parent = a
	c.Parent = b
	s := &Session{bones: []*scene.Node{c, d, b, a}}
	s.sortBones()
	for i, bone := range s.bones {
		if p := s.boneIndex(bone.Parent); p >= i {
			t.Error("parent after child", bone.Name, p, i)
		}
	}
	if s.bones[0] != a || s.bones[2] != c || s.bones[3] != d {
		t.Error("order", s.bones)
	}
}

func TestRigidSkin(t *testing.T) {
	sc := chainScene()
	bone := sc.Nodes[1]
	sc.Meshes = append(sc.Meshes, &scene.Mesh{Node: bone, Geometry: cubeGeometry()})
	s := newTestSession(sc, nil)
	m := s.Meshes()[0]
	if !m.Skinned || m.BoneIndex != 1 {
		t.Fatal("rigid mesh", m.Skinned, m.BoneIndex)
	}
	skins, err := s.fillSkinInfo(m)
	if err != nil {
		t.Fatal(err)
	}
	if skins[0].Joints != [4]int16{1, 1, 1, 1} || skins[0].Weights != [4]float32{1, 0, 0, 0} {
		t.Error("skin", skins[0])
	}

	cfg := DefaultConfig()
	cfg.IgnoreSkeleton = true
	s = newTestSession(sc, cfg)
	if s.Meshes()[0].Skinned {
		t.Error("skinned while ignoring skeleton")
	}
}

func TestSkinWeights(t *testing.T) {
	var sk Skin
	for i, w := range []float32{0.05, 0.4, 0.2, 0.3, 0.1} {
		addInfluence(&sk, int16(i), w)
	}
	normalizeSkin(&sk)
	if sk.Joints != [4]int16{4, 1, 2, 3} {
		t.Error("joints", sk.Joints)
	}
	sum := sk.Weights[0] + sk.Weights[1] + sk.Weights[2] + sk.Weights[3]
	if geom.Abs(sum-1) > 0.01 {
		t.Error("sum", sum)
	}

	sk = Skin{}
	addInfluence(&sk, 3, 0.5)
	addInfluence(&sk, 5, 0.25)
	normalizeSkin(&sk)
	if sk.Count != 2 || sk.Joints != [4]int16{3, 5, 5, 5} || geom.Abs(sk.Weights[0]-2.0/3) > 0.0001 {
		t.Error("partial", sk)
	}

	sk = Skin{}
	addInfluence(&sk, 1, 0)
	normalizeSkin(&sk)
	if sk.Count != 0 {
		t.Error("zero sum", sk)
	}
}

func TestSkinIntegrity(t *testing.T) {
	for name, modify := range map[string]func(*scene.Skin){
		"zero weights": func(skin *scene.Skin) {
			for i := range skin.Clusters[0].Weights {
				skin.Clusters[0].Weights[i] = 0
			}
		},
		"out of range": func(skin *scene.Skin) {
			skin.Clusters[1].Indices[0] = 100
		},
		"length mismatch": func(skin *scene.Skin) {
			skin.Clusters[1].Weights = skin.Clusters[1].Weights[1:]
		},
	} {
		sc := chainSkinScene()
		modify(sc.Meshes[0].Geometry.Skin)
		s := newTestSession(sc, nil)
		if _, err := s.BuildModel(); !errors.Is(err, ErrDataIntegrity) {
			t.Error(name, err)
		}
	}
}
