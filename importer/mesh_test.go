package importer

import (
	"bytes"
	"testing"

	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/lmo"
	"github.com/binzume/lmoconv/scene"
)

func TestCubeModel(t *testing.T) {
	for _, scale := range []float32{1, 2.5} {
		cfg := DefaultConfig()
		cfg.MeshScale = scale
		s := newTestSession(cubeScene(), cfg)
		model, err := s.BuildModel()
		if err != nil {
			t.Fatal(err)
		}
		if len(model.Meshes) != 1 {
			t.Fatal("meshes", len(model.Meshes))
		}
		m := model.Meshes[0]
		if m.VertexCount() != 8 || len(m.Indices) != 36 {
			t.Error("vertices", m.VertexCount(), len(m.Indices))
		}
		if m.Name != "Cube" || m.Material != "assets/default.mat" {
			t.Error("mesh", m.Name, m.Material)
		}
		want := geom.AABB{Min: geom.Vector3{X: -scale, Y: -scale, Z: -scale}, Max: geom.Vector3{X: scale, Y: scale, Z: scale}}
		if model.AABB != want {
			t.Error("aabb", model.AABB, want)
		}
		if geom.Abs(model.BoundingRadius-scale*1.7320508) > 0.0001 {
			t.Error("radius", model.BoundingRadius)
		}
		if len(model.Bones) != 0 || len(model.LODs) != 1 || model.LODs[0].Distance != lmo.NoLODDistance {
			t.Error("lods", model.LODs)
		}
	}
}

func TestMeshOrigin(t *testing.T) {
	sc := cubeScene()
	sc.Nodes[0].Translation = geom.Vector3{X: 5}
	for _, c := range []struct {
		origin   Origin
		min, max geom.Vector3
	}{
		{OriginSource, geom.Vector3{X: 4, Y: -1, Z: -1}, geom.Vector3{X: 6, Y: 1, Z: 1}},
		{OriginCenter, geom.Vector3{X: 4, Y: -1, Z: -1}, geom.Vector3{X: 6, Y: 1, Z: 1}},
		{OriginBottom, geom.Vector3{X: 4, Y: 0, Z: -1}, geom.Vector3{X: 6, Y: 2, Z: 1}},
	} {
		cfg := DefaultConfig()
		cfg.Origin = c.origin
		cfg.CancelMeshTransforms = c.origin != OriginSource
		if c.origin != OriginSource {
			c.min.X, c.max.X = -1, 1
		}
		s := newTestSession(sc, cfg)
		if err := s.postprocessMeshes(); err != nil {
			t.Fatal(err)
		}
		aabb := s.Meshes()[0].AABB
		// the mesh box always contains the origin
		if aabb.Min != *c.min.Min(&geom.Vector3{}) || aabb.Max != *c.max.Max(&geom.Vector3{}) {
			t.Error(c.origin, aabb)
		}
	}
}

func TestVertexDedup(t *testing.T) {
	d := newVertexDedup(3)
	var data []byte
	records := [][]byte{{1, 2, 3}, {1, 2, 4}, {1, 2, 3}, {9, 0, 0}, {1, 2, 4}}
	want := []int{0, 1, 0, 2, 1}
	for i, r := range records {
		if idx := d.add(&data, r); idx != want[i] {
			t.Error("record", i, idx, want[i])
		}
	}
	if !bytes.Equal(data, []byte{1, 2, 3, 1, 2, 4, 9, 0, 0}) {
		t.Error("data", data)
	}
}

func TestMeshAttributes(t *testing.T) {
	sc := cubeScene()
	g := sc.Meshes[0].Geometry
	for range g.Vertices {
		g.Normals = append(g.Normals, geom.Vector3{Y: 1})
		g.UVs = append(g.UVs, geom.Vector2{X: 0.25, Y: 0.25})
		g.Colors = append(g.Colors, geom.Vector4{X: 1, W: 1})
	}
	cfg := DefaultConfig()
	cfg.VertexColors = true
	s := newTestSession(sc, cfg)
	model, err := s.BuildModel()
	if err != nil {
		t.Fatal(err)
	}
	m := model.Meshes[0]
	wantAttrs := []lmo.AttributeSemantic{lmo.SemanticPosition, lmo.SemanticNormal, lmo.SemanticTexCoord0, lmo.SemanticColor0}
	if len(m.Attributes) != len(wantAttrs) {
		t.Fatal("attributes", m.Attributes)
	}
	for i, a := range m.Attributes {
		if a.Semantic != wantAttrs[i] {
			t.Error("attribute", i, a)
		}
	}
	if m.VertexSize() != 12+4+8+4 {
		t.Error("vertex size", m.VertexSize())
	}
	v := m.Vertices[:m.VertexSize()]
	if !bytes.Equal(v[12:16], []byte{128, 255, 128, 0}) {
		t.Error("normal", v[12:16])
	}
	if !bytes.Equal(v[24:28], []byte{255, 0, 0, 255}) {
		t.Error("color", v[24:28])
	}
}

func TestMaterialSlots(t *testing.T) {
	sc := cubeScene()
	red := &scene.Material{Name: "Red"}
	blue := &scene.Material{Name: "Blue Metal"}
	sc.Meshes[0].Materials = []*scene.Material{red, blue}
	g := sc.Meshes[0].Geometry
	for i := 0; i < g.TriangleCount(); i++ {
		g.Materials = append(g.Materials, i/6)
	}

	s := newTestSession(sc, nil)
	model, err := s.BuildModel()
	if err != nil {
		t.Fatal(err)
	}
	if len(model.Meshes) != 2 {
		t.Fatal("meshes", len(model.Meshes))
	}
	names := []string{"Cube_0", "Cube_1"}
	materials := []string{"assets/red.mat", "assets/blue_metal.mat"}
	for i, m := range model.Meshes {
		if m.Name != names[i] || m.Material != materials[i] {
			t.Error("mesh", i, m.Name, m.Material)
		}
		// 6 of the 12 triangles
		if len(m.Indices) != 18 {
			t.Error("indices", i, len(m.Indices))
		}
	}
	if len(s.Materials()) != 2 {
		t.Error("materials", len(s.Materials()))
	}
}

func TestMeshLODs(t *testing.T) {
	sc := newScene()
	for _, name := range []string{"Tree_LOD2", "Tree_LOD1", "Rock_LOD1", "Tree_lod3"} {
		n := scene.NewNode(name)
		sc.Meshes = append(sc.Meshes, &scene.Mesh{Node: n, Geometry: cubeGeometry()})
	}
	cfg := DefaultConfig()
	cfg.CreateImpostor = true
	cfg.LODDistances = []float32{10, 100, 1000, 10000}
	s := newTestSession(sc, cfg)
	model, err := s.BuildModel()
	if err != nil {
		t.Fatal(err)
	}
	names := []string{"Tree_LOD1", "Rock_LOD1", "Tree_LOD2", "Tree_lod3", "impostor"}
	for i, m := range model.Meshes {
		if m.Name != names[i] {
			t.Error("mesh order", i, m.Name)
		}
	}
	want := []lmo.LOD{{ToMesh: 1, Distance: 100}, {ToMesh: 2, Distance: 10000}, {ToMesh: 3, Distance: 1000000}, {ToMesh: 4, Distance: 100000000}}
	if len(model.LODs) != len(want) {
		t.Fatal("lods", model.LODs)
	}
	for i := range want {
		if model.LODs[i] != want[i] {
			t.Error("lod", i, model.LODs[i])
		}
		if i > 0 && model.LODs[i].ToMesh < model.LODs[i-1].ToMesh {
			t.Error("lods must not decrease", model.LODs)
		}
	}
	imp := model.Meshes[4]
	if imp.Material != "assets/cube_impostor.mat" || imp.VertexCount() != 4 || imp.IndexSize() != 2 {
		t.Error("impostor", imp.Material, imp.VertexCount())
	}
	// the quad covers the box from every view
	for i := 0; i < 4; i++ {
		p := imp.Position(i)
		if geom.Abs(p.X) < 1 || geom.Abs(p.Y) < 1 {
			t.Error("impostor vertex", p)
		}
	}
}

func TestModelDeterminism(t *testing.T) {
	encode := func() []byte {
		s := newTestSession(chainSkinScene(), nil)
		model, err := s.BuildModel()
		if err != nil {
			t.Fatal(err)
		}
		data, err := encodeModel(model)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	a, b := encode(), encode()
	if !bytes.Equal(a, b) {
		t.Error("output differs between runs")
	}
	if kind, _ := lmo.Detect(a); kind != "model" {
		t.Error("detect", kind)
	}
}

func TestPhysics(t *testing.T) {
	for _, convex := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.Physics = true
		cfg.MakeConvex = convex
		sc := cubeScene()
		sc.Meshes = append(sc.Meshes, &scene.Mesh{Node: scene.NewNode("Other"), Geometry: cubeGeometry()})
		s := newTestSession(sc, cfg)
		g, err := s.BuildPhysics()
		if err != nil {
			t.Fatal(err)
		}
		if len(g.Vertices) != 16 || g.Convex != convex {
			t.Error("vertices", len(g.Vertices))
		}
		if convex && g.Indices != nil {
			t.Error("convex geometry has indices")
		}
		if !convex {
			if len(g.Indices) != 72 || g.Indices[71] < 8 {
				t.Error("indices", len(g.Indices))
			}
		}
	}

	s := newTestSession(cubeScene(), nil)
	if g, err := s.BuildPhysics(); g != nil || err != nil {
		t.Error("physics disabled", g, err)
	}
}

func TestOrientation(t *testing.T) {
	for _, c := range []struct {
		axis, sign int
		in, want   geom.Vector3
	}{
		{1, 1, geom.Vector3{X: 1, Y: 2, Z: 3}, geom.Vector3{X: 1, Y: 2, Z: 3}},
		{2, 1, geom.Vector3{Z: 1}, geom.Vector3{Y: 1}},
		{2, -1, geom.Vector3{Z: -1}, geom.Vector3{Y: 1}},
		{0, 1, geom.Vector3{X: 1}, geom.Vector3{Y: 1}},
		{0, -1, geom.Vector3{X: -1}, geom.Vector3{Y: 1}},
	} {
		o, err := orientationOf(c.axis, c.sign)
		if err != nil {
			t.Fatal(err)
		}
		if got := o.FixVector(&c.in); got != c.want {
			t.Error(c.axis, c.sign, got)
		}
	}
	if _, err := orientationOf(1, -1); err == nil {
		t.Error("Y down must be rejected")
	}

	sc := cubeScene()
	sc.Settings.UpAxisSign = -1
	if err := NewSession(nil).SetScene("cube.fbx", sc); err == nil {
		t.Error("SetScene accepted Y down")
	}
}

func TestPackVector(t *testing.T) {
	for _, c := range []struct {
		v    geom.Vector3
		want [4]byte
	}{
		{geom.Vector3{}, [4]byte{128, 128, 128, 0}},
		{geom.Vector3{X: 1, Y: -1, Z: 0.5}, [4]byte{255, 1, 191, 0}},
		{geom.Vector3{X: 2, Y: -2}, [4]byte{255, 1, 128, 0}},
	} {
		if got := packVector(&c.v); got != c.want {
			t.Error(c.v, got)
		}
	}
}
