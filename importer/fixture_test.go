package importer

import (
	"fmt"
	"strings"

	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/scene"
)

var cubeCorners = []geom.Vector3{
	{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
}

var cubeFaces = [][4]int{
	{0, 3, 2, 1}, {4, 5, 6, 7}, {0, 1, 5, 4}, {2, 3, 7, 6}, {1, 2, 6, 5}, {3, 0, 4, 7},
}

// cubeGeometry returns 12 triangles with one vertex per corner.
func cubeGeometry() *scene.Geometry {
	g := &scene.Geometry{}
	for _, f := range cubeFaces {
		for _, i := range []int{f[0], f[1], f[2], f[0], f[2], f[3]} {
			g.Vertices = append(g.Vertices, cubeCorners[i])
		}
	}
	return g
}

func newScene() *scene.Scene {
	return &scene.Scene{Settings: scene.Settings{UnitScaleFactor: 100, UpAxis: 1, UpAxisSign: 1}}
}

func cubeScene() *scene.Scene {
	sc := newScene()
	node := scene.NewNode("Cube")
	sc.Nodes = append(sc.Nodes, node)
	sc.Meshes = append(sc.Meshes, &scene.Mesh{Node: node, Geometry: cubeGeometry()})
	return sc
}

// chainScene has three bones, each animated from X=0 to X=1 and rotated around Z.
func chainScene() *scene.Scene {
	sc := newScene()
	layer := &scene.AnimationLayer{Name: "BaseLayer"}
	var parent *scene.Node
	for i := 0; i < 3; i++ {
		b := scene.NewNode(fmt.Sprintf("bone%d", i))
		b.Kind = "LimbNode"
		b.Parent = parent
		b.Translation = geom.Vector3{Y: 1}
		sc.Nodes = append(sc.Nodes, b)
		layer.CurveNodes = append(layer.CurveNodes,
			&scene.CurveNode{Bone: b, Property: scene.PropertyTranslation, Curves: [3]*scene.Curve{
				{Times: []float64{0, 1}, Values: []float32{0, 1}},
			}},
			&scene.CurveNode{Bone: b, Property: scene.PropertyRotation, Curves: [3]*scene.Curve{
				nil, nil, {Times: []float64{0, 0.5, 1}, Values: []float32{0, 45, 90}},
			}},
		)
		parent = b
	}
	sc.AnimationStacks = []*scene.AnimationStack{{Name: "AnimStack::walk", Layers: []*scene.AnimationLayer{layer}}}
	sc.Takes = []*scene.TakeInfo{{Name: "walk", LocalTimeFrom: 0, LocalTimeTo: 1}}
	sc.Settings.TimeSpanStop = 1
	return sc
}

func newTestSession(sc *scene.Scene, cfg *Config) *Session {
	s := NewSession(cfg)
	if err := s.SetScene("assets/cube.fbx", sc); err != nil {
		panic(err)
	}
	return s
}

// memOutput keeps resources in memory. Locators containing fail are rejected.
type memOutput struct {
	files map[string][]byte
	fail  string
}

func newMemOutput() *memOutput {
	return &memOutput{files: map[string][]byte{}}
}

func (o *memOutput) WriteResource(locator string, data []byte) error {
	if o.fail != "" && strings.Contains(locator, o.fail) {
		return &ImportError{Kind: ErrMissingOutput, Artifact: locator}
	}
	o.files[locator] = append([]byte(nil), data...)
	return nil
}
