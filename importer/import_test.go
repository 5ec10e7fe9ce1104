package importer

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binzume/lmoconv/lmo"
	"github.com/binzume/lmoconv/scene"
	"gopkg.in/yaml.v2"
)

func writePNG(t *testing.T, path string, w, h int) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func texturedScene() *scene.Scene {
	sc := chainSkinScene()
	mat := &scene.Material{Name: "Skin"}
	mat.Textures[scene.TextureDiffuse] = &scene.Texture{FileName: "C:/work/textures/skin.png", RelativeFileName: "textures/skin.png"}
	mat.Textures[scene.TextureNormal] = &scene.Texture{FileName: "missing_n.png"}
	sc.Meshes[0].Materials = []*scene.Material{mat}
	arm := sc.Nodes[2]
	layer := &scene.AnimationLayer{CurveNodes: []*scene.CurveNode{{Bone: arm, Property: scene.PropertyRotation, Curves: [3]*scene.Curve{
		{Times: []float64{0, 1}, Values: []float32{0, 30}},
	}}}}
	sc.AnimationStacks = []*scene.AnimationStack{{Name: "walk", Layers: []*scene.AnimationLayer{layer}}}
	sc.Takes = []*scene.TakeInfo{{Name: "walk", LocalTimeTo: 1}}
	return sc
}

func TestImportToDir(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(srcDir, "textures"), 0755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(srcDir, "textures", "skin.png"), 64, 32)

	cfg := DefaultConfig()
	cfg.TextureMaxSize = 16
	cfg.Physics = true
	cfg.Submodels = true
	cfg.Prefab = true
	cfg.CreateImpostor = true
	s := NewSession(cfg)
	src := filepath.Join(srcDir, "body.fbx")
	if err := s.SetScene(src, texturedScene()); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteAll(NewDirOutput(outDir)); err != nil {
		t.Fatal(err)
	}

	for name, kind := range map[string]string{"body.lmo": "model", "Cube.fbx.lmo": "model", "walk.ani": "animation", "body.phy": "physics"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Error(err)
			continue
		}
		if got, err := lmo.Detect(data); got != kind || err != nil {
			t.Error(name, got, err)
		}
	}

	model, err := lmo.NewParser(mustOpen(t, filepath.Join(outDir, "body.lmo"))).ReadModel()
	if err != nil {
		t.Fatal(err)
	}
	if len(model.Meshes) != 2 || model.Meshes[1].Name != "impostor" || len(model.Bones) != 2 {
		t.Error("model", len(model.Meshes), len(model.Bones))
	}

	mat, err := os.ReadFile(filepath.Join(srcDir, "skin.mat"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(mat)), "\n")
	if len(lines) != 4 || lines[0] != `shader "pipelines/standard.shd"` || !strings.HasSuffix(lines[1], `/textures/skin.png"`) || lines[3] != `texture ""` {
		t.Error("material", lines)
	}
	if data, err := os.ReadFile(filepath.Join(srcDir, "body_impostor.mat")); err != nil || string(data) != "shader \"pipelines/standard.shd\"\n" {
		t.Error("impostor material", string(data), err)
	}

	var meta textureMeta
	data, err := os.ReadFile(filepath.Join(srcDir, "textures", "skin.meta"))
	if err != nil {
		t.Fatal(err)
	}
	if err := yaml.Unmarshal(data, &meta); err != nil || !meta.SRGB || meta.NormalMap {
		t.Error("meta", string(data), err)
	}
	if _, err := os.Stat(filepath.Join(srcDir, "missing_n.meta")); err == nil {
		t.Error("meta written for a missing texture")
	}

	img, err := png.DecodeConfig(mustOpen(t, filepath.Join(outDir, "skin.png")))
	if err != nil || img.Width != 16 || img.Height != 8 {
		t.Error("resized texture", img, err)
	}

	var prefab Prefab
	data, err = os.ReadFile(filepath.Join(outDir, "body.fab"))
	if err != nil {
		t.Fatal(err)
	}
	if err := yaml.Unmarshal(data, &prefab); err != nil {
		t.Fatal(err)
	}
	if len(prefab.Entities) != 2 || prefab.Entities[1].Source != "Cube.fbx:"+src || prefab.Entities[1].Prefab>>32 != 1 {
		t.Error("prefab", string(data))
	}

	// existing materials are kept
	if err := os.WriteFile(filepath.Join(srcDir, "skin.mat"), []byte("custom"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteMaterials(nil); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(filepath.Join(srcDir, "skin.mat")); string(data) != "custom" {
		t.Error("material overwritten", string(data))
	}
}

func TestSubmodelNamedLikeSource(t *testing.T) {
	sc := newScene()
	for _, name := range []string{"cube", "other"} {
		node := scene.NewNode(name)
		sc.Nodes = append(sc.Nodes, node)
		sc.Meshes = append(sc.Meshes, &scene.Mesh{Node: node, Geometry: cubeGeometry()})
	}
	cfg := DefaultConfig()
	cfg.Submodels = true
	s := NewSession(cfg)
	if err := s.SetScene(filepath.Join(t.TempDir(), "cube.fbx"), sc); err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	if err := s.WriteAll(NewDirOutput(outDir)); err != nil {
		t.Fatal(err)
	}

	for name, meshes := range map[string]int{"cube.lmo": 2, "cube.fbx.lmo": 1, "other.fbx.lmo": 1} {
		model, err := lmo.NewParser(mustOpen(t, filepath.Join(outDir, name))).ReadModel()
		if err != nil {
			t.Error(name, err)
			continue
		}
		if len(model.Meshes) != meshes {
			t.Error(name, len(model.Meshes))
		}
	}
}

func mustOpen(t *testing.T, path string) *os.File {
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestMissingOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Submodels = true
	s := newTestSession(texturedScene(), cfg)
	s.src = filepath.Join(t.TempDir(), "cube.fbx")
	s.srcDir = filepath.Dir(s.src)

	out := newMemOutput()
	out.fail = ".ani:"
	err := s.WriteAll(out)
	if !errors.Is(err, ErrMissingOutput) {
		t.Error("error", err)
	}
	if _, ok := out.files[s.src]; !ok {
		t.Error("model not written", out.files)
	}
	if _, ok := out.files["Cube.fbx:"+s.src]; !ok {
		t.Error("submodel not written")
	}
}

func TestImportSourceErrors(t *testing.T) {
	s := NewSession(nil)
	err := s.Import(filepath.Join(t.TempDir(), "none.fbx"), newMemOutput())
	if !errors.Is(err, ErrSourceLoad) {
		t.Error("missing source", err)
	}

	s = newTestSession(chainSkinScene(), nil)
	s.scene.Meshes[0].Geometry.Skin.Clusters[0].Indices[0] = -1
	out := newMemOutput()
	if err := s.WriteAll(out); !errors.Is(err, ErrDataIntegrity) || len(out.files) != 0 {
		t.Error("integrity", err, len(out.files))
	}
}

func TestImportFBX(t *testing.T) {
	src, err := filepath.Abs("../testdata/cube.fbx")
	if err != nil {
		t.Fatal(err)
	}
	s := NewSession(nil)
	out := newMemOutput()
	if err := s.SetSource(src); err != nil {
		t.Fatal(err)
	}
	if len(s.Meshes()) != 2 || len(s.Bones()) != 2 || len(s.Animations()) != 1 {
		t.Fatal("session", len(s.Meshes()), len(s.Bones()), len(s.Animations()))
	}
	model, err := s.BuildModel()
	if err != nil {
		t.Fatal(err)
	}
	if len(model.Meshes) != 2 || model.Meshes[0].Name != "Cube_0" {
		t.Error("meshes", len(model.Meshes))
	}
	if err := s.WriteAnimations(out); err != nil {
		t.Fatal(err)
	}
	data, ok := out.files["Take 001.ani:"+src]
	if !ok {
		t.Fatal("animation not written", out.files)
	}
	if kind, _ := lmo.Detect(data); kind != "animation" {
		t.Error("detect", kind)
	}
}
