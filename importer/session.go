// Package importer converts a scene graph into engine resources.
package importer

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/binzume/lmoconv/converter"
	"github.com/binzume/lmoconv/fbx"
	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/gltfutil"
	"github.com/binzume/lmoconv/lmo"
	"github.com/binzume/lmoconv/scene"
)

// ImportMesh is one material slot of a source mesh.
type ImportMesh struct {
	Source   *scene.Mesh
	Material *scene.Material
	Slot     int
	// Submesh is the slot suffix of the name, -1 for single material meshes.
	Submesh int
	LOD     int
	Skinned bool
	// BoneIndex is set when the mesh node itself is a bone.
	BoneIndex int
	Physics   bool

	Indices       []uint32
	VertexData    []byte
	Attributes    []lmo.Attribute
	AABB          geom.AABB
	RadiusSquared float32
}

func (m *ImportMesh) VertexSize() int {
	size := 0
	for _, a := range m.Attributes {
		size += a.Size()
	}
	return size
}

func (m *ImportMesh) VertexCount() int {
	if len(m.VertexData) == 0 {
		return 0
	}
	return len(m.VertexData) / m.VertexSize()
}

type ImportAnimation struct {
	Stack *scene.AnimationStack
	Name  string
	// RootMotionBone is an index into the bones, -1 for none.
	RootMotionBone int
}

type ImportTexture struct {
	// Path as stored in the source.
	Path string
	// Src is the resolved file.
	Src   string
	Valid bool
	// Resized is the locator of a downscaled copy, if any.
	Resized string
}

type ImportMaterial struct {
	Source   *scene.Material
	Textures [scene.TextureCount]*ImportTexture
}

// Session holds the state of one import. SetSource resets it.
type Session struct {
	cfg *Config

	src    string
	srcDir string
	scene  *scene.Scene

	unitScale       float32
	orientation     Orientation
	rootOrientation Orientation

	meshes     []*ImportMesh
	materials  []*ImportMaterial
	animations []*ImportAnimation
	bones      []*scene.Node

	postprocessed bool
}

func NewSession(cfg *Config) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Session{cfg: cfg}
}

func (s *Session) Config() *Config                  { return s.cfg }
func (s *Session) Meshes() []*ImportMesh            { return s.meshes }
func (s *Session) Materials() []*ImportMaterial     { return s.materials }
func (s *Session) Animations() []*ImportAnimation   { return s.animations }
func (s *Session) Bones() []*scene.Node             { return s.bones }
func (s *Session) Orientation() Orientation         { return s.orientation }
func (s *Session) SetRootOrientation(o Orientation) { s.rootOrientation = o }

func (s *Session) reset() {
	s.src, s.srcDir, s.scene = "", "", nil
	s.meshes = nil
	s.materials = nil
	s.animations = nil
	s.bones = nil
	s.postprocessed = false
}

// LoadScene parses an FBX or glTF file.
func LoadScene(path string) (*scene.Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb", ".vrm":
		doc, err := gltfutil.Load(path)
		if err != nil {
			return nil, err
		}
		return converter.NewGLTFToSceneConverter(&converter.GLTFToSceneOption{BaseDir: filepath.Dir(path)}).Convert(doc)
	}
	doc, err := fbx.Load(path)
	if err != nil {
		return nil, err
	}
	return converter.NewFBXToSceneConverter(nil).Convert(doc)
}

// SetSource loads path and gathers everything needed by the writers.
func (s *Session) SetSource(path string) error {
	s.reset()
	sc, err := LoadScene(path)
	if err != nil {
		return &ImportError{Kind: ErrSourceLoad, Artifact: path, Err: err}
	}
	return s.SetScene(path, sc)
}

// SetScene starts a new import of an already loaded scene. src names the source file.
func (s *Session) SetScene(src string, sc *scene.Scene) error {
	s.reset()
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	o, err := orientationOf(sc.Settings.UpAxis, sc.Settings.UpAxisSign)
	if err != nil {
		return err
	}
	s.src = src
	s.srcDir = filepath.Dir(src)
	s.scene = sc
	s.orientation = o
	s.rootOrientation = o
	s.unitScale = 1
	if sc.Settings.UnitScaleFactor > 0 {
		s.unitScale = float32(sc.Settings.UnitScaleFactor * 0.01)
	}

	s.gatherMeshes()
	s.gatherAnimations()
	s.gatherMaterials()
	s.gatherBones()
	log.Printf("%s: %d meshes, %d materials, %d bones, %d animations", src, len(s.meshes), len(s.materials), len(s.bones), len(s.animations))
	return nil
}

func (s *Session) gatherMeshes() {
	minLOD := 2
	for _, m := range s.scene.Meshes {
		if m.Geometry == nil {
			continue
		}
		materials := m.Materials
		if len(materials) == 0 {
			materials = []*scene.Material{nil}
		}
		for slot, mat := range materials {
			mesh := &ImportMesh{
				Source:    m,
				Material:  mat,
				Slot:      slot,
				Submesh:   -1,
				Skinned:   !s.cfg.IgnoreSkeleton && m.Geometry.Skin != nil,
				BoneIndex: -1,
				Physics:   s.cfg.Physics,
			}
			if len(materials) > 1 {
				mesh.Submesh = slot
			}
			mesh.LOD = detectMeshLOD(mesh)
			if mesh.LOD < minLOD {
				minLOD = mesh.LOD
			}
			s.meshes = append(s.meshes, mesh)
		}
	}
	// LOD1 is the first level when no mesh is named LOD0
	if minLOD == 1 {
		for _, m := range s.meshes {
			m.LOD--
		}
	}
}

func (s *Session) gatherAnimations() {
	for _, stack := range s.scene.AnimationStacks {
		anim := &ImportAnimation{Stack: stack, Name: "anim", RootMotionBone: -1}
		if take := s.takeInfo(stack); take != nil {
			if take.Name != "" {
				anim.Name = take.Name
			} else if take.Filename != "" {
				base := filepath.Base(filepath.FromSlash(take.Filename))
				anim.Name = strings.TrimSuffix(base, filepath.Ext(base))
			}
		}
		s.animations = append(s.animations, anim)
	}
}

func (s *Session) takeInfo(stack *scene.AnimationStack) *scene.TakeInfo {
	if t := s.scene.TakeInfo(stack.Name); t != nil {
		return t
	}
	if strings.HasPrefix(stack.Name, "AnimStack::") {
		return s.scene.TakeInfo(strings.TrimPrefix(stack.Name, "AnimStack::"))
	}
	return nil
}

func (s *Session) boneIndex(n *scene.Node) int {
	for i, b := range s.bones {
		if b == n {
			return i
		}
	}
	return -1
}
