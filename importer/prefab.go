package importer

import (
	"hash/crc32"
	"path/filepath"
	"strings"

	"github.com/binzume/lmoconv/geom"
	"gopkg.in/yaml.v2"
)

const prefabVersion = 1

type PrefabTransform struct {
	Position geom.Vector3    `yaml:"position,flow"`
	Rotation geom.Quaternion `yaml:"rotation,flow"`
	Scale    float32         `yaml:"scale"`
}

type PrefabEntity struct {
	Prefab    uint64          `yaml:"prefab"`
	Parent    int             `yaml:"parent"`
	Transform PrefabTransform `yaml:"transform"`
	// Source is the submodel locator of a model instance.
	Source string `yaml:"source,omitempty"`
}

type Prefab struct {
	Version  int             `yaml:"version"`
	Entities []*PrefabEntity `yaml:"entities"`
}

func (s *Session) prefabLocator() string {
	base := filepath.Base(s.src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".fab:" + s.src
}

// BuildPrefab lists a root entity and one model instance per submodel.
func (s *Session) BuildPrefab() (*Prefab, error) {
	if err := s.postprocessMeshes(); err != nil {
		return nil, err
	}
	dir := filepath.ToSlash(s.srcDir)
	base := filepath.Base(s.src)
	id := uint64(crc32.ChecksumIEEE([]byte(dir + "/" + strings.TrimSuffix(base, filepath.Ext(base)) + ".fab")))
	identity := PrefabTransform{Rotation: geom.Quaternion{W: 1}, Scale: 1}

	p := &Prefab{Version: prefabVersion}
	p.Entities = append(p.Entities, &PrefabEntity{Prefab: id, Parent: -1, Transform: identity})
	for i, m := range s.meshes {
		p.Entities = append(p.Entities, &PrefabEntity{
			Prefab:    id | uint64(i+1)<<32,
			Parent:    0,
			Transform: identity,
			Source:    s.submodelLocator(m),
		})
	}
	return p, nil
}

func (s *Session) WritePrefab(out Output) error {
	p, err := s.BuildPrefab()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return out.WriteResource(s.prefabLocator(), data)
}
