package importer

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/binzume/lmoconv/scene"
)

// MaterialName returns the file name of the material without extension.
func MaterialName(m *scene.Material) string {
	if m == nil {
		return "default"
	}
	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, m.Name)
	return strings.ToLower(name)
}

// MeshName is the node name, else the parent name, else the material name.
// Meshes with several materials get the slot as suffix.
func MeshName(m *ImportMesh) string {
	node := m.Source.Node
	name := ""
	if node != nil {
		name = node.Name
		if name == "" && node.Parent != nil {
			name = node.Parent.Name
		}
	}
	if name == "" && m.Material != nil {
		name = m.Material.Name
	}
	if m.Submesh >= 0 {
		name += "_" + strconv.Itoa(m.Submesh)
	}
	return name
}

// lodLevel parses the number after "_LOD" (case insensitive).
func lodLevel(name string) (int, bool) {
	i := strings.Index(strings.ToUpper(name), "_LOD")
	if i < 0 {
		return 0, false
	}
	digits := name[i+4:]
	n := 0
	for n < len(digits) && digits[n] >= '0' && digits[n] <= '9' {
		n++
	}
	lod, _ := strconv.Atoi(digits[:n])
	return lod, true
}

func detectMeshLOD(m *ImportMesh) int {
	if m.Source.Node != nil {
		if lod, ok := lodLevel(m.Source.Node.Name); ok {
			return lod
		}
	}
	lod, _ := lodLevel(MeshName(m))
	return lod
}

// sourceExt is the lowercase extension of the source file, ".fbx" if none.
func sourceExt(src string) string {
	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		return ".fbx"
	}
	return ext
}
