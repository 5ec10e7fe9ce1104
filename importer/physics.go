package importer

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/binzume/lmoconv/lmo"
)

// BuildPhysics collects the vertices of physics meshes. Returns nil when no mesh has physics enabled.
func (s *Session) BuildPhysics() (*lmo.PhysicsGeometry, error) {
	if err := s.postprocessMeshes(); err != nil {
		return nil, err
	}
	g := &lmo.PhysicsGeometry{Version: lmo.PhysicsVersion, Convex: s.cfg.MakeConvex}
	found := false
	offset := uint32(0)
	for _, m := range s.meshes {
		if !m.Physics {
			continue
		}
		found = true
		mesh := s.exportMesh(m)
		n := mesh.VertexCount()
		for i := 0; i < n; i++ {
			g.Vertices = append(g.Vertices, mesh.Position(i))
		}
		if !g.Convex {
			for _, idx := range m.Indices {
				g.Indices = append(g.Indices, idx+offset)
			}
		}
		offset += uint32(n)
	}
	if !found {
		return nil, nil
	}
	return g, nil
}

// WritePhysics writes "<basename>.phy" when any mesh has physics enabled.
func (s *Session) WritePhysics(out Output) error {
	g, err := s.BuildPhysics()
	if err != nil || g == nil {
		return err
	}
	var buf bytes.Buffer
	if err := lmo.NewWriter(&buf).WritePhysics(g); err != nil {
		return err
	}
	base := filepath.Base(s.src)
	return out.WriteResource(strings.TrimSuffix(base, filepath.Ext(base))+".phy:"+s.src, buf.Bytes())
}
