package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/binzume/lmoconv/lmo"
)

func dumpResource(path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	kind, err := lmo.Detect(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	p := lmo.NewParser(bytes.NewReader(data))
	fmt.Fprintf(w, "%s: %s\n", path, kind)
	switch kind {
	case "model":
		m, err := p.ReadModel()
		if err != nil {
			return err
		}
		for i, mesh := range m.Meshes {
			fmt.Fprintf(w, "  mesh %d %q material=%q vertices=%d indices=%d\n", i, mesh.Name, mesh.Material, mesh.VertexCount(), len(mesh.Indices))
			for _, a := range mesh.Attributes {
				fmt.Fprintf(w, "    %v x%d\n", a.Semantic, a.Count)
			}
		}
		fmt.Fprintf(w, "  radius=%v aabb=%v\n", m.BoundingRadius, m.AABB)
		for i, b := range m.Bones {
			fmt.Fprintf(w, "  bone %d %q parent=%d pos=%v\n", i, b.Name, b.Parent, b.Position)
		}
		for i, l := range m.LODs {
			fmt.Fprintf(w, "  lod %d to=%d distance=%v\n", i, l.ToMesh, l.Distance)
		}
	case "animation":
		a, err := p.ReadAnimation()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  length=%.3fs root=%d tracks=%d\n", a.Seconds(), a.RootMotionBone, len(a.Tracks))
		for _, t := range a.Tracks {
			fmt.Fprintf(w, "  %08x positions=%d rotations=%d\n", t.NameHash, len(t.Positions), len(t.Rotations))
		}
	case "physics":
		g, err := p.ReadPhysics()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  convex=%v vertices=%d indices=%d\n", g.Convex, len(g.Vertices), len(g.Indices))
	}
	return nil
}
