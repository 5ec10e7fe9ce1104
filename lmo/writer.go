package lmo

import (
	"encoding/binary"
	"fmt"
	"io"
)

type baseWriter struct {
	w   io.Writer
	err error
}

// write keeps the first error and ignores every write after it.
func (p *baseWriter) write(v interface{}) {
	if p.err == nil {
		p.err = binary.Write(p.w, binary.LittleEndian, v)
	}
}

func (p *baseWriter) writeInt(v int) {
	p.write(int32(v))
}

func (p *baseWriter) writeUint32(v uint32) {
	p.write(v)
}

func (p *baseWriter) writeFloat(v float32) {
	p.write(v)
}

func (p *baseWriter) writeString(s string) {
	p.writeInt(len(s))
	p.write([]byte(s))
}

type Writer struct {
	baseWriter
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{baseWriter{w: w}}
}

func (w *Writer) writeMeshHeader(m *Mesh) {
	w.writeInt(len(m.Attributes))
	for _, a := range m.Attributes {
		w.write([3]uint8{uint8(a.Semantic), uint8(a.Type), a.Count})
	}
	w.writeString(m.Material)
	w.writeString(m.Name)
}

func (w *Writer) writeIndices(m *Mesh) {
	size := m.IndexSize()
	w.writeInt(size)
	w.writeInt(len(m.Indices))
	if size == 2 {
		indices := make([]uint16, len(m.Indices))
		for i, v := range m.Indices {
			indices[i] = uint16(v)
		}
		w.write(indices)
	} else {
		w.write(m.Indices)
	}
}

func (w *Writer) WriteModel(doc *Model) error {
	for i, m := range doc.Meshes {
		if m.VertexSize() == 0 || len(m.Vertices)%m.VertexSize() != 0 {
			return fmt.Errorf("lmo: mesh %d (%s): vertex data does not match attributes", i, m.Name)
		}
		n := uint32(m.VertexCount())
		for _, idx := range m.Indices {
			if idx >= n {
				return fmt.Errorf("lmo: mesh %d (%s): index %d out of range", i, m.Name, idx)
			}
		}
	}
	for i := 1; i < len(doc.LODs); i++ {
		if doc.LODs[i].ToMesh < doc.LODs[i-1].ToMesh {
			return fmt.Errorf("lmo: lod %d is decreasing", i)
		}
	}

	w.writeUint32(ModelMagic)
	w.writeUint32(doc.Version)

	w.writeInt(len(doc.Meshes))
	for _, m := range doc.Meshes {
		w.writeMeshHeader(m)
	}
	for _, m := range doc.Meshes {
		w.writeIndices(m)
	}
	for _, m := range doc.Meshes {
		w.writeInt(len(m.Vertices))
		w.write(m.Vertices)
	}
	w.writeFloat(doc.BoundingRadius)
	w.write(&doc.AABB)

	// skeleton
	w.writeInt(len(doc.Bones))
	for _, b := range doc.Bones {
		w.writeString(b.Name)
		w.writeInt(b.Parent)
		w.write(&b.Position)
		w.write(&b.Rotation)
	}

	w.writeInt(len(doc.LODs))
	for _, l := range doc.LODs {
		w.writeInt(l.ToMesh)
		w.writeFloat(l.Distance)
	}
	return w.err
}

func (w *Writer) WriteAnimation(anim *Animation) error {
	w.writeUint32(AnimationMagic)
	w.writeUint32(anim.Version)
	w.writeUint32(anim.Length)
	w.write(anim.RootMotionBone)

	w.writeInt(len(anim.Tracks))
	for _, t := range anim.Tracks {
		w.writeUint32(t.NameHash)
		w.writeInt(len(t.Positions))
		for _, k := range t.Positions {
			w.write(k.Time)
		}
		for _, k := range t.Positions {
			w.write(&k.Value)
		}
		w.writeInt(len(t.Rotations))
		for _, k := range t.Rotations {
			w.write(k.Time)
		}
		for _, k := range t.Rotations {
			w.write(&k.Value)
		}
	}
	return w.err
}

func (w *Writer) WritePhysics(g *PhysicsGeometry) error {
	w.writeUint32(PhysicsMagic)
	w.writeUint32(g.Version)
	convex := uint32(0)
	if g.Convex {
		convex = 1
	}
	w.writeUint32(convex)
	w.writeInt(len(g.Vertices))
	w.write(g.Vertices)
	if !g.Convex {
		w.writeInt(len(g.Indices))
		w.write(g.Indices)
	}
	return w.err
}
