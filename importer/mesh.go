package importer

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/lmo"
	"github.com/chewxy/math32"
)

func (s *Session) attributes(m *ImportMesh) []lmo.Attribute {
	g := m.Source.Geometry
	attrs := []lmo.Attribute{{Semantic: lmo.SemanticPosition, Type: lmo.TypeFloat, Count: 3}}
	if g.Normals != nil {
		attrs = append(attrs, lmo.Attribute{Semantic: lmo.SemanticNormal, Type: lmo.TypeU8, Count: 4})
	}
	if g.UVs != nil {
		attrs = append(attrs, lmo.Attribute{Semantic: lmo.SemanticTexCoord0, Type: lmo.TypeFloat, Count: 2})
	}
	if g.Colors != nil && s.cfg.VertexColors {
		attrs = append(attrs, lmo.Attribute{Semantic: lmo.SemanticColor0, Type: lmo.TypeU8, Count: 4})
	}
	if g.Tangents != nil {
		attrs = append(attrs, lmo.Attribute{Semantic: lmo.SemanticTangent, Type: lmo.TypeU8, Count: 4})
	}
	if m.Skinned {
		attrs = append(attrs,
			lmo.Attribute{Semantic: lmo.SemanticIndices, Type: lmo.TypeI16, Count: 4},
			lmo.Attribute{Semantic: lmo.SemanticWeights, Type: lmo.TypeFloat, Count: 4})
	}
	return attrs
}

func appendFloats(b []byte, v ...float32) []byte {
	for _, f := range v {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

func unorm8(v float32) byte {
	return byte(geom.Clamp(v, 0, 1) * 255)
}

// packVector maps a unit vector to 4 bytes, c*127+128 per component.
func packVector(v *geom.Vector3) [4]byte {
	pack := func(c float32) byte { return byte(geom.Clamp(c, -1, 1)*127 + 128) }
	return [4]byte{pack(v.X), pack(v.Y), pack(v.Z), 0}
}

func (s *Session) packDirection(v *geom.Vector3, transform *geom.Matrix4) [4]byte {
	d := transform.ApplyToVector(v).Normalize()
	f := s.orientation.FixVector(d)
	return packVector(&f)
}

// meshTransform returns the node global transform with the geometric offset,
// adjusted by the cancel and origin settings.
func (s *Session) meshTransform(m *ImportMesh) *geom.Matrix4 {
	node := m.Source.Node
	transform := geom.NewMatrix4()
	if node != nil {
		transform = node.GlobalMatrix().Mul(node.GeometricMatrix())
	}
	if s.cfg.CancelMeshTransforms {
		transform.SetTranslation(&geom.Vector3{})
	}
	vertices := m.Source.Geometry.Vertices
	if s.cfg.Origin != OriginSource && len(vertices) > 0 {
		min, max := vertices[0], vertices[0]
		for i := range vertices[1:] {
			min = *min.Min(&vertices[i+1])
			max = *max.Max(&vertices[i+1])
		}
		center := min.Add(&max).Scale(0.5)
		if s.cfg.Origin == OriginBottom {
			center.Y = min.Y
		}
		transform.SetTranslation(center.Scale(-1))
	}
	return transform
}

// vertexDedup finds byte identical vertex records. Vertices are chained per first byte.
type vertexDedup struct {
	first [256]int
	next  []int
	size  int
}

func newVertexDedup(size int) *vertexDedup {
	d := &vertexDedup{size: size}
	for i := range d.first {
		d.first[i] = -1
	}
	return d
}

// add returns the index of record in data, appending it when new.
func (d *vertexDedup) add(data *[]byte, record []byte) int {
	head := record[0]
	for idx := d.first[head]; idx >= 0; idx = d.next[idx] {
		if bytes.Equal((*data)[idx*d.size:(idx+1)*d.size], record) {
			return idx
		}
	}
	idx := len(d.next)
	d.next = append(d.next, d.first[head])
	d.first[head] = idx
	*data = append(*data, record...)
	return idx
}

func (s *Session) postprocessMesh(m *ImportMesh) error {
	g := m.Source.Geometry
	m.Attributes = s.attributes(m)
	m.VertexData = m.VertexData[:0]
	m.Indices = m.Indices[:0]
	m.AABB = geom.AABB{}
	m.RadiusSquared = 0

	transform := s.meshTransform(m)
	scale := s.cfg.MeshScale * s.unitScale
	colors := s.cfg.VertexColors && g.Colors != nil

	var skins []Skin
	if m.Skinned {
		var err error
		if skins, err = s.fillSkinInfo(m); err != nil {
			return err
		}
	}

	size := m.VertexSize()
	dedup := newVertexDedup(size)
	record := make([]byte, 0, size)
	for i := range g.Vertices {
		if g.Materials != nil && g.Materials[i/3] != m.Slot {
			continue
		}
		record = record[:0]
		pos := s.orientation.FixVector(transform.ApplyTo(&g.Vertices[i]).Scale(scale))
		record = appendFloats(record, pos.X, pos.Y, pos.Z)
		m.RadiusSquared = math32.Max(m.RadiusSquared, pos.LenSqr())
		m.AABB.AddPoint(&pos)

		if g.Normals != nil {
			n := s.packDirection(&g.Normals[i], transform)
			record = append(record, n[:]...)
		}
		if g.UVs != nil {
			record = appendFloats(record, g.UVs[i].X, 1-g.UVs[i].Y)
		}
		if colors {
			c := g.Colors[i]
			record = append(record, unorm8(c.X), unorm8(c.Y), unorm8(c.Z), unorm8(c.W))
		}
		if g.Tangents != nil {
			t := s.packDirection(&g.Tangents[i], transform)
			record = append(record, t[:]...)
		}
		if m.Skinned {
			sk := skins[i]
			if sk.Count == 0 {
				return integrityError(MeshName(m), "vertex %d has no skin weights", i)
			}
			for _, j := range sk.Joints {
				record = binary.LittleEndian.AppendUint16(record, uint16(j))
			}
			record = appendFloats(record, sk.Weights[:]...)
		}
		m.Indices = append(m.Indices, uint32(dedup.add(&m.VertexData, record)))
	}
	return nil
}

// postprocessMeshes builds the vertex and index data and drops empty meshes.
func (s *Session) postprocessMeshes() error {
	if s.postprocessed {
		return nil
	}
	var meshes []*ImportMesh
	for _, m := range s.meshes {
		if err := s.postprocessMesh(m); err != nil {
			return err
		}
		if len(m.Indices) > 0 {
			meshes = append(meshes, m)
		}
	}
	s.meshes = meshes
	s.postprocessed = true
	return nil
}
