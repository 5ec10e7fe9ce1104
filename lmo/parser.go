package lmo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/binzume/lmoconv/geom"
)

// upper bound for any length prefix, to reject garbage before allocating.
const maxLength = 1 << 28

type baseParser struct {
	r   io.Reader
	err error
}

func (p *baseParser) read(v interface{}) {
	if p.err == nil {
		p.err = binary.Read(p.r, binary.LittleEndian, v)
	}
}

func (p *baseParser) readInt() int {
	var v int32
	p.read(&v)
	return int(v)
}

func (p *baseParser) readUint32() uint32 {
	var v uint32
	p.read(&v)
	return v
}

func (p *baseParser) readFloat() float32 {
	var v float32
	p.read(&v)
	return v
}

func (p *baseParser) readLength() int {
	n := p.readInt()
	if p.err == nil && (n < 0 || n > maxLength) {
		p.err = fmt.Errorf("lmo: invalid length %d", n)
		return 0
	}
	return n
}

func (p *baseParser) readString() string {
	n := p.readLength()
	if p.err != nil {
		return ""
	}
	buf := make([]byte, n)
	p.read(buf)
	return string(buf)
}

func (p *baseParser) checkMagic(magic uint32) {
	if m := p.readUint32(); p.err == nil && m != magic {
		p.err = fmt.Errorf("lmo: bad magic %08x", m)
	}
}

type Parser struct {
	baseParser
}

func NewParser(r io.Reader) *Parser {
	return &Parser{baseParser{r: r}}
}

func (p *Parser) ReadModel() (*Model, error) {
	p.checkMagic(ModelMagic)
	doc := &Model{Version: p.readUint32()}

	count := p.readLength()
	for i := 0; i < count && p.err == nil; i++ {
		m := &Mesh{}
		n := p.readLength()
		for j := 0; j < n && p.err == nil; j++ {
			var a [3]uint8
			p.read(&a)
			m.Attributes = append(m.Attributes, Attribute{Semantic: AttributeSemantic(a[0]), Type: AttributeType(a[1]), Count: a[2]})
		}
		m.Material = p.readString()
		m.Name = p.readString()
		doc.Meshes = append(doc.Meshes, m)
	}
	for _, m := range doc.Meshes {
		size := p.readInt()
		n := p.readLength()
		if p.err != nil {
			break
		}
		switch size {
		case 2:
			indices := make([]uint16, n)
			p.read(indices)
			m.Indices = make([]uint32, n)
			for i, v := range indices {
				m.Indices[i] = uint32(v)
			}
		case 4:
			m.Indices = make([]uint32, n)
			p.read(m.Indices)
		default:
			return nil, fmt.Errorf("lmo: mesh %s: invalid index size %d", m.Name, size)
		}
	}
	for _, m := range doc.Meshes {
		n := p.readLength()
		if p.err != nil {
			break
		}
		m.Vertices = make([]byte, n)
		p.read(m.Vertices)
	}
	doc.BoundingRadius = p.readFloat()
	p.read(&doc.AABB)

	bones := p.readLength()
	for i := 0; i < bones && p.err == nil; i++ {
		b := &Bone{Name: p.readString(), Parent: p.readInt()}
		p.read(&b.Position)
		p.read(&b.Rotation)
		doc.Bones = append(doc.Bones, b)
	}

	lods := p.readLength()
	for i := 0; i < lods && p.err == nil; i++ {
		doc.LODs = append(doc.LODs, LOD{ToMesh: p.readInt(), Distance: p.readFloat()})
	}
	if p.err != nil {
		return nil, p.err
	}
	return doc, nil
}

func (p *Parser) ReadAnimation() (*Animation, error) {
	p.checkMagic(AnimationMagic)
	anim := &Animation{Version: p.readUint32(), Length: p.readUint32()}
	if p.err == nil && anim.Version != AnimationVersion {
		return nil, fmt.Errorf("lmo: unsupported animation version %d", anim.Version)
	}
	p.read(&anim.RootMotionBone)

	count := p.readLength()
	for i := 0; i < count && p.err == nil; i++ {
		t := &BoneTrack{NameHash: p.readUint32()}
		n := p.readLength()
		if p.err != nil {
			break
		}
		t.Positions = make([]PositionKey, n)
		for k := range t.Positions {
			p.read(&t.Positions[k].Time)
		}
		for k := range t.Positions {
			p.read(&t.Positions[k].Value)
		}
		n = p.readLength()
		if p.err != nil {
			break
		}
		t.Rotations = make([]RotationKey, n)
		for k := range t.Rotations {
			p.read(&t.Rotations[k].Time)
		}
		for k := range t.Rotations {
			p.read(&t.Rotations[k].Value)
		}
		anim.Tracks = append(anim.Tracks, t)
	}
	if p.err != nil {
		return nil, p.err
	}
	return anim, nil
}

func (p *Parser) ReadPhysics() (*PhysicsGeometry, error) {
	p.checkMagic(PhysicsMagic)
	g := &PhysicsGeometry{Version: p.readUint32(), Convex: p.readUint32() != 0}
	n := p.readLength()
	if p.err == nil {
		g.Vertices = make([]geom.Vector3, n)
		p.read(g.Vertices)
	}
	if !g.Convex {
		n = p.readLength()
		if p.err == nil {
			g.Indices = make([]uint32, n)
			p.read(g.Indices)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return g, nil
}

// ErrUnknownFormat is returned by Detect for data without a known magic.
var ErrUnknownFormat = errors.New("lmo: unknown format")

// Detect returns the resource kind ("model", "animation" or "physics") of data.
func Detect(data []byte) (string, error) {
	if len(data) < 4 {
		return "", ErrUnknownFormat
	}
	switch binary.LittleEndian.Uint32(data) {
	case ModelMagic:
		return "model", nil
	case AnimationMagic:
		return "animation", nil
	case PhysicsMagic:
		return "physics", nil
	}
	return "", ErrUnknownFormat
}
