package fbx

import (
	"strings"

	"github.com/binzume/lmoconv/geom"
)

// Property is an entry of a Properties70 block.
type Property struct {
	AttributeList
	Type  string
	Label string
	Flag  string
}

func (p *Property) ToFloat64(def float64) float64 {
	if p == nil {
		return def
	}
	return p.Get(0).ToFloat64(def)
}

func (p *Property) ToFloat32(def float32) float32 {
	return float32(p.ToFloat64(float64(def)))
}

func (p *Property) ToInt64(def int64) int64 {
	if p == nil {
		return def
	}
	return p.Get(0).ToInt64(def)
}

func (p *Property) ToInt(def int) int {
	return int(p.ToInt64(int64(def)))
}

func (p *Property) ToString(def string) string {
	if p == nil || len(p.AttributeList) == 0 {
		return def
	}
	return p.Get(0).ToString()
}

func (p *Property) ToVector3(x, y, z float32) *geom.Vector3 {
	if p == nil || len(p.AttributeList) < 3 {
		return &geom.Vector3{X: x, Y: y, Z: z}
	}
	return &geom.Vector3{X: p.Get(0).ToFloat32(x), Y: p.Get(1).ToFloat32(y), Z: p.Get(2).ToFloat32(z)}
}

type Connection struct {
	Type string
	To   int64
	From int64
	Prop string
}

// Link is one end of a connection. Prop is set for object-property connections.
type Link struct {
	Object Object
	Prop   string
}

type Object interface {
	Base() *Obj
	NodeName() string
	ID() int64
	Name() string
	Kind() string
	GetProperty(name string) *Property
}

type Obj struct {
	*Node
	Template *Obj
	Refs     []*Link // connected to this object
	Owners   []*Link // this object is connected to

	properties map[string]*Property // lazy initialize
}

func (o *Obj) Base() *Obj {
	return o
}

func (o *Obj) NodeName() string {
	return o.Node.Name
}

func (o *Obj) ID() int64 {
	return o.Attr(0).ToInt64(0)
}

// Name returns the object name without the class part.
// Binary files store "name\x00\x01Class", ASCII files "Class::name".
func (o *Obj) Name() string {
	s := o.Attr(1).ToString()
	if i := strings.Index(s, "\x00\x01"); i >= 0 {
		return s[:i]
	}
	if i := strings.Index(s, "::"); i >= 0 {
		return s[i+2:]
	}
	return s
}

func (o *Obj) Kind() string {
	return o.Attr(2).ToString()
}

func (o *Obj) GetProperty(name string) *Property {
	if o == nil {
		return nil
	}
	if o.properties == nil {
		o.properties = map[string]*Property{}
		for _, node := range o.FindChild("Properties70").FindChildren("P") {
			if len(node.Attributes) < 4 {
				continue
			}
			o.properties[node.Attr(0).ToString()] = &Property{
				AttributeList: node.Attributes[4:],
				Type:          node.Attr(1).ToString(),
				Label:         node.Attr(2).ToString(),
				Flag:          node.Attr(3).ToString()}
		}
	}
	if p, ok := o.properties[name]; ok {
		return p
	}
	return o.Template.GetProperty(name)
}

// FindRefs returns connected objects with the node name typ ("" matches all).
func (o *Obj) FindRefs(typ string) []Object {
	var refs []Object
	for _, l := range o.Refs {
		if typ == "" || l.Object.NodeName() == typ {
			refs = append(refs, l.Object)
		}
	}
	return refs
}

// FindRefByProp returns the object connected to the property prop.
func (o *Obj) FindRefByProp(prop string) Object {
	for _, l := range o.Refs {
		if l.Prop == prop {
			return l.Object
		}
	}
	return nil
}

func (o *Obj) FindOwners(typ string) []*Link {
	var owners []*Link
	for _, l := range o.Owners {
		if typ == "" || l.Object.NodeName() == typ {
			owners = append(owners, l)
		}
	}
	return owners
}
