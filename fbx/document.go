package fbx

import (
	"fmt"
)

// TimeSecond is the number of FBX time ticks per second.
const TimeSecond = 46186158000

func TimeToSeconds(t int64) float64 {
	return float64(t) / TimeSecond
}

type Document struct {
	Version      int
	Creator      string
	CreationTime string

	GlobalSettings *GlobalSettings
	Objects        map[int64]Object
	Scene          *Model

	Models          []*Model
	Geometries      []*Geometry
	Materials       []*Material
	AnimationStacks []*AnimationStack
	Takes           []*Take
	Connections     []*Connection

	RawNode *Node
}

type GlobalSettings struct {
	Obj
}

// Axis index: 0=X, 1=Y, 2=Z.
func (s *GlobalSettings) UpAxis() int {
	return s.GetProperty("UpAxis").ToInt(1)
}

func (s *GlobalSettings) UpAxisSign() int {
	return s.GetProperty("UpAxisSign").ToInt(1)
}

func (s *GlobalSettings) FrontAxis() int {
	return s.GetProperty("FrontAxis").ToInt(2)
}

func (s *GlobalSettings) FrontAxisSign() int {
	return s.GetProperty("FrontAxisSign").ToInt(1)
}

func (s *GlobalSettings) CoordAxis() int {
	return s.GetProperty("CoordAxis").ToInt(0)
}

func (s *GlobalSettings) CoordAxisSign() int {
	return s.GetProperty("CoordAxisSign").ToInt(1)
}

func (s *GlobalSettings) UnitScaleFactor() float64 {
	return s.GetProperty("UnitScaleFactor").ToFloat64(1)
}

func (s *GlobalSettings) TimeSpanStart() int64 {
	return s.GetProperty("TimeSpanStart").ToInt64(0)
}

func (s *GlobalSettings) TimeSpanStop() int64 {
	return s.GetProperty("TimeSpanStop").ToInt64(0)
}

func (s *GlobalSettings) CustomFrameRate() float64 {
	return s.GetProperty("CustomFrameRate").ToFloat64(-1)
}

// Take is an entry of the Takes section.
type Take struct {
	Name          string
	FileName      string
	LocalTimeFrom int64
	LocalTimeTo   int64
}

func (d *Document) FindTake(name string) *Take {
	for _, t := range d.Takes {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func parseConnection(node *Node) *Connection {
	return &Connection{
		Type: node.Attr(0).ToString(),
		From: node.Attr(1).ToInt64(0),
		To:   node.Attr(2).ToInt64(0),
		Prop: node.Attr(3).ToString(),
	}
}

func newObject(base *Obj) Object {
	switch base.Node.Name {
	case "Model":
		return &Model{Obj: *base}
	case "Geometry":
		return &Geometry{Obj: *base}
	case "Material":
		return &Material{Obj: *base}
	case "Texture":
		return &Texture{Obj: *base}
	case "Deformer":
		switch base.Kind() {
		case "Skin":
			return &Skin{Obj: *base}
		case "Cluster":
			return &Cluster{Obj: *base}
		}
	case "AnimationStack":
		return &AnimationStack{Obj: *base}
	case "AnimationLayer":
		return &AnimationLayer{Obj: *base}
	case "AnimationCurveNode":
		return &AnimationCurveNode{Obj: *base}
	case "AnimationCurve":
		return &AnimationCurve{Obj: *base}
	}
	return base
}

func BuildDocument(root *Node) (*Document, error) {
	objects := root.FindChild("Objects")
	if objects == nil {
		return nil, fmt.Errorf("fbx: no Objects section")
	}
	doc := &Document{RawNode: root}
	doc.Scene = &Model{Obj: Obj{Node: &Node{Name: "Model", Attributes: AttributeList{{Value: int64(0)}, {Value: "RootNode"}, {Value: "Null"}}}}}
	doc.Objects = map[int64]Object{0: doc.Scene}

	header := root.FindChild("FBXHeaderExtension")
	doc.Version = header.FindChild("FBXVersion").Attr(0).ToInt(0)
	doc.Creator = header.FindChild("Creator").GetString()
	if doc.Creator == "" {
		doc.Creator = root.FindChild("Creator").GetString()
	}
	doc.CreationTime = root.FindChild("CreationTime").GetString()

	templates := map[string]*Obj{}
	for _, node := range root.FindChild("Definitions").FindChildren("ObjectType") {
		if t := node.FindChild("PropertyTemplate"); t != nil {
			templates[node.GetString()] = &Obj{Node: t}
		}
	}
	doc.GlobalSettings = &GlobalSettings{Obj{Node: root.FindChild("GlobalSettings"), Template: templates["GlobalSettings"]}}
	if doc.GlobalSettings.Node == nil {
		doc.GlobalSettings.Node = &Node{Name: "GlobalSettings"}
	}

	for _, node := range objects.GetChildren() {
		obj := newObject(&Obj{Node: node, Template: templates[node.Name]})
		if _, exists := doc.Objects[obj.ID()]; exists {
			continue
		}
		doc.Objects[obj.ID()] = obj
		switch o := obj.(type) {
		case *Model:
			doc.Models = append(doc.Models, o)
		case *Geometry:
			doc.Geometries = append(doc.Geometries, o)
		case *Material:
			doc.Materials = append(doc.Materials, o)
		case *AnimationStack:
			doc.AnimationStacks = append(doc.AnimationStacks, o)
		}
	}

	for _, node := range root.FindChild("Connections").FindChildren("C") {
		c := parseConnection(node)
		if c.Type != "OO" && c.Type != "OP" {
			continue
		}
		from, to := doc.Objects[c.From], doc.Objects[c.To]
		if from == nil || to == nil {
			continue
		}
		doc.Connections = append(doc.Connections, c)
		to.Base().Refs = append(to.Base().Refs, &Link{Object: from, Prop: c.Prop})
		from.Base().Owners = append(from.Base().Owners, &Link{Object: to, Prop: c.Prop})
		if child, ok := from.(*Model); ok {
			if parent, ok := to.(*Model); ok && parent != doc.Scene {
				child.Parent = parent
			}
		}
	}

	for _, node := range root.FindChild("Takes").FindChildren("Take") {
		take := &Take{
			Name:     node.GetString(),
			FileName: node.FindChild("FileName").GetString(),
		}
		if t := node.FindChild("LocalTime"); t != nil {
			take.LocalTimeFrom = t.Attr(0).ToInt64(0)
			take.LocalTimeTo = t.Attr(1).ToInt64(0)
		}
		doc.Takes = append(doc.Takes, take)
	}

	return doc, nil
}
