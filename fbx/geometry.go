package fbx

import (
	"github.com/binzume/lmoconv/geom"
)

type Geometry struct {
	Obj
}

type MappingType string

const (
	AllSame         MappingType = "AllSame"
	ByPolygon       MappingType = "ByPolygon"
	ByVertice       MappingType = "ByVertice"
	ByVertex        MappingType = "ByVertex"
	ByPolygonVertex MappingType = "ByPolygonVertex"
	ByControlPoint  MappingType = "ByControlPoint"
)

type LayerElement struct {
	*Node
	Array     *Node
	IndexNode *Node
}

func (g *Geometry) GetVertices() []*geom.Vector3 {
	return g.FindChild("Vertices").GetVec3Array()
}

func (g *Geometry) GetPolygonVertexIndex() []int32 {
	return g.FindChild("PolygonVertexIndex").GetInt32Array()
}

// GetPolygons splits PolygonVertexIndex into polygons of control point indices.
func (g *Geometry) GetPolygons() [][]int {
	var faces [][]int
	var face []int
	for _, index := range g.GetPolygonVertexIndex() {
		if index < 0 {
			faces = append(faces, append(face, int(^index)))
			face = nil
			continue
		}
		face = append(face, int(index))
	}
	return faces
}

func (g *Geometry) GetSkin() *Skin {
	for _, o := range g.FindRefs("Deformer") {
		if s, ok := o.(*Skin); ok {
			return s
		}
	}
	return nil
}

func (g *Geometry) GetLayerElement(name string, arrayName string, indexName string) *LayerElement {
	node := g.FindChild(name)
	return &LayerElement{node, node.FindChild(arrayName), node.FindChild(indexName)}
}

func (g *Geometry) GetLayerElementUV() *LayerElement {
	return g.GetLayerElement("LayerElementUV", "UV", "UVIndex")
}

func (g *Geometry) GetLayerElementMaterial() *LayerElement {
	return g.GetLayerElement("LayerElementMaterial", "Materials", "Materials")
}

func (g *Geometry) GetLayerElementNormal() *LayerElement {
	return g.GetLayerElement("LayerElementNormal", "Normals", "NormalsIndex")
}

func (g *Geometry) GetLayerElementTangent() *LayerElement {
	return g.GetLayerElement("LayerElementTangent", "Tangents", "TangentsIndex")
}

func (g *Geometry) GetLayerElementColor() *LayerElement {
	return g.GetLayerElement("LayerElementColor", "Colors", "ColorIndex")
}

func (e *LayerElement) Exists() bool {
	return e.Node != nil && e.Array != nil
}

func (e *LayerElement) GetMappingInformationType() MappingType {
	return MappingType(e.FindChild("MappingInformationType").GetString())
}

func (e *LayerElement) GetReferenceInformationType() string {
	return e.FindChild("ReferenceInformationType").GetString()
}

func (e *LayerElement) GetIndexes() []int32 {
	return e.IndexNode.GetInt32Array()
}

// Index resolves the element index for a polygon corner, or -1.
func (e *LayerElement) Index(polygonVertex, controlPoint, polygon int) int {
	var i int
	switch e.GetMappingInformationType() {
	case ByPolygonVertex:
		i = polygonVertex
	case ByControlPoint, ByVertice, ByVertex:
		i = controlPoint
	case ByPolygon:
		i = polygon
	case AllSame:
		i = 0
	default:
		return -1
	}
	if e.GetReferenceInformationType() == "IndexToDirect" && e.IndexNode != e.Array {
		indexes := e.GetIndexes()
		if i >= len(indexes) {
			return -1
		}
		i = int(indexes[i])
	}
	return i
}

// MaterialIndex returns the material slot of a polygon.
func (e *LayerElement) MaterialIndex(polygon int) int {
	materials := e.Array.GetInt32Array()
	if len(materials) == 0 {
		return 0
	}
	if e.GetMappingInformationType() == AllSame || polygon >= len(materials) {
		return int(materials[0])
	}
	return int(materials[polygon])
}
