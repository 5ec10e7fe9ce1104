package converter

import (
	"fmt"
	"unicode/utf8"

	"github.com/binzume/lmoconv/fbx"
	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/scene"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

type FBXToSceneOption struct {
	// Decode names that are not valid UTF-8 as Shift_JIS.
	ShiftJISNames bool
}

type fbxToScene struct {
	options    *FBXToSceneOption
	nodes      map[*fbx.Model]*scene.Node
	materials  map[*fbx.Material]*scene.Material
	geometries map[*fbx.Geometry]*scene.Geometry
}

func NewFBXToSceneConverter(options *FBXToSceneOption) *fbxToScene {
	if options == nil {
		options = &FBXToSceneOption{ShiftJISNames: true}
	}
	return &fbxToScene{
		options:    options,
		nodes:      map[*fbx.Model]*scene.Node{},
		materials:  map[*fbx.Material]*scene.Material{},
		geometries: map[*fbx.Geometry]*scene.Geometry{},
	}
}

// fbxRotationOrder maps EFbxRotationOrder to the matrix product order.
var fbxRotationOrder = []geom.RotationOrder{
	geom.RotationOrderZYX, // eEulerXYZ
	geom.RotationOrderYZX, // eEulerXZY
	geom.RotationOrderXZY, // eEulerYZX
	geom.RotationOrderZXY, // eEulerYXZ
	geom.RotationOrderYXZ, // eEulerZXY
	geom.RotationOrderXYZ, // eEulerZYX
}

func (c *fbxToScene) name(s string) string {
	if c.options.ShiftJISNames && !utf8.ValidString(s) {
		if d, _, err := transform.String(japanese.ShiftJIS.NewDecoder(), s); err == nil {
			return d
		}
	}
	return s
}

func (c *fbxToScene) convertNode(m *fbx.Model) *scene.Node {
	n := scene.NewNode(c.name(m.Name()))
	n.ID = m.ID()
	n.Kind = m.Kind()
	n.Translation = *m.GetTranslation()
	n.Rotation = *m.GetRotation()
	n.Scaling = *m.GetScaling()
	if o := m.GetRotationOrder(); o >= 0 && o < len(fbxRotationOrder) {
		n.RotationOrder = fbxRotationOrder[o]
	}
	n.PreRotation = *m.GetPreRotation()
	n.PostRotation = *m.GetPostRotation()
	n.RotationOffset = *m.GetRotationOffset()
	n.RotationPivot = *m.GetRotationPivot()
	n.ScalingOffset = *m.GetScalingOffset()
	n.ScalingPivot = *m.GetScalingPivot()
	n.GeometricTranslation = *m.GetGeometricTranslation()
	n.GeometricRotation = *m.GetGeometricRotation()
	n.GeometricScaling = *m.GetGeometricScaling()
	return n
}

func (c *fbxToScene) convertMaterial(m *fbx.Material) *scene.Material {
	if mat, ok := c.materials[m]; ok {
		return mat
	}
	mat := &scene.Material{
		Name:         c.name(m.Name()),
		DiffuseColor: *m.GetColor("DiffuseColor", &geom.Vector3{X: 1, Y: 1, Z: 1}),
	}
	for i, prop := range []string{"DiffuseColor", "NormalMap", "SpecularColor"} {
		if tex := m.GetTexture(prop); tex != nil {
			mat.Textures[i] = &scene.Texture{
				FileName:         c.name(tex.GetFileName()),
				RelativeFileName: c.name(tex.GetRelativeFileName()),
			}
		}
	}
	c.materials[m] = mat
	return mat
}

type layerReader struct {
	el    *fbx.LayerElement
	array []float64
	size  int
}

func newLayerReader(el *fbx.LayerElement, size int) *layerReader {
	if !el.Exists() {
		return nil
	}
	return &layerReader{el: el, array: el.Array.GetFloat64Array(), size: size}
}

func (r *layerReader) read(pv, cp, poly int, dst []float32) {
	i := r.el.Index(pv, cp, poly)
	if i < 0 || (i+1)*r.size > len(r.array) {
		return
	}
	for k := range dst {
		if k < r.size {
			dst[k] = float32(r.array[i*r.size+k])
		}
	}
}

func (c *fbxToScene) convertGeometry(g *fbx.Geometry) (*scene.Geometry, error) {
	if sg, ok := c.geometries[g]; ok {
		return sg, nil
	}
	points := g.GetVertices()
	normals := newLayerReader(g.GetLayerElementNormal(), 3)
	uvs := newLayerReader(g.GetLayerElementUV(), 2)
	colors := newLayerReader(g.GetLayerElementColor(), 4)
	tangents := newLayerReader(g.GetLayerElementTangent(), 3)
	materials := g.GetLayerElementMaterial()

	sg := &scene.Geometry{}
	cornersOf := make([][]int, len(points))
	pv := 0
	for pi, poly := range g.GetPolygons() {
		var polyPoints []*geom.Vector3
		valid := true
		for _, cp := range poly {
			if cp < 0 || cp >= len(points) {
				valid = false
				break
			}
			polyPoints = append(polyPoints, points[cp])
		}
		if !valid {
			return nil, fmt.Errorf("fbx: geometry %s: polygon %d refers to a missing control point", g.Name(), pi)
		}
		for _, tri := range geom.Triangulate(polyPoints) {
			for _, local := range tri {
				cp := poly[local]
				cornersOf[cp] = append(cornersOf[cp], len(sg.Vertices))
				sg.Vertices = append(sg.Vertices, *points[cp])
				if normals != nil {
					var v [3]float32
					normals.read(pv+local, cp, pi, v[:])
					sg.Normals = append(sg.Normals, geom.Vector3{X: v[0], Y: v[1], Z: v[2]})
				}
				if uvs != nil {
					var v [2]float32
					uvs.read(pv+local, cp, pi, v[:])
					sg.UVs = append(sg.UVs, geom.Vector2{X: v[0], Y: v[1]})
				}
				if colors != nil {
					v := [4]float32{1, 1, 1, 1}
					colors.read(pv+local, cp, pi, v[:])
					sg.Colors = append(sg.Colors, geom.Vector4{X: v[0], Y: v[1], Z: v[2], W: v[3]})
				}
				if tangents != nil {
					var v [3]float32
					tangents.read(pv+local, cp, pi, v[:])
					sg.Tangents = append(sg.Tangents, geom.Vector3{X: v[0], Y: v[1], Z: v[2]})
				}
			}
			if materials.Exists() {
				sg.Materials = append(sg.Materials, materials.MaterialIndex(pi))
			}
		}
		pv += len(poly)
	}

	if skin := g.GetSkin(); skin != nil {
		sg.Skin = &scene.Skin{}
		for _, cluster := range skin.GetClusters() {
			indexes, weights := cluster.GetIndexes(), cluster.GetWeights()
			if len(indexes) != len(weights) {
				return nil, fmt.Errorf("fbx: cluster %s: %d indexes but %d weights", cluster.Name(), len(indexes), len(weights))
			}
			link := cluster.GetLink()
			if link == nil {
				continue
			}
			sc := &scene.Cluster{Link: c.nodes[link], TransformLink: cluster.GetTransformLink()}
			for i, cp := range indexes {
				if cp < 0 || int(cp) >= len(points) {
					// kept so the importer can reject the asset
					sc.Indices = append(sc.Indices, -1)
					sc.Weights = append(sc.Weights, weights[i])
					continue
				}
				for _, v := range cornersOf[cp] {
					sc.Indices = append(sc.Indices, v)
					sc.Weights = append(sc.Weights, weights[i])
				}
			}
			sg.Skin.Clusters = append(sg.Skin.Clusters, sc)
		}
	}

	c.geometries[g] = sg
	return sg, nil
}

func (c *fbxToScene) convertAnimation(stack *fbx.AnimationStack) *scene.AnimationStack {
	s := &scene.AnimationStack{Name: c.name(stack.Name())}
	for _, layer := range stack.GetLayers() {
		l := &scene.AnimationLayer{Name: layer.Name()}
		for _, cn := range layer.GetCurveNodes() {
			target, prop := cn.GetTarget()
			if target == nil || c.nodes[target] == nil {
				continue
			}
			node := &scene.CurveNode{Bone: c.nodes[target], Property: prop}
			for i, curve := range cn.GetCurves() {
				if curve == nil {
					continue
				}
				sc := &scene.Curve{}
				for _, t := range curve.GetKeyTimes() {
					sc.Times = append(sc.Times, fbx.TimeToSeconds(t))
				}
				for _, v := range curve.GetKeyValues() {
					sc.Values = append(sc.Values, float32(v))
				}
				node.Curves[i] = sc
			}
			l.CurveNodes = append(l.CurveNodes, node)
		}
		s.Layers = append(s.Layers, l)
	}
	return s
}

func (c *fbxToScene) Convert(src *fbx.Document) (*scene.Scene, error) {
	gs := src.GlobalSettings
	dst := &scene.Scene{
		Settings: scene.Settings{
			UnitScaleFactor: gs.UnitScaleFactor(),
			UpAxis:          gs.UpAxis(),
			UpAxisSign:      gs.UpAxisSign(),
			TimeSpanStart:   fbx.TimeToSeconds(gs.TimeSpanStart()),
			TimeSpanStop:    fbx.TimeToSeconds(gs.TimeSpanStop()),
		},
	}

	for _, m := range src.Models {
		n := c.convertNode(m)
		c.nodes[m] = n
		dst.Nodes = append(dst.Nodes, n)
	}
	for _, m := range src.Models {
		if m.Parent != nil {
			c.nodes[m].Parent = c.nodes[m.Parent]
		}
	}

	for _, m := range src.Models {
		g := m.GetGeometry()
		if g == nil {
			continue
		}
		sg, err := c.convertGeometry(g)
		if err != nil {
			return nil, err
		}
		mesh := &scene.Mesh{Node: c.nodes[m], Geometry: sg}
		for _, mat := range m.GetMaterials() {
			mesh.Materials = append(mesh.Materials, c.convertMaterial(mat))
		}
		dst.Meshes = append(dst.Meshes, mesh)
	}

	for _, stack := range src.AnimationStacks {
		dst.AnimationStacks = append(dst.AnimationStacks, c.convertAnimation(stack))
	}
	for _, take := range src.Takes {
		dst.Takes = append(dst.Takes, &scene.TakeInfo{
			Name:          c.name(take.Name),
			Filename:      take.FileName,
			LocalTimeFrom: fbx.TimeToSeconds(take.LocalTimeFrom),
			LocalTimeTo:   fbx.TimeToSeconds(take.LocalTimeTo),
		})
	}
	return dst, nil
}
