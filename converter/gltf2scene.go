package converter

import (
	"fmt"
	"math"

	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/gltfutil"
	"github.com/binzume/lmoconv/scene"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type GLTFToSceneOption struct {
	// Directory used to resolve relative image uris.
	BaseDir string
}

type gltfToScene struct {
	options   *GLTFToSceneOption
	nodes     []*scene.Node
	materials map[uint32]*scene.Material
}

func NewGLTFToSceneConverter(options *GLTFToSceneOption) *gltfToScene {
	if options == nil {
		options = &GLTFToSceneOption{}
	}
	return &gltfToScene{
		options:   options,
		materials: map[uint32]*scene.Material{},
	}
}

func (c *gltfToScene) convertMaterial(src *gltf.Document, index uint32) *scene.Material {
	if mat, ok := c.materials[index]; ok {
		return mat
	}
	m := src.Materials[index]
	mat := &scene.Material{Name: m.Name, DiffuseColor: geom.Vector3{X: 1, Y: 1, Z: 1}}
	if m.PBRMetallicRoughness != nil {
		col := m.PBRMetallicRoughness.BaseColorFactorOrDefault()
		mat.DiffuseColor = geom.Vector3{X: col[0], Y: col[1], Z: col[2]}
		if t := m.PBRMetallicRoughness.BaseColorTexture; t != nil {
			mat.Textures[scene.TextureDiffuse] = c.texture(src, t.Index)
		}
	}
	if m.NormalTexture != nil && m.NormalTexture.Index != nil {
		mat.Textures[scene.TextureNormal] = c.texture(src, *m.NormalTexture.Index)
	}
	c.materials[index] = mat
	return mat
}

func (c *gltfToScene) texture(src *gltf.Document, index uint32) *scene.Texture {
	uri := gltfutil.TextureURI(src, index, c.options.BaseDir)
	if uri == "" {
		return nil
	}
	return &scene.Texture{FileName: uri}
}

func (c *gltfToScene) convertNodes(src *gltf.Document) {
	c.nodes = make([]*scene.Node, len(src.Nodes))
	for i, n := range src.Nodes {
		sn := scene.NewNode(n.Name)
		if sn.Name == "" {
			sn.Name = fmt.Sprintf("node%d", i)
		}
		sn.ID = int64(i)
		t, r, s := gltfutil.NodeTRS(n)
		sn.Translation = *t
		sn.Rotation = *gltfutil.QuaternionToEulerDegrees(r)
		sn.Scaling = *s
		c.nodes[i] = sn
	}
	for i, p := range gltfutil.Parents(src) {
		if p >= 0 {
			c.nodes[i].Parent = c.nodes[p]
		}
	}
}

// convertMesh merges the triangle primitives of a mesh. Each distinct material becomes a slot;
// primitives without a material share one nil slot.
func (c *gltfToScene) convertMesh(src *gltf.Document, node *gltf.Node) (*scene.Mesh, error) {
	m := src.Meshes[*node.Mesh]
	mesh := &scene.Mesh{Node: c.nodes[indexOfNode(src, node)], Geometry: &scene.Geometry{}}
	g := mesh.Geometry
	slots := map[uint32]int{}
	nilSlot := -1

	var skin *gltf.Skin
	var clusters []*scene.Cluster
	if node.Skin != nil {
		skin = src.Skins[*node.Skin]
		ibm, err := gltfutil.ReadInverseBindMatrices(src, skin)
		if err != nil {
			return nil, err
		}
		g.Skin = &scene.Skin{}
		clusters = make([]*scene.Cluster, len(skin.Joints))
		for i, j := range skin.Joints {
			clusters[i] = &scene.Cluster{Link: c.nodes[j], TransformLink: ibm[i].Inverse()}
		}
	}

	for pi, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		pos, err := modeler.ReadPosition(src, src.Accessors[p.Attributes[gltf.POSITION]], nil)
		if err != nil {
			return nil, fmt.Errorf("gltf: mesh %s primitive %d: %w", m.Name, pi, err)
		}
		var indices []uint32
		if p.Indices != nil {
			indices, err = modeler.ReadIndices(src, src.Accessors[*p.Indices], nil)
			if err != nil {
				return nil, err
			}
		} else {
			for i := range pos {
				indices = append(indices, uint32(i))
			}
		}

		var normals, tangents [][3]float32
		var uvs [][2]float32
		var colors [][4]uint8
		var joints [][4]uint16
		var weights [][4]float32
		if a, ok := p.Attributes[gltf.NORMAL]; ok {
			normals, _ = modeler.ReadNormal(src, src.Accessors[a], nil)
		}
		if a, ok := p.Attributes[gltf.TANGENT]; ok {
			t4, _ := modeler.ReadTangent(src, src.Accessors[a], nil)
			for _, t := range t4 {
				tangents = append(tangents, [3]float32{t[0], t[1], t[2]})
			}
		}
		if a, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, _ = modeler.ReadTextureCoord(src, src.Accessors[a], nil)
		}
		if a, ok := p.Attributes[gltf.COLOR_0]; ok {
			colors, _ = modeler.ReadColor(src, src.Accessors[a], nil)
		}
		if skin != nil {
			if a, ok := p.Attributes[gltf.JOINTS_0]; ok {
				joints, _ = modeler.ReadJoints(src, src.Accessors[a], nil)
			}
			if a, ok := p.Attributes[gltf.WEIGHTS_0]; ok {
				weights, _ = modeler.ReadWeights(src, src.Accessors[a], nil)
			}
		}

		slot := 0
		if p.Material != nil {
			if s, ok := slots[*p.Material]; ok {
				slot = s
			} else {
				slot = len(mesh.Materials)
				slots[*p.Material] = slot
				mesh.Materials = append(mesh.Materials, c.convertMaterial(src, *p.Material))
			}
		} else {
			if nilSlot < 0 {
				nilSlot = len(mesh.Materials)
				mesh.Materials = append(mesh.Materials, nil)
			}
			slot = nilSlot
		}

		for i := 0; i+2 < len(indices); i += 3 {
			for _, idx := range indices[i : i+3] {
				if int(idx) >= len(pos) {
					return nil, fmt.Errorf("gltf: mesh %s: index %d out of range", m.Name, idx)
				}
				v := len(g.Vertices)
				g.Vertices = append(g.Vertices, *geom.NewVector3FromArray(pos[idx]))
				if int(idx) < len(normals) {
					g.Normals = append(g.Normals, *geom.NewVector3FromArray(normals[idx]))
				}
				if int(idx) < len(tangents) {
					g.Tangents = append(g.Tangents, *geom.NewVector3FromArray(tangents[idx]))
				}
				if int(idx) < len(uvs) {
					// bottom-left origin, like FBX
					g.UVs = append(g.UVs, geom.Vector2{X: uvs[idx][0], Y: 1 - uvs[idx][1]})
				}
				if int(idx) < len(colors) {
					col := colors[idx]
					g.Colors = append(g.Colors, geom.Vector4{X: float32(col[0]) / 255, Y: float32(col[1]) / 255, Z: float32(col[2]) / 255, W: float32(col[3]) / 255})
				}
				if int(idx) < len(joints) && int(idx) < len(weights) {
					for k, j := range joints[idx] {
						if weights[idx][k] == 0 || int(j) >= len(clusters) {
							continue
						}
						clusters[j].Indices = append(clusters[j].Indices, v)
						clusters[j].Weights = append(clusters[j].Weights, float64(weights[idx][k]))
					}
				}
			}
			g.Materials = append(g.Materials, slot)
		}
	}

	// channels must cover every vertex or none
	if len(g.Normals) != len(g.Vertices) {
		g.Normals = nil
	}
	if len(g.Tangents) != len(g.Vertices) {
		g.Tangents = nil
	}
	if len(g.UVs) != len(g.Vertices) {
		g.UVs = nil
	}
	if len(g.Colors) != len(g.Vertices) {
		g.Colors = nil
	}
	if len(mesh.Materials) <= 1 {
		g.Materials = nil
	}
	for _, cl := range clusters {
		if len(cl.Indices) > 0 {
			g.Skin.Clusters = append(g.Skin.Clusters, cl)
		}
	}
	return mesh, nil
}

func indexOfNode(src *gltf.Document, node *gltf.Node) int {
	for i, n := range src.Nodes {
		if n == node {
			return i
		}
	}
	return -1
}

func readFloats(src *gltf.Document, index *uint32) ([]float32, error) {
	if index == nil {
		return nil, fmt.Errorf("gltf: missing accessor")
	}
	data, err := modeler.ReadAccessor(src, src.Accessors[*index], nil)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []float32:
		return v, nil
	case [][3]float32:
		r := make([]float32, 0, len(v)*3)
		for _, e := range v {
			r = append(r, e[:]...)
		}
		return r, nil
	case [][4]float32:
		r := make([]float32, 0, len(v)*4)
		for _, e := range v {
			r = append(r, e[:]...)
		}
		return r, nil
	}
	return nil, fmt.Errorf("gltf: unsupported accessor type %T", data)
}

func (c *gltfToScene) convertAnimation(src *gltf.Document, a *gltf.Animation, index int) (*scene.AnimationStack, *scene.TakeInfo, error) {
	name := a.Name
	if name == "" {
		name = fmt.Sprintf("animation%d", index)
	}
	layer := &scene.AnimationLayer{Name: "BaseLayer"}
	take := &scene.TakeInfo{Name: name, LocalTimeFrom: math.MaxFloat64}

	for _, ch := range a.Channels {
		if ch.Sampler == nil || ch.Target.Node == nil || int(*ch.Sampler) >= len(a.Samplers) {
			continue
		}
		var prop string
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			prop = scene.PropertyTranslation
		case gltf.TRSRotation:
			prop = scene.PropertyRotation
		default:
			continue
		}
		sampler := a.Samplers[*ch.Sampler]
		times, err := readFloats(src, sampler.Input)
		if err != nil {
			return nil, nil, err
		}
		values, err := readFloats(src, sampler.Output)
		if err != nil {
			return nil, nil, err
		}
		stride := 3
		if prop == scene.PropertyRotation {
			stride = 4
		}
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			// in-tangent, value, out-tangent
			var v []float32
			for i := 0; i+3*stride <= len(values); i += 3 * stride {
				v = append(v, values[i+stride:i+2*stride]...)
			}
			values = v
		}
		if len(values) < len(times)*stride {
			return nil, nil, fmt.Errorf("gltf: animation %s: %d keys but %d values", name, len(times), len(values))
		}

		node := &scene.CurveNode{Bone: c.nodes[*ch.Target.Node], Property: prop}
		for axis := range node.Curves {
			node.Curves[axis] = &scene.Curve{}
		}
		for i, t := range times {
			v := values[i*stride : (i+1)*stride]
			if prop == scene.PropertyRotation {
				e := gltfutil.QuaternionToEulerDegrees(geom.NewQuaternion(v[0], v[1], v[2], v[3]).Normalize())
				v = []float32{e.X, e.Y, e.Z}
			}
			for axis, curve := range node.Curves {
				curve.Times = append(curve.Times, float64(t))
				curve.Values = append(curve.Values, v[axis])
			}
			take.LocalTimeFrom = math.Min(take.LocalTimeFrom, float64(t))
			take.LocalTimeTo = math.Max(take.LocalTimeTo, float64(t))
		}
		layer.CurveNodes = append(layer.CurveNodes, node)
	}
	if take.LocalTimeFrom > take.LocalTimeTo {
		take.LocalTimeFrom = 0
	}
	return &scene.AnimationStack{Name: name, Layers: []*scene.AnimationLayer{layer}}, take, nil
}

func (c *gltfToScene) Convert(src *gltf.Document) (*scene.Scene, error) {
	dst := &scene.Scene{
		Settings: scene.Settings{UnitScaleFactor: 100, UpAxis: 1, UpAxisSign: 1},
	}
	c.convertNodes(src)
	dst.Nodes = c.nodes

	for _, node := range src.Nodes {
		if node.Mesh == nil {
			continue
		}
		mesh, err := c.convertMesh(src, node)
		if err != nil {
			return nil, err
		}
		dst.Meshes = append(dst.Meshes, mesh)
	}

	for i, a := range src.Animations {
		stack, take, err := c.convertAnimation(src, a, i)
		if err != nil {
			return nil, err
		}
		dst.AnimationStacks = append(dst.AnimationStacks, stack)
		dst.Takes = append(dst.Takes, take)
		dst.Settings.TimeSpanStop = math.Max(dst.Settings.TimeSpanStop, take.LocalTimeTo)
	}
	return dst, nil
}
