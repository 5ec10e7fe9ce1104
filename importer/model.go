package importer

import (
	"bytes"
	"log"
	"sort"

	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/lmo"
	"github.com/chewxy/math32"
)

const impostorGrid = 9

// impostorToWorld maps an octahedral grid coordinate to a view direction.
func impostorToWorld(u, v float32) geom.Vector3 {
	x := u - v
	y := -1 + u + v
	z := 1 - math32.Abs(x) - math32.Abs(y)
	return geom.Vector3{X: x, Y: z, Z: y}
}

// impostorProjection returns the screen space extent of aabb over all impostor views.
func impostorProjection(aabb *geom.AABB) (min, max geom.Vector2) {
	radius := aabb.Size().Len() * 0.5
	center := aabb.Center()
	proj := geom.NewOrthoMatrix4(-1, 1, -1, 1, 0, radius*2)
	up := &geom.Vector3{Y: 1}
	min = geom.Vector2{X: math32.MaxFloat32, Y: math32.MaxFloat32}
	max = geom.Vector2{X: -math32.MaxFloat32, Y: -math32.MaxFloat32}
	corners := aabb.Corners()
	for j := 0; j < impostorGrid; j++ {
		for i := 0; i < impostorGrid; i++ {
			dir := impostorToWorld(float32(i)/(impostorGrid-1), float32(j)/(impostorGrid-1))
			vp := proj.Mul(geom.NewLookAtMatrix4(center.Add(&dir), center, up))
			for k := range corners {
				p := vp.ApplyToVector4(&geom.Vector4{X: corners[k].X, Y: corners[k].Y, Z: corners[k].Z, W: 1})
				x, y := p.X/p.W, p.Y/p.W
				min.X, min.Y = math32.Min(min.X, x), math32.Min(min.Y, y)
				max.X, max.Y = math32.Max(max.X, x), math32.Max(max.Y, y)
			}
		}
	}
	return
}

// impostorMesh is a camera facing quad covering aabb.
func (s *Session) impostorMesh(aabb *geom.AABB) *lmo.Mesh {
	center := aabb.Center()
	min, max := impostorProjection(aabb)
	corners := []struct{ x, y, u, v float32 }{
		{min.X, min.Y, 0, 0},
		{min.X, max.Y, 0, 1},
		{max.X, max.Y, 1, 1},
		{max.X, min.Y, 1, 0},
	}
	var data []byte
	for _, c := range corners {
		data = appendFloats(data, center.X+c.x, center.Y+c.y, center.Z)
		data = append(data, 128, 255, 128, 0) // normal
		data = append(data, 255, 128, 128, 0) // tangent
		data = appendFloats(data, c.u, c.v)
	}
	return &lmo.Mesh{
		Attributes: []lmo.Attribute{
			{Semantic: lmo.SemanticPosition, Type: lmo.TypeFloat, Count: 3},
			{Semantic: lmo.SemanticNormal, Type: lmo.TypeU8, Count: 4},
			{Semantic: lmo.SemanticTangent, Type: lmo.TypeU8, Count: 4},
			{Semantic: lmo.SemanticTexCoord0, Type: lmo.TypeFloat, Count: 2},
		},
		Material: s.impostorMaterialPath(),
		Name:     "impostor",
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
		Vertices: data,
	}
}

func (s *Session) exportMesh(m *ImportMesh) *lmo.Mesh {
	return &lmo.Mesh{
		Attributes: m.Attributes,
		Material:   s.MaterialPath(m.Material),
		Name:       MeshName(m),
		Indices:    m.Indices,
		Vertices:   m.VertexData,
	}
}

// skeleton returns the bind pose of every bone, parents first.
func (s *Session) skeleton() []*lmo.Bone {
	scale := s.cfg.MeshScale * s.unitScale
	bones := make([]*lmo.Bone, len(s.bones))
	for i, node := range s.bones {
		pose := s.bindPose(node, i).NormalizeScale()
		bones[i] = &lmo.Bone{
			Name:     node.Name,
			Parent:   s.boneIndex(node.Parent),
			Position: s.orientation.FixVector(pose.Translation().Scale(scale)),
			Rotation: s.orientation.FixQuaternion(pose.Rotation()),
		}
	}
	return bones
}

func (s *Session) lodDistance(lod int) float32 {
	d := s.cfg.LODDistances[lod]
	if d < 0 {
		return lmo.NoLODDistance
	}
	return d * d
}

// lods builds the cumulative LOD table. meshes must be sorted by LOD.
func (s *Session) lods(impostor bool) []lmo.LOD {
	var to [maxLODs]int
	count := 1
	last := -1
	for _, m := range s.meshes {
		last++
		if m.LOD >= len(s.cfg.LODDistances) {
			continue
		}
		count = m.LOD + 1
		to[m.LOD] = last
	}
	for i := 1; i < len(to); i++ {
		if to[i] < to[i-1] {
			to[i] = to[i-1]
		}
	}
	if impostor {
		to[count] = last + 1
		count++
	}
	lods := make([]lmo.LOD, count)
	for i := range lods {
		distance := lmo.NoLODDistance
		if i < len(s.cfg.LODDistances) {
			distance = s.lodDistance(i)
		}
		lods[i] = lmo.LOD{ToMesh: to[i], Distance: distance}
	}
	return lods
}

func (s *Session) bounds(meshes []*ImportMesh) (float32, geom.AABB) {
	var aabb geom.AABB
	var r2 float32
	for _, m := range meshes {
		aabb.Merge(&m.AABB)
		r2 = math32.Max(r2, m.RadiusSquared)
	}
	return r2, aabb
}

// BuildModel assembles the whole model. Returns nil when there is no mesh.
func (s *Session) BuildModel() (*lmo.Model, error) {
	if err := s.postprocessMeshes(); err != nil {
		return nil, err
	}
	if len(s.meshes) == 0 {
		return nil, nil
	}
	sort.SliceStable(s.meshes, func(i, j int) bool { return s.meshes[i].LOD < s.meshes[j].LOD })

	model := lmo.NewModel()
	for _, m := range s.meshes {
		model.Meshes = append(model.Meshes, s.exportMesh(m))
	}
	r2, aabb := s.bounds(s.meshes)
	if s.cfg.CreateImpostor {
		model.Meshes = append(model.Meshes, s.impostorMesh(&aabb))
	}
	model.BoundingRadius = math32.Sqrt(r2) * s.cfg.BoundingShapeScale
	model.AABB = *aabb.Scale(s.cfg.BoundingShapeScale)
	if !s.cfg.IgnoreSkeleton {
		model.Bones = s.skeleton()
	}
	model.LODs = s.lods(s.cfg.CreateImpostor)
	return model, nil
}

func encodeModel(model *lmo.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := lmo.NewWriter(&buf).WriteModel(model); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteModel writes the model resource under the source locator.
func (s *Session) WriteModel(out Output) error {
	model, err := s.BuildModel()
	if err != nil || model == nil {
		return err
	}
	data, err := encodeModel(model)
	if err != nil {
		return err
	}
	return out.WriteResource(s.src, data)
}

// BuildSubmodel is a model of a single mesh.
func (s *Session) BuildSubmodel(m *ImportMesh) *lmo.Model {
	model := lmo.NewModel()
	model.Meshes = []*lmo.Mesh{s.exportMesh(m)}
	r2, aabb := s.bounds([]*ImportMesh{m})
	model.BoundingRadius = math32.Sqrt(r2) * s.cfg.BoundingShapeScale
	model.AABB = *aabb.Scale(s.cfg.BoundingShapeScale)
	if m.Source.Geometry.Skin != nil && !s.cfg.IgnoreSkeleton {
		model.Bones = s.skeleton()
	}
	model.LODs = []lmo.LOD{{ToMesh: 0, Distance: lmo.NoLODDistance}}
	return model
}

func (s *Session) submodelLocator(m *ImportMesh) string {
	return MeshName(m) + sourceExt(s.src) + ":" + s.src
}

// WriteSubmodels writes one model resource per mesh. A failed write skips that mesh only.
func (s *Session) WriteSubmodels(out Output) error {
	if err := s.postprocessMeshes(); err != nil {
		return err
	}
	var firstErr error
	for _, m := range s.meshes {
		data, err := encodeModel(s.BuildSubmodel(m))
		if err == nil {
			err = out.WriteResource(s.submodelLocator(m), data)
		}
		if err != nil {
			log.Printf("submodel %s: %v", MeshName(m), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
