package fbx

import "github.com/binzume/lmoconv/geom"

// Skin is the skin deformer attached to a geometry.
type Skin struct {
	Obj
}

func (s *Skin) GetClusters() []*Cluster {
	var r []*Cluster
	for _, o := range s.FindRefs("Deformer") {
		if c, ok := o.(*Cluster); ok {
			r = append(r, c)
		}
	}
	return r
}

// Cluster is a skin sub deformer binding control points to one bone.
type Cluster struct {
	Obj
}

func (c *Cluster) GetWeights() []float64 {
	return c.FindChild("Weights").GetFloat64Array()
}

func (c *Cluster) GetIndexes() []int32 {
	return c.FindChild("Indexes").GetInt32Array()
}

func (c *Cluster) GetTransform() *geom.Matrix4 {
	return matrixOrIdentity(c.FindChild("Transform").GetFloat64Array())
}

func (c *Cluster) GetTransformLink() *geom.Matrix4 {
	return matrixOrIdentity(c.FindChild("TransformLink").GetFloat64Array())
}

// GetLink returns the bone driving this cluster.
func (c *Cluster) GetLink() *Model {
	for _, o := range c.FindRefs("Model") {
		if m, ok := o.(*Model); ok {
			return m
		}
	}
	return nil
}

func matrixOrIdentity(m []float64) *geom.Matrix4 {
	if len(m) != 16 {
		return geom.NewMatrix4()
	}
	return geom.NewMatrix4FromFloat64Slice(m)
}
