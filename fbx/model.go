package fbx

import (
	"github.com/binzume/lmoconv/geom"
)

type Model struct {
	Obj
	Parent *Model
}

func (m *Model) GetTranslation() *geom.Vector3 {
	return m.GetProperty("Lcl Translation").ToVector3(0, 0, 0)
}

// GetRotation returns euler angles in degrees.
func (m *Model) GetRotation() *geom.Vector3 {
	return m.GetProperty("Lcl Rotation").ToVector3(0, 0, 0)
}

func (m *Model) GetScaling() *geom.Vector3 {
	return m.GetProperty("Lcl Scaling").ToVector3(1, 1, 1)
}

func (m *Model) GetPreRotation() *geom.Vector3 {
	return m.GetProperty("PreRotation").ToVector3(0, 0, 0)
}

func (m *Model) GetPostRotation() *geom.Vector3 {
	return m.GetProperty("PostRotation").ToVector3(0, 0, 0)
}

func (m *Model) GetRotationOffset() *geom.Vector3 {
	return m.GetProperty("RotationOffset").ToVector3(0, 0, 0)
}

func (m *Model) GetRotationPivot() *geom.Vector3 {
	return m.GetProperty("RotationPivot").ToVector3(0, 0, 0)
}

func (m *Model) GetScalingOffset() *geom.Vector3 {
	return m.GetProperty("ScalingOffset").ToVector3(0, 0, 0)
}

func (m *Model) GetScalingPivot() *geom.Vector3 {
	return m.GetProperty("ScalingPivot").ToVector3(0, 0, 0)
}

// GetRotationOrder returns the FBX EFbxRotationOrder value (0: XYZ ... 5: ZYX).
func (m *Model) GetRotationOrder() int {
	return m.GetProperty("RotationOrder").ToInt(0)
}

func (m *Model) GetGeometricTranslation() *geom.Vector3 {
	return m.GetProperty("GeometricTranslation").ToVector3(0, 0, 0)
}

func (m *Model) GetGeometricRotation() *geom.Vector3 {
	return m.GetProperty("GeometricRotation").ToVector3(0, 0, 0)
}

func (m *Model) GetGeometricScaling() *geom.Vector3 {
	return m.GetProperty("GeometricScaling").ToVector3(1, 1, 1)
}

func (m *Model) GetChildModels() []*Model {
	var r []*Model
	for _, o := range m.FindRefs("Model") {
		if c, ok := o.(*Model); ok {
			r = append(r, c)
		}
	}
	return r
}

func (m *Model) GetGeometry() *Geometry {
	for _, o := range m.FindRefs("Geometry") {
		if g, ok := o.(*Geometry); ok && g.Kind() == "Mesh" {
			return g
		}
	}
	return nil
}

// GetMaterials returns materials in slot order.
func (m *Model) GetMaterials() []*Material {
	var r []*Material
	for _, o := range m.FindRefs("Material") {
		r = append(r, o.(*Material))
	}
	return r
}
