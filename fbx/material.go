package fbx

import "github.com/binzume/lmoconv/geom"

type Material struct {
	Obj
}

func (m *Material) GetColor(name string, def *geom.Vector3) *geom.Vector3 {
	if def == nil {
		def = &geom.Vector3{}
	}
	return m.GetProperty(name).ToVector3(def.X, def.Y, def.Z)
}

func (m *Material) GetFactor(name string, def float32) float32 {
	return m.GetProperty(name).ToFloat32(def)
}

// GetTexture returns the texture connected to a material property such as
// "DiffuseColor", "NormalMap" or "SpecularColor".
func (m *Material) GetTexture(prop string) *Texture {
	t, _ := m.FindRefByProp(prop).(*Texture)
	return t
}

type Texture struct {
	Obj
}

func (t *Texture) GetFileName() string {
	return t.FindChild("FileName").GetString()
}

func (t *Texture) GetRelativeFileName() string {
	return t.FindChild("RelativeFilename").GetString()
}
