package fbx

type AnimationStack struct {
	Obj
}

func (s *AnimationStack) GetLayers() []*AnimationLayer {
	var r []*AnimationLayer
	for _, o := range s.FindRefs("AnimationLayer") {
		r = append(r, o.(*AnimationLayer))
	}
	return r
}

func (s *AnimationStack) LocalStart() int64 {
	return s.GetProperty("LocalStart").ToInt64(0)
}

func (s *AnimationStack) LocalStop() int64 {
	return s.GetProperty("LocalStop").ToInt64(0)
}

type AnimationLayer struct {
	Obj
}

func (l *AnimationLayer) GetCurveNodes() []*AnimationCurveNode {
	var r []*AnimationCurveNode
	for _, o := range l.FindRefs("AnimationCurveNode") {
		r = append(r, o.(*AnimationCurveNode))
	}
	return r
}

// AnimationCurveNode animates one vector property ("Lcl Translation", ...) of a model.
type AnimationCurveNode struct {
	Obj
}

// GetCurves returns the X, Y and Z curves. Missing axes are nil.
func (n *AnimationCurveNode) GetCurves() [3]*AnimationCurve {
	var r [3]*AnimationCurve
	for i, prop := range []string{"d|X", "d|Y", "d|Z"} {
		r[i], _ = n.FindRefByProp(prop).(*AnimationCurve)
	}
	return r
}

// GetTarget returns the animated model and the property name.
func (n *AnimationCurveNode) GetTarget() (*Model, string) {
	for _, l := range n.FindOwners("Model") {
		if m, ok := l.Object.(*Model); ok {
			return m, l.Prop
		}
	}
	return nil, ""
}

type AnimationCurve struct {
	Obj
}

func (c *AnimationCurve) GetKeyTimes() []int64 {
	return c.FindChild("KeyTime").GetInt64Array()
}

func (c *AnimationCurve) GetKeyValues() []float64 {
	return c.FindChild("KeyValueFloat").GetFloat64Array()
}
