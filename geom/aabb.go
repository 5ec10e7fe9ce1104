package geom

// AABB is an axis aligned bounding box.
type AABB struct {
	Min Vector3
	Max Vector3
}

// NewAABBAtOrigin returns a box that already contains the origin.
func NewAABBAtOrigin() *AABB {
	return &AABB{}
}

func (b *AABB) AddPoint(p *Vector3) {
	b.Min = *b.Min.Min(p)
	b.Max = *b.Max.Max(p)
}

func (b *AABB) Merge(o *AABB) {
	b.AddPoint(&o.Min)
	b.AddPoint(&o.Max)
}

func (b *AABB) Center() *Vector3 {
	return b.Min.Add(&b.Max).Scale(0.5)
}

func (b *AABB) Size() *Vector3 {
	return b.Max.Sub(&b.Min)
}

func (b *AABB) Scale(s Element) *AABB {
	return &AABB{Min: *b.Min.Scale(s), Max: *b.Max.Scale(s)}
}

// Corners returns the 8 corner points.
func (b *AABB) Corners() [8]Vector3 {
	var c [8]Vector3
	for i := range c {
		c[i] = b.Min
		if i&1 != 0 {
			c[i].X = b.Max.X
		}
		if i&2 != 0 {
			c[i].Y = b.Max.Y
		}
		if i&4 != 0 {
			c[i].Z = b.Max.Z
		}
	}
	return c
}
