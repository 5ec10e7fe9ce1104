package importer

// Weight sums below this are treated as zero.
const minWeightSum = 1e-6

// Skin holds up to 4 influences of one vertex.
type Skin struct {
	Joints  [4]int16
	Weights [4]float32
	Count   int
}

// fillSkinInfo resolves the influences of every vertex of the mesh geometry.
// Vertices whose weights sum to zero keep Count 0 and are rejected when emitted.
func (s *Session) fillSkinInfo(m *ImportMesh) ([]Skin, error) {
	g := m.Source.Geometry
	skin := g.Skin
	if skin == nil {
		skins := make([]Skin, len(g.Vertices))
		for i := range skins {
			j := int16(m.BoneIndex)
			skins[i] = Skin{Joints: [4]int16{j, j, j, j}, Weights: [4]float32{1, 0, 0, 0}, Count: 1}
		}
		return skins, nil
	}

	skins := make([]Skin, len(g.Vertices))
	name := MeshName(m)
	for _, c := range skin.Clusters {
		if len(c.Indices) == 0 {
			continue
		}
		if len(c.Indices) != len(c.Weights) {
			return nil, integrityError(name, "cluster has %d indices and %d weights", len(c.Indices), len(c.Weights))
		}
		joint := s.boneIndex(c.Link)
		if joint < 0 {
			return nil, integrityError(name, "cluster bone is not in the skeleton")
		}
		for i, idx := range c.Indices {
			if idx < 0 || idx >= len(skins) {
				return nil, integrityError(name, "cluster index %d out of range", idx)
			}
			addInfluence(&skins[idx], int16(joint), float32(c.Weights[i]))
		}
	}

	for i := range skins {
		normalizeSkin(&skins[i])
	}
	return skins, nil
}

// addInfluence keeps the 4 largest weights.
func addInfluence(sk *Skin, joint int16, weight float32) {
	if sk.Count < 4 {
		sk.Joints[sk.Count] = joint
		sk.Weights[sk.Count] = weight
		sk.Count++
		return
	}
	min := 0
	for k := 1; k < 4; k++ {
		if sk.Weights[k] < sk.Weights[min] {
			min = k
		}
	}
	if sk.Weights[min] < weight {
		sk.Joints[min] = joint
		sk.Weights[min] = weight
	}
}

func normalizeSkin(sk *Skin) {
	var sum float32
	for _, w := range sk.Weights {
		sum += w
	}
	if sk.Count == 0 || sum < minWeightSum {
		sk.Count = 0
		return
	}
	for k := range sk.Weights {
		sk.Weights[k] /= sum
	}
	// unused slots repeat the last bone with zero weight
	for k := sk.Count; k < 4; k++ {
		sk.Joints[k] = sk.Joints[sk.Count-1]
		sk.Weights[k] = 0
	}
}
