package importer

import (
	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/scene"
)

// insertHierarchy appends node after its missing ancestors.
func (s *Session) insertHierarchy(node *scene.Node) {
	if node == nil || s.boneIndex(node) >= 0 {
		return
	}
	s.insertHierarchy(node.Parent)
	s.bones = append(s.bones, node)
}

// sortBones moves parents in front of their children, keeping the order otherwise.
func (s *Session) sortBones() {
	for i := 0; i < len(s.bones); i++ {
		for j := i + 1; j < len(s.bones); j++ {
			if s.bones[i].Parent != s.bones[j] {
				continue
			}
			parent := s.bones[j]
			copy(s.bones[i+1:j+1], s.bones[i:j])
			s.bones[i] = parent
			i--
			break
		}
	}
}

func (s *Session) gatherBones() {
	for _, m := range s.scene.Meshes {
		if m.Geometry == nil || m.Geometry.Skin == nil {
			continue
		}
		for _, c := range m.Geometry.Skin.Clusters {
			s.insertHierarchy(c.Link)
		}
	}
	for _, stack := range s.scene.AnimationStacks {
		for _, layer := range stack.Layers {
			for _, cn := range layer.CurveNodes {
				s.insertHierarchy(cn.Bone)
			}
		}
	}
	s.sortBones()

	if !s.cfg.IgnoreSkeleton {
		for _, m := range s.meshes {
			if idx := s.boneIndex(m.Source.Node); idx >= 0 {
				m.Skinned = true
				m.BoneIndex = idx
			}
		}
	}

	if s.cfg.RootMotionBone != "" {
		for i, b := range s.bones {
			if b.Name == s.cfg.RootMotionBone {
				for _, a := range s.animations {
					a.RootMotionBone = i
				}
				break
			}
		}
	}
}

// meshOfBone returns a mesh bound to the bone, rigidly or through a cluster.
func (s *Session) meshOfBone(node *scene.Node, boneIdx int) *ImportMesh {
	for _, m := range s.meshes {
		if m.BoneIndex == boneIdx {
			return m
		}
		if skin := m.Source.Geometry.Skin; skin != nil {
			for _, c := range skin.Clusters {
				if c.Link == node {
					return m
				}
			}
		}
	}
	return nil
}

// bindPose returns the global bind transform of a bone.
func (s *Session) bindPose(node *scene.Node, boneIdx int) *geom.Matrix4 {
	m := s.meshOfBone(node, boneIdx)
	if m != nil && m.Source.Geometry.Skin != nil {
		for _, c := range m.Source.Geometry.Skin.Clusters {
			if c.Link == node && c.TransformLink != nil {
				return c.TransformLink.Clone()
			}
		}
	}
	return node.GlobalMatrix()
}
