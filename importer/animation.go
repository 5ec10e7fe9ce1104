package importer

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/lmo"
	"github.com/binzume/lmoconv/scene"
	"github.com/chewxy/math32"
)

type TranslationKey struct {
	Time  float64 // seconds
	Value geom.Vector3
}

type RotationKey struct {
	Time  float64
	Value geom.Quaternion
}

// curveKeys merges the per-axis curves of a curve node into keys.
// Missing axes use def. All present axes must share the key times.
func curveKeys(cn *scene.CurveNode, def *geom.Vector3) ([]float64, []geom.Vector3, error) {
	var times []float64
	for _, c := range cn.Curves {
		if c != nil {
			times = c.Times
			break
		}
	}
	if times == nil {
		return nil, nil, nil
	}
	values := make([]geom.Vector3, len(times))
	for i := range values {
		values[i] = *def
	}
	for axis, c := range cn.Curves {
		if c == nil {
			continue
		}
		if len(c.Times) != len(times) || len(c.Values) != len(times) {
			return nil, nil, fmt.Errorf("%s of %s: axis %d has %d keys, expected %d", cn.Property, cn.Bone.Name, axis, len(c.Times), len(times))
		}
		for i, t := range c.Times {
			if t != times[i] {
				return nil, nil, fmt.Errorf("%s of %s: axis %d key %d time mismatch", cn.Property, cn.Bone.Name, axis, i)
			}
			switch axis {
			case 0:
				values[i].X = c.Values[i]
			case 1:
				values[i].Y = c.Values[i]
			case 2:
				values[i].Z = c.Values[i]
			}
		}
	}
	return times, values, nil
}

// translationKeys evaluates the local translation of bone at each key with the static rotation.
func translationKeys(cn *scene.CurveNode, bone *scene.Node, parentScale float32) ([]TranslationKey, error) {
	times, values, err := curveKeys(cn, &bone.Translation)
	if err != nil {
		return nil, err
	}
	keys := make([]TranslationKey, len(times))
	for i := range keys {
		t := bone.EvalLocal(&values[i], &bone.Rotation).Translation()
		keys[i] = TranslationKey{Time: times[i], Value: *t.Scale(parentScale)}
	}
	return keys, nil
}

// rotationKeys evaluates the local rotation of bone at each key with the static translation.
func rotationKeys(cn *scene.CurveNode, bone *scene.Node) ([]RotationKey, error) {
	times, values, err := curveKeys(cn, &bone.Rotation)
	if err != nil {
		return nil, err
	}
	keys := make([]RotationKey, len(times))
	for i := range keys {
		q := bone.EvalLocal(&bone.Translation, &values[i]).NormalizeScale().Rotation()
		keys[i] = RotationKey{Time: times[i], Value: *q}
	}
	return keys, nil
}

func withinTolerance(a, b *geom.Vector3, tol float32) bool {
	return math32.Abs(a.X-b.X) <= tol && math32.Abs(a.Y-b.Y) <= tol && math32.Abs(a.Z-b.Z) <= tol
}

func lerpVector(a, b *TranslationKey, t float64) *geom.Vector3 {
	dt := b.Time - a.Time
	if dt <= 0 {
		return &a.Value
	}
	f := float32((t - a.Time) / dt)
	return a.Value.Add(b.Value.Sub(&a.Value).Scale(f))
}

// CompressTranslations drops keys that linear interpolation between the kept keys
// reproduces within tol on every axis. clipEnd is used to extend single key tracks.
func CompressTranslations(keys []TranslationKey, tol float32, clipEnd float64) []TranslationKey {
	if len(keys) == 0 {
		return nil
	}
	keys = append([]TranslationKey(nil), keys...)
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
	if len(keys) == 1 {
		keys = append(keys, TranslationKey{Time: clipEnd, Value: keys[0].Value})
	}

	velocity := func(a, b *TranslationKey) *geom.Vector3 {
		dt := b.Time - a.Time
		if dt <= 0 {
			return &geom.Vector3{}
		}
		return b.Value.Sub(&a.Value).Scale(float32(1 / dt))
	}

	out := []TranslationKey{keys[0]}
	prev := 0
	dir := velocity(&keys[0], &keys[1])
	for i := 2; i < len(keys); i++ {
		estimate := keys[prev].Value.Add(dir.Scale(float32(keys[i].Time - keys[prev].Time)))
		ok := withinTolerance(estimate, &keys[i].Value, tol)
		for j := prev + 1; j < i && ok; j++ {
			ok = withinTolerance(lerpVector(&keys[prev], &keys[i], keys[j].Time), &keys[j].Value, tol)
		}
		if !ok {
			out = append(out, keys[i-1])
			prev = i - 1
			dir = velocity(&keys[i-1], &keys[i])
		}
	}
	return append(out, keys[len(keys)-1])
}

func quaternionWithin(a, b *geom.Quaternion, tol float32) bool {
	if a.Dot(b) < 0 {
		a = a.Negate()
	}
	return withinTolerance(&geom.Vector3{X: a.X, Y: a.Y, Z: a.Z}, &geom.Vector3{X: b.X, Y: b.Y, Z: b.Z}, tol)
}

func slerpKey(a, b *RotationKey, t float64) *geom.Quaternion {
	dt := b.Time - a.Time
	if dt <= 0 {
		return &a.Value
	}
	return geom.Slerp(&a.Value, &b.Value, float32((t-a.Time)/dt))
}

// CompressRotations drops keys that spherical interpolation between the kept keys
// reproduces within tol on the x, y and z components.
func CompressRotations(keys []RotationKey, tol float32, clipEnd float64) []RotationKey {
	if len(keys) == 0 {
		return nil
	}
	keys = append([]RotationKey(nil), keys...)
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
	// keep neighbours in the same hemisphere
	for i := 1; i < len(keys); i++ {
		if keys[i-1].Value.Dot(&keys[i].Value) < 0 {
			keys[i].Value = *keys[i].Value.Negate()
		}
	}
	if len(keys) == 1 {
		keys = append(keys, RotationKey{Time: clipEnd, Value: keys[0].Value})
	}

	out := []RotationKey{keys[0]}
	prev := 0
	for i := 2; i < len(keys); i++ {
		ok := true
		for j := prev + 1; j < i && ok; j++ {
			ok = quaternionWithin(slerpKey(&keys[prev], &keys[i], keys[j].Time), &keys[j].Value, tol)
		}
		if !ok {
			out = append(out, keys[i-1])
			prev = i - 1
		}
	}
	return append(out, keys[len(keys)-1])
}

// quantizeTime maps a clip relative time to 0..0xffff.
func quantizeTime(t, start, length float64) uint16 {
	f := (t - start) / length
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return uint16(f * 0xffff)
}

// clipSpan returns the start and length of a clip in seconds.
func (s *Session) clipSpan(anim *ImportAnimation) (float64, float64, error) {
	if take := s.takeInfo(anim.Stack); take != nil {
		length := take.LocalTimeTo - take.LocalTimeFrom
		if length > 0 {
			return take.LocalTimeFrom, length, nil
		}
	} else if s.scene.Settings.TimeSpanStop > 0 {
		return 0, s.scene.Settings.TimeSpanStop, nil
	}
	return 0, 0, &ImportError{Kind: ErrUnsupportedClip, Artifact: anim.Name, Err: fmt.Errorf("no time span")}
}

// BuildAnimation compresses the tracks of every animated bone of a clip.
func (s *Session) BuildAnimation(anim *ImportAnimation) (*lmo.Animation, error) {
	start, length, err := s.clipSpan(anim)
	if err != nil {
		return nil, err
	}
	out := lmo.NewAnimation(length)
	out.RootMotionBone = int32(anim.RootMotionBone)
	if len(anim.Stack.Layers) == 0 {
		return out, nil
	}
	layer := anim.Stack.Layers[0]
	scale := s.cfg.MeshScale * s.unitScale

	for i, bone := range s.bones {
		tnode := layer.CurveNode(bone, scene.PropertyTranslation)
		rnode := layer.CurveNode(bone, scene.PropertyRotation)
		if tnode == nil && rnode == nil {
			continue
		}
		orientation := s.orientation
		if i == anim.RootMotionBone {
			orientation = s.rootOrientation
		}
		depth := float32(bone.Depth())
		track := &lmo.BoneTrack{NameHash: lmo.NameHash(bone.Name)}

		if tnode != nil {
			parentScale := float32(1)
			if bone.Parent != nil {
				parentScale = bone.Parent.GlobalMatrix().AxisScale().X
			}
			keys, err := translationKeys(tnode, bone, parentScale)
			if err != nil {
				return nil, &ImportError{Kind: ErrDataIntegrity, Artifact: anim.Name, Err: err}
			}
			for _, k := range CompressTranslations(keys, s.cfg.PositionError/depth, start+length) {
				track.Positions = append(track.Positions, lmo.PositionKey{
					Time:  quantizeTime(k.Time, start, length),
					Value: orientation.FixVector(k.Value.Scale(scale)),
				})
			}
		}
		if rnode != nil {
			keys, err := rotationKeys(rnode, bone)
			if err != nil {
				return nil, &ImportError{Kind: ErrDataIntegrity, Artifact: anim.Name, Err: err}
			}
			for _, k := range CompressRotations(keys, s.cfg.RotationError/depth, start+length) {
				track.Rotations = append(track.Rotations, lmo.RotationKey{
					Time:  quantizeTime(k.Time, start, length),
					Value: orientation.FixQuaternion(&k.Value),
				})
			}
		}
		out.Tracks = append(out.Tracks, track)
	}
	return out, nil
}

// WriteAnimations writes one resource per clip. Unsupported clips are skipped.
func (s *Session) WriteAnimations(out Output) error {
	var firstErr error
	for _, anim := range s.animations {
		a, err := s.BuildAnimation(anim)
		if err != nil {
			if errors.Is(err, ErrUnsupportedClip) {
				log.Printf("skip animation %s in %s: %v", anim.Name, s.src, err)
				continue
			}
			return err
		}
		var buf bytes.Buffer
		if err := lmo.NewWriter(&buf).WriteAnimation(a); err != nil {
			return err
		}
		locator := anim.Name + ".ani:" + s.src
		if err := out.WriteResource(locator, buf.Bytes()); err != nil {
			log.Printf("failed to write %s: %v", locator, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
