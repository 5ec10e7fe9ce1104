package importer

import (
	"errors"
	"math"
	"testing"

	"github.com/binzume/lmoconv/geom"
	"github.com/binzume/lmoconv/lmo"
	"github.com/binzume/lmoconv/scene"
)

func TestChainAnimation(t *testing.T) {
	s := newTestSession(chainScene(), nil)
	if len(s.Animations()) != 1 || s.Animations()[0].Name != "walk" {
		t.Fatal("animations", s.Animations())
	}
	anim, err := s.BuildAnimation(s.Animations()[0])
	if err != nil {
		t.Fatal(err)
	}
	if anim.Length != lmo.TimeUnit || anim.RootMotionBone != -1 || len(anim.Tracks) != 3 {
		t.Fatal("animation", anim.Length, anim.RootMotionBone, len(anim.Tracks))
	}
	for i, track := range anim.Tracks {
		if track.NameHash != lmo.NameHash(s.Bones()[i].Name) {
			t.Error("hash", i)
		}
		if len(track.Positions) != 2 || len(track.Rotations) != 2 {
			t.Fatal("keys", i, len(track.Positions), len(track.Rotations))
		}
		if track.Positions[0].Time != 0 || track.Positions[1].Time != 0xffff || track.Rotations[1].Time != 0xffff {
			t.Error("times", track.Positions, track.Rotations)
		}
		if track.Positions[1].Value != (geom.Vector3{X: 1, Y: 1}) {
			t.Error("position", track.Positions[1].Value)
		}
		q := track.Rotations[1].Value
		if geom.Abs(geom.Abs(q.Z)-math.Sqrt2/2) > 0.0001 || geom.Abs(q.X) > 0.0001 {
			t.Error("rotation", q)
		}
	}
}

func TestRootMotionBone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RootMotionBone = "bone0"
	s := newTestSession(chainScene(), cfg)
	anim, err := s.BuildAnimation(s.Animations()[0])
	if err != nil {
		t.Fatal(err)
	}
	if anim.RootMotionBone != 0 {
		t.Error("root motion bone", anim.RootMotionBone)
	}
}

func TestAnimationErrors(t *testing.T) {
	sc := chainScene()
	sc.Takes = nil
	sc.Settings.TimeSpanStop = 0
	s := newTestSession(sc, nil)
	if _, err := s.BuildAnimation(s.Animations()[0]); !errors.Is(err, ErrUnsupportedClip) {
		t.Error("no time span", err)
	}
	out := newMemOutput()
	if err := s.WriteAnimations(out); err != nil || len(out.files) != 0 {
		t.Error("unsupported clip must be skipped", err, len(out.files))
	}

	sc = chainScene()
	cn := sc.AnimationStacks[0].Layers[0].CurveNodes[0]
	cn.Curves[1] = &scene.Curve{Times: []float64{0, 0.5, 1}, Values: []float32{0, 0, 0}}
	s = newTestSession(sc, nil)
	if _, err := s.BuildAnimation(s.Animations()[0]); !errors.Is(err, ErrDataIntegrity) {
		t.Error("key count mismatch", err)
	}

	sc = chainScene()
	cn = sc.AnimationStacks[0].Layers[0].CurveNodes[0]
	cn.Curves[2] = &scene.Curve{Times: []float64{0, 0.9}, Values: []float32{0, 0}}
	s = newTestSession(sc, nil)
	if _, err := s.BuildAnimation(s.Animations()[0]); !errors.Is(err, ErrDataIntegrity) {
		t.Error("key time mismatch", err)
	}
}

func interpolateTranslation(keys []TranslationKey, t float64) *geom.Vector3 {
	for i := 1; i < len(keys); i++ {
		if t <= keys[i].Time {
			return lerpVector(&keys[i-1], &keys[i], t)
		}
	}
	return &keys[len(keys)-1].Value
}

func interpolateRotation(keys []RotationKey, t float64) *geom.Quaternion {
	for i := 1; i < len(keys); i++ {
		if t <= keys[i].Time {
			return slerpKey(&keys[i-1], &keys[i], t)
		}
	}
	return &keys[len(keys)-1].Value
}

func TestCompressTranslations(t *testing.T) {
	if CompressTranslations(nil, 0.01, 1) != nil {
		t.Error("empty track")
	}

	single := CompressTranslations([]TranslationKey{{Time: 0.2, Value: geom.Vector3{X: 3}}}, 0.01, 2)
	if len(single) != 2 || single[1].Time != 2 || single[1].Value != single[0].Value {
		t.Error("single key", single)
	}

	var linear []TranslationKey
	for i := 0; i < 10; i++ {
		linear = append(linear, TranslationKey{Time: float64(i) / 9, Value: geom.Vector3{X: float32(i), Y: float32(i) * 2}})
	}
	if keys := CompressTranslations(linear, 0.001, 1); len(keys) != 2 || keys[1].Time != 1 {
		t.Error("linear", keys)
	}

	const tol = 0.01
	var wave []TranslationKey
	for i := 0; i <= 60; i++ {
		tm := float64(i) / 30
		wave = append(wave, TranslationKey{Time: tm, Value: geom.Vector3{X: float32(math.Sin(tm * 3)), Z: float32(tm)}})
	}
	keys := CompressTranslations(wave, tol, 2)
	if len(keys) >= len(wave) || len(keys) < 3 {
		t.Error("keys", len(keys))
	}
	if keys[0].Time != 0 || keys[len(keys)-1].Time != 2 {
		t.Error("first and last key must be kept")
	}
	for _, k := range wave {
		if !withinTolerance(interpolateTranslation(keys, k.Time), &k.Value, tol+1e-5) {
			t.Error("error bound", k.Time, k.Value, interpolateTranslation(keys, k.Time))
		}
	}
}

func TestCompressRotations(t *testing.T) {
	axis := func(deg float64) geom.Quaternion {
		r := deg * math.Pi / 360
		return geom.Quaternion{Y: float32(math.Sin(r)), W: float32(math.Cos(r))}
	}

	var linear []RotationKey
	for i := 0; i <= 10; i++ {
		linear = append(linear, RotationKey{Time: float64(i) / 10, Value: axis(float64(i) * 9)})
	}
	if keys := CompressRotations(linear, 0.0001, 1); len(keys) != 2 {
		t.Error("linear", len(keys))
	}

	// q and -q are the same rotation
	q := axis(30)
	flipped := []RotationKey{{Time: 0, Value: q}, {Time: 0.5, Value: *q.Negate()}, {Time: 1, Value: q}}
	if keys := CompressRotations(flipped, 0.0001, 1); len(keys) != 2 {
		t.Error("flipped", len(keys))
	}

	single := CompressRotations([]RotationKey{{Time: 0, Value: q}}, 0.001, 3)
	if len(single) != 2 || single[1].Time != 3 {
		t.Error("single key", single)
	}

	const tol = 0.002
	var wave []RotationKey
	for i := 0; i <= 60; i++ {
		tm := float64(i) / 30
		wave = append(wave, RotationKey{Time: tm, Value: axis(math.Sin(tm*2) * 60)})
	}
	keys := CompressRotations(wave, tol, 2)
	if len(keys) >= len(wave) {
		t.Error("keys", len(keys))
	}
	for _, k := range wave {
		if !quaternionWithin(interpolateRotation(keys, k.Time), &k.Value, tol+1e-5) {
			t.Error("error bound", k.Time)
		}
	}
}

func TestQuantizeTime(t *testing.T) {
	for _, c := range []struct {
		t, start, length float64
		want             uint16
	}{
		{0, 0, 1, 0},
		{1, 0, 1, 0xffff},
		{0.5, 0, 1, 0x7fff},
		{-1, 0, 1, 0},
		{3, 0, 1, 0xffff},
		{2, 1, 2, 0x7fff},
	} {
		if got := quantizeTime(c.t, c.start, c.length); got != c.want {
			t.Error(c, got)
		}
	}
}
