package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binzume/lmoconv/lmo"
)

func TestDumpResource(t *testing.T) {
	anim := lmo.NewAnimation(2)
	anim.Tracks = append(anim.Tracks, &lmo.BoneTrack{NameHash: lmo.NameHash("hips"), Positions: []lmo.PositionKey{{Time: 0}, {Time: 0xffff}}})
	var buf bytes.Buffer
	if err := lmo.NewWriter(&buf).WriteAnimation(anim); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "walk.ani")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if err := dumpResource(path, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "animation") || !strings.Contains(out.String(), "length=2.000s") || !strings.Contains(out.String(), "positions=2") {
		t.Error(out.String())
	}

	if err := os.WriteFile(path, []byte("not a resource"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := dumpResource(path, &out); err == nil {
		t.Error("unknown format accepted")
	}
}
