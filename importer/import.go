package importer

import (
	"errors"
	"log"
)

// Import loads src and writes every enabled artifact to out.
// A source or integrity failure aborts; a failed output is logged and the others are still written.
func (s *Session) Import(src string, out Output) error {
	if err := s.SetSource(src); err != nil {
		return err
	}
	return s.WriteAll(out)
}

// WriteAll writes the artifacts of the current source.
func (s *Session) WriteAll(out Output) error {
	if err := s.postprocessMeshes(); err != nil {
		return err
	}
	steps := []struct {
		name    string
		enabled bool
		write   func(Output) error
	}{
		{"model", true, s.WriteModel},
		{"submodels", s.cfg.Submodels, s.WriteSubmodels},
		{"prefab", s.cfg.Prefab, s.WritePrefab},
		{"physics", true, s.WritePhysics},
		{"animations", true, s.WriteAnimations},
		{"materials", true, s.WriteMaterials},
	}
	var firstErr error
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		err := step.write(out)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrMissingOutput) {
			return err
		}
		log.Printf("%s: %v", step.name, err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
