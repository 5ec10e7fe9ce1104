package importer

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/lmoconv/scene"
	"gopkg.in/yaml.v2"
)

const shaderPath = "pipelines/standard.shd"

// textureMeta is the .meta sidecar of a texture.
type textureMeta struct {
	SRGB      bool `yaml:"srgb,omitempty"`
	NormalMap bool `yaml:"normalmap,omitempty"`
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// resolveTexture looks for the file as stored, then by base name and then by path in the source directory.
func (s *Session) resolveTexture(t *scene.Texture) *ImportTexture {
	tex := &ImportTexture{Path: t.RelativeFileName}
	if tex.Path == "" {
		tex.Path = t.FileName
	}
	path := filepath.FromSlash(tex.Path)
	candidates := []string{
		path,
		filepath.Join(s.srcDir, filepath.Base(path)),
		filepath.Join(s.srcDir, path),
	}
	tex.Src = candidates[len(candidates)-1]
	for _, c := range candidates {
		if fileExists(c) {
			tex.Src = c
			tex.Valid = true
			break
		}
	}
	tex.Src = filepath.ToSlash(filepath.Clean(tex.Src))
	return tex
}

func (s *Session) gatherMaterials() {
	seen := map[*scene.Material]bool{}
	for _, m := range s.meshes {
		if m.Material == nil || seen[m.Material] {
			continue
		}
		seen[m.Material] = true
		mat := &ImportMaterial{Source: m.Material}
		for i, t := range m.Material.Textures {
			if t != nil {
				mat.Textures[i] = s.resolveTexture(t)
			}
		}
		s.materials = append(s.materials, mat)
	}
}

// MaterialPath is the material resource referenced by meshes of the model.
func (s *Session) MaterialPath(m *scene.Material) string {
	return filepath.ToSlash(filepath.Join(s.srcDir, MaterialName(m)+".mat"))
}

func (s *Session) impostorMaterialPath() string {
	base := filepath.Base(s.src)
	return filepath.ToSlash(filepath.Join(s.srcDir, strings.TrimSuffix(base, filepath.Ext(base))+"_impostor.mat"))
}

// materialSource renders the material definition.
func materialSource(mat *ImportMaterial) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "shader %q\n", shaderPath)
	for _, t := range mat.Textures {
		if t != nil {
			fmt.Fprintf(&b, "texture %q\n", "/"+t.Src)
		} else {
			b.WriteString("texture \"\"\n")
		}
	}
	return b.Bytes()
}

func writeIfAbsent(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, &ImportError{Kind: ErrMissingOutput, Artifact: path, Err: err}
	}
	return true, nil
}

func writeTextureMeta(t *ImportTexture, kind scene.TextureType) error {
	if !t.Valid || kind >= scene.TextureSpecular {
		return nil
	}
	dir := filepath.Dir(filepath.FromSlash(t.Src))
	base := filepath.Base(t.Src)
	path := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".meta")
	data, err := yaml.Marshal(&textureMeta{SRGB: kind == scene.TextureDiffuse, NormalMap: kind == scene.TextureNormal})
	if err != nil {
		return err
	}
	_, err = writeIfAbsent(path, data)
	return err
}

// WriteMaterials creates the material files and texture sidecars that do not exist yet.
// Textures larger than TextureMaxSize get a downscaled copy through out.
func (s *Session) WriteMaterials(out Output) error {
	var firstErr error
	report := func(err error) {
		if err == nil {
			return
		}
		log.Print(err)
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, mat := range s.materials {
		for kind, t := range mat.Textures {
			if t == nil {
				continue
			}
			report(writeTextureMeta(t, scene.TextureType(kind)))
			if out == nil {
				continue
			}
			if err := s.resizeTexture(t, out); errors.Is(err, ErrMissingOutput) {
				report(err)
			} else if err != nil {
				log.Printf("texture %s: %v", t.Src, err)
			}
		}
		path := filepath.FromSlash(s.MaterialPath(mat.Source))
		if created, err := writeIfAbsent(path, materialSource(mat)); err != nil {
			report(err)
		} else if created {
			log.Println("material:", path)
		}
	}
	if s.cfg.CreateImpostor {
		_, err := writeIfAbsent(filepath.FromSlash(s.impostorMaterialPath()), []byte(fmt.Sprintf("shader %q\n", shaderPath)))
		report(err)
	}
	return firstErr
}
