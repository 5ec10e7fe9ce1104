package importer

import (
	"os"
	"path/filepath"
	"strings"
)

// Output receives compiled resources.
// Locators are "<name>.<ext>:<source>" or the source path itself for the main model.
type Output interface {
	WriteResource(locator string, data []byte) error
}

// DirOutput writes resources as files under Dir.
type DirOutput struct {
	Dir string
}

func NewDirOutput(dir string) *DirOutput {
	return &DirOutput{Dir: dir}
}

func splitLocator(locator string) (name, src string) {
	i := strings.Index(locator, ":")
	// "C:/..." is a path, not a locator
	if i <= 1 || strings.ContainsAny(locator[:i], `/\`) {
		return "", locator
	}
	return locator[:i], locator[i+1:]
}

func validFilename(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
}

// Path returns the file written for locator.
// Submodels keep their source extension so a mesh named like its source
// never lands on the main model file.
func (o *DirOutput) Path(locator string) string {
	name, src := splitLocator(locator)
	if name == "" {
		base := filepath.Base(src)
		return filepath.Join(o.Dir, validFilename(strings.TrimSuffix(base, filepath.Ext(base)))+".lmo")
	}
	ext := filepath.Ext(name)
	stem := validFilename(strings.TrimSuffix(name, ext))
	switch ext {
	case ".ani", ".phy", ".png", ".fab":
		return filepath.Join(o.Dir, stem+ext)
	case "":
		return filepath.Join(o.Dir, stem+".lmo")
	}
	return filepath.Join(o.Dir, stem+"."+validFilename(strings.ToLower(ext[1:]))+".lmo")
}

func (o *DirOutput) WriteResource(locator string, data []byte) error {
	path := o.Path(locator)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ImportError{Kind: ErrMissingOutput, Artifact: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &ImportError{Kind: ErrMissingOutput, Artifact: path, Err: err}
	}
	return nil
}
