package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const (
	// ManifestFile describes a template directory.
	ManifestFile = "template.yaml"
	// SkeletonDir holds the files that are expanded into the target.
	SkeletonDir = "skeleton"
)

// Manifest is the parsed template.yaml of a template directory.
type Manifest struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Exclude     []ExcludeRule `yaml:"exclude"`
}

// ExcludeRule drops Path (relative to the skeleton, before rendering) unless
// the context variable named by Unless is "yes".
type ExcludeRule struct {
	Path   string `yaml:"path"`
	Unless string `yaml:"unless"`
}

// LoadManifest reads template.yaml from dir. A missing manifest yields an
// empty one.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ManifestFile, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}
	for i, rule := range m.Exclude {
		if rule.Path == "" || rule.Unless == "" {
			return nil, fmt.Errorf("%s: exclude[%d] needs both path and unless", ManifestFile, i)
		}
		m.Exclude[i].Path = path.Clean(rule.Path)
	}
	return &m, nil
}

// excluded returns the skeleton paths dropped for vars.
func (m *Manifest) excluded(vars map[string]string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, rule := range m.Exclude {
		val, ok := vars[rule.Unless]
		if !ok {
			return nil, fmt.Errorf("exclude rule for %s references unknown variable %q", rule.Path, rule.Unless)
		}
		if val != "yes" {
			out[rule.Path] = true
		}
	}
	return out, nil
}

// isExcluded reports whether rel or one of its parent directories is in set.
func isExcluded(set map[string]bool, rel string) bool {
	for p := rel; p != "." && p != "/"; p = path.Dir(p) {
		if set[p] {
			return true
		}
	}
	return false
}
