package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// FileName is the registry document name inside the install base directory.
const FileName = "template_paths.yaml"

type document struct {
	ProjectTemplates map[string]string        `yaml:"project_templates"`
	ConfigTemplates  map[string]string        `yaml:"config_templates"`
	SharedResources  map[string]string        `yaml:"shared_resources"`
	AIAssistants     map[string]assistantSpec `yaml:"ai_assistants"`
}

type assistantSpec struct {
	Path            string `yaml:"path"`
	KeepFrontmatter bool   `yaml:"keep_frontmatter"`
}

// UnmarshalYAML accepts either a bare path or a {path, keep_frontmatter}
// mapping.
func (a *assistantSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&a.Path)
	}
	type plain assistantSpec
	return node.Decode((*plain)(a))
}

// Load reads the registry document from the base directory.
func Load(baseDir string) (*Registry, error) {
	return LoadFile(filepath.Join(baseDir, FileName))
}

// LoadFile reads and parses a registry document.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template registry: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes a registry document. Unknown sections, empty names, empty
// locations and assistant paths that leave the project root are rejected.
func Parse(data []byte) (*Registry, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing template registry: %w", err)
	}

	reg := &Registry{
		entries:    make(map[Kind]map[string]Entry, len(Kinds)),
		assistants: make(map[string]Assistant, len(doc.AIAssistants)),
	}

	sections := map[Kind]map[string]string{
		KindProjectScaffold: doc.ProjectTemplates,
		KindConfigSpec:      doc.ConfigTemplates,
		KindSharedResource:  doc.SharedResources,
	}
	for _, k := range Kinds {
		reg.entries[k] = make(map[string]Entry, len(sections[k]))
		for name, loc := range sections[k] {
			if name == "" {
				return nil, fmt.Errorf("%s: empty template name", k.Section())
			}
			if loc == "" {
				return nil, fmt.Errorf("%s.%s: empty location", k.Section(), name)
			}
			reg.entries[k][name] = Entry{Name: name, Kind: k, Location: Location(loc)}
		}
	}

	for id, spec := range doc.AIAssistants {
		if id == "" {
			return nil, fmt.Errorf("ai_assistants: empty assistant id")
		}
		if !filepath.IsLocal(filepath.FromSlash(spec.Path)) {
			return nil, fmt.Errorf("ai_assistants.%s: path %q must be relative to the project root", id, spec.Path)
		}
		reg.assistants[id] = Assistant{
			ID:              id,
			Path:            filepath.FromSlash(spec.Path),
			KeepFrontmatter: spec.KeepFrontmatter,
		}
	}

	return reg, nil
}
