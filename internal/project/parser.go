package project

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pytemplate/pytemplate/internal/apperr"
	"go.yaml.in/yaml/v3"
)

// LoadFile reads the configuration document at path and validates it.
func LoadFile(path string, assistants AssistantSet) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.New(apperr.KindParse, "load configuration",
			fmt.Errorf("reading %s: %w", path, err)).WithSubject(path)
	}
	cfg, err := LoadAndValidate(data, assistants)
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) && e.Subject == "" {
			e.Subject = path
		}
		return nil, err
	}
	return cfg, nil
}

// LoadDefaults returns the validated configuration of a document that sets
// only the project name and type.
func LoadDefaults(t Type, name string, assistants AssistantSet) (*Config, error) {
	data, err := yaml.Marshal(map[string]any{
		"project": map[string]string{"name": name, "project_type": string(t)},
	})
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "build default configuration", err)
	}
	return LoadAndValidate(data, assistants)
}

// LoadAndValidate parses data and returns the validated configuration with
// defaults applied. Errors are *apperr.Error of kind ParseError or
// SchemaViolation; the latter wraps a *ValidationError listing every
// violation. data is never modified.
func LoadAndValidate(data []byte, assistants AssistantSet) (*Config, error) {
	root, err := parseRoot(data)
	if err != nil {
		return nil, apperr.New(apperr.KindParse, "parse configuration", err)
	}

	v := newValidation(root)
	if err := v.checkStructure(); err != nil {
		return nil, apperr.New(apperr.KindInternal, "validate configuration", err)
	}

	cfg, err := v.decode()
	if err != nil {
		return nil, apperr.New(apperr.KindParse, "decode configuration", err)
	}
	v.semantic(cfg, assistants)

	if violations := v.result(); len(violations) > 0 {
		return nil, apperr.New(apperr.KindSchema, "validate configuration",
			&ValidationError{Violations: violations})
	}

	normalize(cfg)
	return cfg, nil
}

// parseRoot decodes data into a YAML node tree and returns its root
// mapping.
func parseRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	// Node trees keep duplicate keys; a plain decode rejects them.
	var plain any
	if err := doc.Decode(&plain); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("configuration document is empty")
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil, fmt.Errorf("configuration document is empty")
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("configuration document must be a mapping, got %s", nodeKind(root))
	}
	return root, nil
}

// dedupeSorted returns the distinct values of in in ascending order.
func dedupeSorted(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	n := 0
	for i, s := range out {
		if i > 0 && s == out[n-1] {
			continue
		}
		out[n] = s
		n++
	}
	return out[:n]
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unsupported node"
	}
}

// toJSONValue converts a decoded YAML value into the JSON-compatible shape
// the schema validator expects.
func toJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = toJSONValue(item)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = toJSONValue(item)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, item := range val {
			a[i] = toJSONValue(item)
		}
		return a
	default:
		return val
	}
}

// normalize collapses the assistant list into a sorted set and fills
// derived defaults.
func normalize(cfg *Config) {
	cfg.AIAssistants = dedupeSorted(cfg.AIAssistants)
	if cfg.VCS.RepoName == "" {
		cfg.VCS.RepoName = Defaults(cfg.Project.Type, cfg.Project.Name).VCS.RepoName
	}
	if cfg.ServicePorts == nil {
		cfg.ServicePorts = []int{}
	}
}
