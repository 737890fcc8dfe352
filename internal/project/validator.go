package project

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/config.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// Sections in validation and reporting order.
var Sections = []string{
	"project",
	"vcs",
	"container",
	"dev_container",
	"service_ports",
	"development",
	"ai_assistants",
}

var (
	namePattern     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,99}$`)
	repoNamePattern = regexp.MustCompile(`^[a-z0-9-_]{1,100}$`)
	minPython       = mustConstraint(">= 3.9")
)

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("config.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("config.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// validation holds the state of one validation run.
type validation struct {
	root       *yaml.Node
	structural []Violation
	semantics  []Violation
	bad        map[string]bool
}

func newValidation(root *yaml.Node) *validation {
	return &validation{root: root, bad: make(map[string]bool)}
}

// checkStructure validates the document against the embedded schema and
// marks every failing path.
func (v *validation) checkStructure() error {
	schema, err := getSchema()
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	var raw any
	if err := v.root.Decode(&raw); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	jsonData, err := json.Marshal(toJSONValue(raw))
	if err != nil {
		return fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("unexpected validation error type: %w", err)
	}
	v.collect(ve)

	sort.SliceStable(v.structural, func(i, j int) bool {
		a, b := v.structural[i], v.structural[j]
		if sa, sb := sectionIndex(a.Section), sectionIndex(b.Section); sa != sb {
			return sa < sb
		}
		return a.Path < b.Path
	})
	return nil
}

// collect walks the error tree down to its leaves.
func (v *validation) collect(ve *jsonschema.ValidationError) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			v.collect(cause)
		}
		return
	}

	base := pointer(ve.InstanceLocation)
	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			v.addStructural(base+"/"+name, "is required")
		}
	case *kind.AdditionalProperties:
		for _, name := range k.Properties {
			v.addStructural(base+"/"+name, "unknown key")
		}
	case *kind.Group, nil:
		// Containers carry no information of their own.
	default:
		v.addStructural(base, ve.ErrorKind.LocalizedString(printer))
	}
}

func (v *validation) addStructural(path, msg string) {
	if v.bad[path] {
		return
	}
	v.bad[path] = true
	v.structural = append(v.structural, Violation{Section: sectionOf(path), Path: path, Message: msg})
}

func (v *validation) fail(path, format string, args ...any) {
	v.semantics = append(v.semantics, Violation{
		Section: sectionOf(path),
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

// tainted reports whether path, one of its ancestors or one of its
// descendants failed structural validation.
func (v *validation) tainted(p string) bool {
	for b := range v.bad {
		if b == p || strings.HasPrefix(b, p+"/") || strings.HasPrefix(p, b+"/") {
			return true
		}
	}
	return false
}

// decode prunes structurally invalid values from the document and decodes
// what remains over the defaults for the declared project type. Values that
// pass the schema but do not fit their Go field are recorded as violations.
func (v *validation) decode() (*Config, error) {
	typ, _ := v.scalar("project", "project_type")
	name, _ := v.scalar("project", "name")
	if v.tainted("/project/project_type") {
		typ = ""
	}
	if v.tainted("/project/name") {
		name = ""
	}

	pruned := prune(v.root, "", v)
	cfg := Defaults(Type(typ), name)
	if err := pruned.Decode(cfg); err != nil {
		var te *yaml.TypeError
		if !errors.As(err, &te) {
			return nil, err
		}
		for _, msg := range te.Errors {
			v.structural = append(v.structural, Violation{Message: msg})
		}
	}
	return cfg, nil
}

// sequence returns the items of the top-level list at key.
func (v *validation) sequence(key string) []*yaml.Node {
	n := mappingValue(v.root, key)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n.Content
}

// scalar returns the value at section.key when it is a scalar.
func (v *validation) scalar(section, key string) (string, bool) {
	sec := mappingValue(v.root, section)
	if sec == nil || sec.Kind != yaml.MappingNode {
		return "", false
	}
	val := mappingValue(sec, key)
	if val == nil || val.Kind != yaml.ScalarNode {
		return "", false
	}
	return val.Value, true
}

// semantic applies cross-field rules in section order.
func (v *validation) semantic(cfg *Config, assistants AssistantSet) {
	typed := !v.tainted("/project/project_type")

	// project
	if !v.tainted("/project/name") && !namePattern.MatchString(cfg.Project.Name) {
		v.fail("/project/name", "%q must start with a letter and contain only letters, digits, '-' or '_' (at most 100 characters)", cfg.Project.Name)
	}
	if !v.tainted("/project/version") {
		if _, err := semver.StrictNewVersion(cfg.Project.Version); err != nil {
			v.fail("/project/version", "%q is not a semantic version (MAJOR.MINOR.PATCH)", cfg.Project.Version)
		}
	}
	if !v.tainted("/project/python_version") {
		pv, err := semver.NewVersion(cfg.Project.PythonVersion)
		switch {
		case err != nil:
			v.fail("/project/python_version", "%q is not a version", cfg.Project.PythonVersion)
		case !minPython.Check(pv):
			v.fail("/project/python_version", "%q is not supported (requires %s)", cfg.Project.PythonVersion, minPython)
		}
	}

	// vcs
	if !v.tainted("/vcs/publish_to_remote") && cfg.VCS.PublishToRemote {
		if !v.tainted("/vcs/repo_name") && !repoNamePattern.MatchString(cfg.VCS.RepoName) {
			v.fail("/vcs/repo_name", "%q must be 1-100 lower-case letters, digits, '-' or '_' to publish", cfg.VCS.RepoName)
		}
		if !v.tainted("/vcs/remote_username") && strings.TrimSpace(cfg.VCS.RemoteUsername) == "" {
			v.fail("/vcs/remote_username", "is required when publish_to_remote is enabled")
		}
	}

	// container
	if typed && !v.tainted("/container/enable_image") {
		switch {
		case cfg.Project.Type == TypeLib && cfg.Container.EnableImage:
			v.fail("/container/enable_image", "library projects cannot build a container image")
		case cfg.Project.Type == TypeService && !cfg.Container.EnableImage:
			v.fail("/container/enable_image", "service projects require a container image")
		}
	}
	if typed && !v.tainted("/container/enable_compose") && cfg.Project.Type == TypeLib && cfg.Container.EnableCompose {
		v.fail("/container/enable_compose", "library projects cannot use docker compose")
	}

	// service_ports
	// Ranges are enforced by the schema; bad items are skipped one by one so
	// duplicates among the rest are still reported.
	if !v.bad["/service_ports"] {
		items := v.sequence("service_ports")
		if typed && cfg.Project.Type == TypeLib && len(items) > 0 {
			v.fail("/service_ports", "library projects do not expose ports")
		} else {
			seen := make(map[int]bool, len(items))
			for i, item := range items {
				path := "/service_ports/" + strconv.Itoa(i)
				var port int
				if v.tainted(path) || item.Decode(&port) != nil {
					continue
				}
				if seen[port] {
					v.fail(path, "duplicate port %d", port)
				}
				seen[port] = true
			}
		}
	}

	// development options are a closed set of enums and booleans, fully
	// covered by the schema.

	// ai_assistants
	if !v.tainted("/ai_assistants") && assistants != nil {
		reported := make(map[string]bool)
		for i, id := range cfg.AIAssistants {
			if reported[id] || assistants.HasAssistant(id) {
				continue
			}
			reported[id] = true
			v.fail("/ai_assistants/"+strconv.Itoa(i), "unknown AI assistant %q", id)
		}
	}
}

// result merges structural and semantic violations in section order.
func (v *validation) result() []Violation {
	all := make([]Violation, 0, len(v.structural)+len(v.semantics))
	all = append(all, v.structural...)
	all = append(all, v.semantics...)
	sort.SliceStable(all, func(i, j int) bool {
		return sectionIndex(all[i].Section) < sectionIndex(all[j].Section)
	})
	return all
}

// prune returns a copy of n without any value whose path is tainted.
// Mappings are pruned key by key; any other tainted value is dropped whole.
func prune(n *yaml.Node, path string, v *validation) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return n
	}
	out := *n
	out.Content = make([]*yaml.Node, 0, len(n.Content))
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		child := path + "/" + key.Value
		if v.bad[child] {
			continue
		}
		if val.Kind == yaml.MappingNode {
			out.Content = append(out.Content, key, prune(val, child, v))
			continue
		}
		if v.tainted(child) {
			continue
		}
		out.Content = append(out.Content, key, val)
	}
	return &out
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func pointer(loc []string) string {
	if len(loc) == 0 {
		return ""
	}
	return "/" + strings.Join(loc, "/")
}

func sectionOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// sectionIndex orders unknown top-level keys before every known section.
func sectionIndex(section string) int {
	for i, s := range Sections {
		if s == section {
			return i + 1
		}
	}
	return 0
}
