package registry

import (
	"sort"
	"strings"
)

// Kind classifies registry entries.
type Kind string

const (
	KindProjectScaffold Kind = "ProjectScaffold"
	KindConfigSpec      Kind = "ConfigSpec"
	KindSharedResource  Kind = "SharedResource"
)

// Kinds lists every entry kind in registry document order.
var Kinds = []Kind{KindProjectScaffold, KindConfigSpec, KindSharedResource}

// Section returns the registry document section that holds entries of k.
func (k Kind) Section() string {
	switch k {
	case KindProjectScaffold:
		return "project_templates"
	case KindConfigSpec:
		return "config_templates"
	case KindSharedResource:
		return "shared_resources"
	default:
		return ""
	}
}

// remoteMarkers are the prefixes that identify a remote locator.
var remoteMarkers = []string{"gh:", "gl:", "bb:", "https://", "git@", "git+ssh://"}

// Location is either a path relative to the install base directory or a
// remote locator.
type Location string

// IsRemote reports whether l starts with a recognised protocol marker.
func (l Location) IsRemote() bool {
	s := string(l)
	for _, m := range remoteMarkers {
		if strings.HasPrefix(s, m) {
			return true
		}
	}
	return false
}

// Entry is one named template or resource.
type Entry struct {
	Name     string
	Kind     Kind
	Location Location
}

// Assistant describes where one AI assistant expects the shared coding
// rules, relative to the generated project root.
type Assistant struct {
	ID   string
	Path string
	// KeepFrontmatter delivers the rules document with its YAML front
	// matter intact. Tools that read front matter themselves (Cursor .mdc
	// rules) need it; everything else gets the body only.
	KeepFrontmatter bool
}

// Registry is an immutable, loaded template registry.
type Registry struct {
	entries    map[Kind]map[string]Entry
	assistants map[string]Assistant
}

// Lookup returns the entry of kind k named name.
func (r *Registry) Lookup(k Kind, name string) (Entry, bool) {
	e, ok := r.entries[k][name]
	return e, ok
}

// Names returns the sorted names of every entry of kind k.
func (r *Registry) Names(k Kind) []string {
	names := make([]string, 0, len(r.entries[k]))
	for name := range r.entries[k] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns every entry of kind k sorted by name.
func (r *Registry) Entries(k Kind) []Entry {
	names := r.Names(k)
	out := make([]Entry, len(names))
	for i, name := range names {
		out[i] = r.entries[k][name]
	}
	return out
}

// Assistant returns the destination registered for id.
func (r *Registry) Assistant(id string) (Assistant, bool) {
	a, ok := r.assistants[id]
	return a, ok
}

// HasAssistant reports whether id is a known assistant.
func (r *Registry) HasAssistant(id string) bool {
	_, ok := r.assistants[id]
	return ok
}

// AssistantIDs returns every known assistant id, sorted.
func (r *Registry) AssistantIDs() []string {
	ids := make([]string, 0, len(r.assistants))
	for id := range r.assistants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
