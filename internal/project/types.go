package project

import (
	"fmt"
	"strings"
)

// Type is the kind of project being generated.
type Type string

const (
	TypeLib       Type = "lib"
	TypeService   Type = "service"
	TypeWorkspace Type = "workspace"
)

// Types lists every project type.
var Types = []Type{TypeLib, TypeService, TypeWorkspace}

// ParseType matches s against the known project types, ignoring case.
func ParseType(s string) (Type, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, t := range Types {
		if string(t) == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown project type %q (expected one of lib, service, workspace)", s)
}

// Valid reports whether t is a known project type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Config is a validated project configuration with defaults applied.
type Config struct {
	Project      Project      `yaml:"project"`
	VCS          VCS          `yaml:"vcs"`
	Container    Container    `yaml:"container"`
	DevContainer DevContainer `yaml:"dev_container"`
	ServicePorts []int        `yaml:"service_ports"`
	Development  Development  `yaml:"development"`
	AIAssistants []string     `yaml:"ai_assistants"`
}

// Project is the identity section.
type Project struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Type          Type   `yaml:"project_type"`
	PythonVersion string `yaml:"python_version"`
	Author        string `yaml:"author"`
	Email         string `yaml:"email"`
	License       string `yaml:"license"`
	Version       string `yaml:"version"`
}

// VCS controls repository naming and remote publication.
type VCS struct {
	RepoName        string `yaml:"repo_name"`
	PublishToRemote bool   `yaml:"publish_to_remote"`
	RemoteUsername  string `yaml:"remote_username"`
	RepoPrivate     bool   `yaml:"repo_private"`
}

// Container controls image and compose generation.
type Container struct {
	EnableImage       bool   `yaml:"enable_image"`
	EnableCompose     bool   `yaml:"enable_compose"`
	BaseImageOverride string `yaml:"base_image_override"`
}

// DevContainer controls .devcontainer generation.
type DevContainer struct {
	Enabled bool `yaml:"enabled"`
}

// Development is the closed set of tooling options.
type Development struct {
	TestingFramework  string `yaml:"testing_framework"`
	DocsGenerator     string `yaml:"docs_generator"`
	UseRuff           bool   `yaml:"use_ruff"`
	UseMypy           bool   `yaml:"use_mypy"`
	UsePreCommit      bool   `yaml:"use_pre_commit"`
	CLIInterface      string `yaml:"cli_interface"`
	CoverageReporting bool   `yaml:"coverage_reporting"`
}

// AssistantSet answers whether an AI assistant id is known.
type AssistantSet interface {
	HasAssistant(id string) bool
}

// Violation is one validation failure.
type Violation struct {
	Section string
	Path    string // JSON pointer into the document, e.g. "/vcs/repo_name"
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// ValidationError carries every violation found in a document.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid configuration: " + e.Violations[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "invalid configuration (%d problems):", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v.String())
	}
	return b.String()
}

// Generated is the handle to a freshly expanded project. It lives for a
// single run.
type Generated struct {
	Root string
	Name string
}
