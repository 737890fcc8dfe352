package project

import "strings"

// Option values of the development section.
const (
	TestingPytest   = "pytest"
	TestingUnittest = "unittest"
	DocsMkdocs      = "mkdocs"
	DocsSphinx      = "sphinx"
	CLITyper        = "typer"
	CLIClick        = "click"
	CLIArgparse     = "argparse"
	OptionNone      = "none"
)

// Defaults shared by every project type.
const (
	DefaultPythonVersion = "3.12"
	DefaultLicense       = "MIT"
	DefaultVersion       = "0.1.0"
	DefaultPort          = 8000
)

// Defaults returns the configuration a document of type t named name
// would produce if it set nothing else.
func Defaults(t Type, name string) *Config {
	cfg := &Config{
		Project: Project{
			Name:          name,
			Type:          t,
			PythonVersion: DefaultPythonVersion,
			License:       DefaultLicense,
			Version:       DefaultVersion,
		},
		VCS: VCS{RepoName: strings.ToLower(name)},
		Development: Development{
			TestingFramework:  TestingPytest,
			DocsGenerator:     DocsMkdocs,
			UseRuff:           true,
			UseMypy:           true,
			UsePreCommit:      true,
			CLIInterface:      OptionNone,
			CoverageReporting: true,
		},
		ServicePorts: []int{},
		AIAssistants: []string{},
	}

	switch t {
	case TypeService:
		cfg.Container.EnableImage = true
		cfg.ServicePorts = []int{DefaultPort}
		cfg.Development.DocsGenerator = OptionNone
		cfg.Development.UseMypy = false
	case TypeWorkspace:
		cfg.ServicePorts = []int{DefaultPort}
		cfg.Development.CLIInterface = CLITyper
	}

	return cfg
}
