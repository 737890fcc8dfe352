//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // HOME for the run; holds ~/.pytemplate/config.yaml
	BaseDir    string // PYTEMPLATE_HOME, the template base directory
	OutputDir  string // where projects are created
	ConfigPath string // the project configuration document
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so all pytemplate operations are sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:   t.TempDir(),
		BaseDir:   t.TempDir(),
		OutputDir: t.TempDir(),
	}
	env.ConfigPath = filepath.Join(env.HomeDir, "project_config.yaml")

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("PYTEMPLATE_HOME", env.BaseDir)
	return env
}

// setupTemplateBase writes a small template base: a registry, one library
// template with a conditional docs directory, a config skeleton and a
// rules document.
func setupTemplateBase(t *testing.T, baseDir string) {
	t.Helper()

	writeFile(t, filepath.Join(baseDir, "template_paths.yaml"), `project_templates:
  lib: templates/mini-lib
config_templates:
  lib: config_templates/lib.yaml
shared_resources:
  coding_rules: shared/coding_rules.md
ai_assistants:
  claude: CLAUDE.md
  copilot: .github/copilot-instructions.md
  cursor:
    path: .cursor/rules/coding_rules.mdc
    keep_frontmatter: true
`)

	tmpl := filepath.Join(baseDir, "templates", "mini-lib")
	writeFile(t, filepath.Join(tmpl, "template.yaml"), `name: mini-lib
exclude:
  - path: docs
    unless: use_mkdocs
`)
	writeFile(t, filepath.Join(tmpl, "skeleton", "README.md.tmpl"), "# {{.project_name}}\n\n{{.project_description}}\n")
	writeFile(t, filepath.Join(tmpl, "skeleton", "src", "{{.package_name}}", "__init__.py.tmpl"), "__version__ = \"{{.version}}\"\n")
	writeFile(t, filepath.Join(tmpl, "skeleton", "docs", "index.md.tmpl"), "# {{.project_name}} docs\n")
	writeFile(t, filepath.Join(tmpl, "skeleton", "LICENSE"), "MIT\n")

	writeFile(t, filepath.Join(baseDir, "config_templates", "lib.yaml"), "project:\n  name: my-lib\n  project_type: lib\n")
	writeFile(t, filepath.Join(baseDir, "shared", "coding_rules.md"), "---\nalwaysApply: true\n---\n\n# Rules\n\nWrite tests.\n")
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
