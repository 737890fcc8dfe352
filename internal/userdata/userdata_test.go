package userdata

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pytemplate/pytemplate/internal/config"
	"github.com/pytemplate/pytemplate/internal/project"
	"github.com/pytemplate/pytemplate/internal/registry"
)

func TestBaseDir_EnvWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PYTEMPLATE_HOME", dir)

	got, err := BaseDir(config.Settings{BaseDir: "/elsewhere"})
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestBaseDir_SettingThenHome(t *testing.T) {
	t.Setenv("PYTEMPLATE_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := BaseDir(config.Settings{BaseDir: "/opt/templates"})
	require.NoError(t, err)
	assert.Equal(t, "/opt/templates", got)

	got, err = BaseDir(config.Settings{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pytemplate", "share"), got)
}

func TestLogDir(t *testing.T) {
	got, err := LogDir(config.Settings{LogDir: "/var/log/pt"})
	require.NoError(t, err)
	assert.Equal(t, "/var/log/pt", got)

	got, err = LogDir(config.Settings{})
	require.NoError(t, err)
	assert.Equal(t, "logs", filepath.Base(got))
}

func TestInstall_BundleResolves(t *testing.T) {
	base := filepath.Join(t.TempDir(), "share")
	var out bytes.Buffer

	res, err := Install(&out, base)
	require.NoError(t, err)
	assert.Positive(t, res.Created)
	assert.Zero(t, res.Skipped)
	assert.True(t, Installed(base))

	reg, err := registry.Load(base)
	require.NoError(t, err)
	for _, k := range registry.Kinds {
		names := reg.Names(k)
		require.NotEmpty(t, names, "section %s", k.Section())
		for _, name := range names {
			ref, err := registry.Resolve(reg, base, k, name)
			require.NoError(t, err, "%s/%s", k.Section(), name)
			assert.False(t, ref.IsRemote())
		}
	}
	assert.Contains(t, reg.AssistantIDs(), "claude")
}

func TestInstall_ConfigSpecsAreValid(t *testing.T) {
	base := t.TempDir()
	_, err := Install(&bytes.Buffer{}, base)
	require.NoError(t, err)

	reg, err := registry.Load(base)
	require.NoError(t, err)

	for _, name := range reg.Names(registry.KindConfigSpec) {
		ref, err := registry.Resolve(reg, base, registry.KindConfigSpec, name)
		require.NoError(t, err)

		cfg, err := project.LoadFile(ref.Path, reg)
		require.NoError(t, err, name)
		assert.Equal(t, project.Type(name), cfg.Project.Type)
	}
}

func TestInstall_KeepsExistingFiles(t *testing.T) {
	base := t.TempDir()
	_, err := Install(&bytes.Buffer{}, base)
	require.NoError(t, err)

	rules := filepath.Join(base, "shared", "coding_rules.md")
	require.NoError(t, os.WriteFile(rules, []byte("local edits"), 0o644))

	var out bytes.Buffer
	res, err := Install(&out, base)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Contains(t, out.String(), "[SKIP] shared/coding_rules.md")

	data, err := os.ReadFile(rules)
	require.NoError(t, err)
	assert.Equal(t, "local edits", string(data))
}

func TestEnsureInstalled(t *testing.T) {
	base := t.TempDir()

	installed, err := EnsureInstalled(&bytes.Buffer{}, base)
	require.NoError(t, err)
	assert.True(t, installed)

	installed, err = EnsureInstalled(&bytes.Buffer{}, base)
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestCheckBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "share")

	var out bytes.Buffer
	assert.Equal(t, 1, CheckBaseDir(&out, base, false))
	assert.Contains(t, out.String(), "[MISS]")

	out.Reset()
	assert.Zero(t, CheckBaseDir(&out, base, true))
	assert.Contains(t, out.String(), "[FIX ]")

	out.Reset()
	assert.Zero(t, CheckBaseDir(&out, base, false))
	assert.Contains(t, out.String(), "project_templates/service")
}

func TestCheckBaseDir_BrokenEntry(t *testing.T) {
	base := t.TempDir()
	_, err := Install(&bytes.Buffer{}, base)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(base, "templates", "lib-template")))

	var out bytes.Buffer
	assert.Equal(t, 1, CheckBaseDir(&out, base, false))
	assert.Contains(t, out.String(), "[FAIL] project_templates/lib")
}
