package linker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pytemplate/pytemplate/internal/project"
	"github.com/pytemplate/pytemplate/internal/registry"
)

const rulesDoc = `---
description: Shared coding rules
globs: "**/*.py"
alwaysApply: true
---

# Coding rules

- Type hints everywhere.
`

func parseRules(t *testing.T) *Rules {
	t.Helper()
	r, err := ParseRules([]byte(rulesDoc))
	require.NoError(t, err)
	return r
}

func assistants() []registry.Assistant {
	return []registry.Assistant{
		{ID: "cursor", Path: filepath.Join(".cursor", "rules", "coding_rules.mdc"), KeepFrontmatter: true},
		{ID: "cline", Path: ".clinerules"},
		{ID: "augment", Path: filepath.Join(".augment", "rules", "coding_rules.md")},
	}
}

func TestParseRules(t *testing.T) {
	r := parseRules(t)
	assert.Equal(t, "Shared coding rules", r.Meta["description"])
	assert.Equal(t, true, r.Meta["alwaysApply"])
	assert.Equal(t, "# Coding rules\n\n- Type hints everywhere.\n", string(r.Body))
	assert.Equal(t, rulesDoc, string(r.Content(true)))
}

func TestParseRules_NoFrontmatter(t *testing.T) {
	r, err := ParseRules([]byte("# Just rules\n"))
	require.NoError(t, err)
	assert.Nil(t, r.Meta)
	assert.Equal(t, "# Just rules\n", string(r.Content(false)))
}

func TestDistribute_AllSucceed(t *testing.T) {
	p := project.Generated{Root: t.TempDir(), Name: "orders-api"}
	d := NewDistributor(4, nil)

	results := d.Distribute(context.Background(), p, parseRules(t), assistants())
	require.Len(t, results, 3)
	assert.Equal(t, "augment", results[0].Assistant)
	assert.Equal(t, "cline", results[1].Assistant)
	assert.Equal(t, "cursor", results[2].Assistant)
	assert.Empty(t, Failed(results))

	cursor, err := os.ReadFile(filepath.Join(p.Root, ".cursor", "rules", "coding_rules.mdc"))
	require.NoError(t, err)
	assert.Equal(t, rulesDoc, string(cursor))

	cline, err := os.ReadFile(filepath.Join(p.Root, ".clinerules"))
	require.NoError(t, err)
	assert.NotContains(t, string(cline), "alwaysApply")
	assert.Contains(t, string(cline), "# Coding rules")
}

func TestDistribute_PartialSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	p := project.Generated{Root: root, Name: "orders-api"}

	// A read-only directory where cline's file would be created.
	blocked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(blocked, 0555))
	t.Cleanup(func() { os.Chmod(blocked, 0755) })

	list := assistants()
	list[1].Path = filepath.Join("locked", ".clinerules")

	results := NewDistributor(2, nil).Distribute(context.Background(), p, parseRules(t), list)
	require.Len(t, results, 3)

	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "cline", failed[0].Assistant)

	assert.FileExists(t, filepath.Join(root, ".cursor", "rules", "coding_rules.mdc"))
	assert.FileExists(t, filepath.Join(root, ".augment", "rules", "coding_rules.md"))
}

func TestDistribute_DestinationIsDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".clinerules", "x"), 0755))
	p := project.Generated{Root: root, Name: "demo"}

	results := NewDistributor(0, nil).Distribute(context.Background(), p, parseRules(t), assistants())
	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "cline", failed[0].Assistant)
	assert.FileExists(t, filepath.Join(root, ".augment", "rules", "coding_rules.md"))
}

func TestDistribute_RejectsEscapingPath(t *testing.T) {
	p := project.Generated{Root: t.TempDir(), Name: "demo"}
	list := []registry.Assistant{{ID: "evil", Path: filepath.Join("..", "evil.md")}}

	results := NewDistributor(1, nil).Distribute(context.Background(), p, parseRules(t), list)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestDistribute_Empty(t *testing.T) {
	p := project.Generated{Root: t.TempDir(), Name: "demo"}
	results := NewDistributor(4, nil).Distribute(context.Background(), p, parseRules(t), nil)
	assert.Empty(t, results)
}
