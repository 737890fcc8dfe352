package creator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pytemplate/pytemplate/internal/apperr"
	"github.com/pytemplate/pytemplate/internal/config"
	"github.com/pytemplate/pytemplate/internal/hosting"
	"github.com/pytemplate/pytemplate/internal/project"
	"github.com/pytemplate/pytemplate/internal/registry"
	"github.com/pytemplate/pytemplate/internal/userdata"
	"github.com/pytemplate/pytemplate/internal/vcs"
)

const ordersAPI = `
project:
  name: orders-api
  project_type: service
container:
  enable_image: true
service_ports: [8080]
vcs:
  publish_to_remote: false
`

type fakePublisher struct {
	url       string
	createErr error
	tokenErr  error
	created   []hosting.Request
}

func (f *fakePublisher) Create(_ context.Context, req hosting.Request) (string, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.url, nil
}

func (f *fakePublisher) Token(context.Context) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "token", nil
}

type fakeConfirmer struct {
	answer bool
	asked  int
}

func (f *fakeConfirmer) Confirm(string) (bool, error) {
	f.asked++
	return f.answer, nil
}

type fixture struct {
	base      string
	out       string
	reg       *registry.Registry
	publisher *fakePublisher
	confirmer *fakeConfirmer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := filepath.Join(t.TempDir(), "share")
	_, err := userdata.Install(&bytes.Buffer{}, base)
	require.NoError(t, err)

	reg, err := registry.Load(base)
	require.NoError(t, err)

	return &fixture{
		base:      base,
		out:       t.TempDir(),
		reg:       reg,
		publisher: &fakePublisher{},
		confirmer: &fakeConfirmer{},
	}
}

func (f *fixture) creator() *Creator {
	return New(Deps{
		Registry:  f.reg,
		BaseDir:   f.base,
		Publisher: f.publisher,
		Confirmer: f.confirmer,
		Settings:  config.Settings{DefaultBranch: "main", MaxParallelCopies: 2, PublishTimeout: 5 * time.Second},
		Now:       func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) },
	})
}

func (f *fixture) writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func (f *fixture) create(t *testing.T, doc string, opts Options) (*Result, error) {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = f.out
	}
	return f.creator().CreateProject(context.Background(), f.writeConfig(t, doc), opts)
}

func TestCreateProject_OrdersAPI(t *testing.T) {
	f := newFixture(t)

	res, err := f.create(t, ordersAPI, Options{})
	require.NoError(t, err)
	assert.False(t, res.Partial())
	assert.True(t, res.Committed)
	assert.Empty(t, res.RemoteURL)
	assert.Empty(t, f.publisher.created, "no publish attempt")

	root := filepath.Join(f.out, "orders-api")
	assert.Equal(t, root, res.Project.Root)

	for _, rel := range []string{
		"Dockerfile",
		"README.md",
		"pyproject.toml",
		"src/orders_api/__init__.py",
		"src/orders_api/main.py",
		"tests/test_orders_api.py",
	} {
		assert.FileExists(t, filepath.Join(root, rel))
		assert.Contains(t, res.Files, rel)
	}
	for _, rel := range []string{"docker-compose.yml", "mkdocs.yml", ".devcontainer", "src/orders_api/cli.py"} {
		assert.NoFileExists(t, filepath.Join(root, rel))
	}

	dockerfile, err := os.ReadFile(filepath.Join(root, "Dockerfile"))
	require.NoError(t, err)
	assert.Contains(t, string(dockerfile), "FROM python:3.12-slim")
	assert.Contains(t, string(dockerfile), "EXPOSE 8080")

	n, err := vcs.CommitCount(res.Project)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hasOrigin, err := vcs.HasOrigin(res.Project)
	require.NoError(t, err)
	assert.False(t, hasOrigin)
}

func TestCreateProject_EveryType(t *testing.T) {
	for _, typ := range project.Types {
		t.Run(string(typ), func(t *testing.T) {
			f := newFixture(t)
			doc := "project:\n  name: demo-" + string(typ) + "\n  project_type: " + string(typ) + "\n"
			if typ == project.TypeService {
				doc += "container:\n  enable_image: true\n"
			}
			res, err := f.create(t, doc, Options{})
			require.NoError(t, err)
			assert.FileExists(t, filepath.Join(res.Project.Root, "pyproject.toml"))
		})
	}
}

func TestCreateProject_ValidationHasNoSideEffects(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(t, "project:\n  name: orders-api\n  project_type: lib\ncontainer:\n  enable_image: true\n", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrSchema)

	entries, err := os.ReadDir(f.out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateProject_ParseError(t *testing.T) {
	f := newFixture(t)
	_, err := f.create(t, "project: [unterminated", Options{})
	assert.ErrorIs(t, err, apperr.ErrParse)
}

func TestCreateProject_TemplateNotFound(t *testing.T) {
	f := newFixture(t)
	reg, err := registry.Parse([]byte("project_templates:\n  lib: templates/lib-template\n"))
	require.NoError(t, err)
	f.reg = reg

	_, err = f.create(t, ordersAPI, Options{})
	assert.ErrorIs(t, err, apperr.ErrTemplateNotFound)

	entries, err := os.ReadDir(f.out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateProject_DirectoryExists(t *testing.T) {
	f := newFixture(t)
	root := filepath.Join(f.out, "orders-api")
	require.NoError(t, os.MkdirAll(root, 0o755))
	marker := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	_, err := f.create(t, ordersAPI, Options{})
	assert.ErrorIs(t, err, apperr.ErrDirectoryExists)
	assert.FileExists(t, marker)
}

func TestCreateProject_ForceReplaces(t *testing.T) {
	f := newFixture(t)
	root := filepath.Join(f.out, "orders-api")
	require.NoError(t, os.MkdirAll(root, 0o755))
	marker := filepath.Join(root, "stale.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	res, err := f.create(t, ordersAPI, Options{Force: true})
	require.NoError(t, err)
	assert.NoFileExists(t, marker)
	assert.FileExists(t, filepath.Join(res.Project.Root, "Dockerfile"))
	assert.Zero(t, f.confirmer.asked)
}

func TestCreateProject_InteractiveDecline(t *testing.T) {
	f := newFixture(t)
	root := filepath.Join(f.out, "orders-api")
	require.NoError(t, os.MkdirAll(root, 0o755))
	marker := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	_, err := f.create(t, ordersAPI, Options{Force: true, Interactive: true})
	assert.ErrorIs(t, err, apperr.ErrDirectoryExists)
	assert.Equal(t, 1, f.confirmer.asked)
	assert.FileExists(t, marker)

	f.confirmer.answer = true
	_, err = f.create(t, ordersAPI, Options{Force: true, Interactive: true})
	require.NoError(t, err)
	assert.NoFileExists(t, marker)
}

func TestCreateProject_CancelledBeforeExpansion(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.creator().CreateProject(ctx, f.writeConfig(t, ordersAPI), Options{OutputDir: f.out})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, filepath.Join(f.out, "orders-api"))
}

func TestCreateProject_PublishFailureIsWarning(t *testing.T) {
	doc := strings.Replace(ordersAPI, "publish_to_remote: false",
		"publish_to_remote: true\n  remote_username: acme", 1)

	t.Run("create fails", func(t *testing.T) {
		f := newFixture(t)
		f.publisher.createErr = errors.New("gh: authentication required")

		res, err := f.create(t, doc, Options{})
		require.NoError(t, err)
		require.Len(t, res.Warnings, 1)
		assert.ErrorIs(t, res.Warnings[0], apperr.ErrRemotePublish)
		assert.Equal(t, "acme/orders-api", res.Warnings[0].Subject)
		assert.Empty(t, res.RemoteURL)

		hasOrigin, err := vcs.HasOrigin(res.Project)
		require.NoError(t, err)
		assert.False(t, hasOrigin)
	})

	t.Run("push fails", func(t *testing.T) {
		f := newFixture(t)
		f.publisher.url = filepath.Join(t.TempDir(), "missing", "remote.git")

		res, err := f.create(t, doc, Options{})
		require.NoError(t, err)
		require.Len(t, res.Warnings, 1)
		assert.ErrorIs(t, res.Warnings[0], apperr.ErrRemotePublish)

		hasOrigin, err := vcs.HasOrigin(res.Project)
		require.NoError(t, err)
		assert.False(t, hasOrigin, "a failed publish leaves no origin behind")

		n, err := vcs.CommitCount(res.Project)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestCreateProject_DistributesRules(t *testing.T) {
	f := newFixture(t)
	doc := ordersAPI + "ai_assistants: [cursor, claude]\n"

	res, err := f.create(t, doc, Options{})
	require.NoError(t, err)
	assert.False(t, res.Partial())
	require.Len(t, res.Distributed, 2)
	assert.Equal(t, "claude", res.Distributed[0].Assistant)
	assert.Equal(t, "cursor", res.Distributed[1].Assistant)

	cursor, err := os.ReadFile(filepath.Join(res.Project.Root, ".cursor", "rules", "coding_rules.mdc"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(cursor), "---"), "cursor keeps the front matter")

	claude, err := os.ReadFile(filepath.Join(res.Project.Root, "CLAUDE.md"))
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(claude), "---"))
}

func TestCreateProject_PartialDistribution(t *testing.T) {
	f := newFixture(t)

	raw, err := os.ReadFile(filepath.Join(f.base, registry.FileName))
	require.NoError(t, err)
	// README.md is a generated file, so nothing can be created beneath it.
	doc := strings.Replace(string(raw), "cline: .clinerules", "cline: README.md/.clinerules", 1)
	f.reg, err = registry.Parse([]byte(doc))
	require.NoError(t, err)

	res, err := f.create(t, ordersAPI+"ai_assistants: [cursor, cline, augment]\n", Options{})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], apperr.ErrSharedResourceCopy)
	assert.Equal(t, "cline", res.Warnings[0].Subject)

	var ids []string
	for _, r := range res.Distributed {
		ids = append(ids, r.Assistant)
	}
	assert.Equal(t, []string{"augment", "cline", "cursor"}, ids)
	assert.FileExists(t, filepath.Join(res.Project.Root, ".augment", "rules", "coding_rules.md"))
	assert.FileExists(t, filepath.Join(res.Project.Root, ".cursor", "rules", "coding_rules.mdc"))
}

func TestCreateFromTemplate(t *testing.T) {
	f := newFixture(t)

	res, err := f.creator().CreateFromTemplate(context.Background(), "lib", "Orders", Options{OutputDir: f.out})
	require.NoError(t, err)
	assert.False(t, res.Partial())
	assert.Equal(t, project.Defaults(project.TypeLib, "Orders"), res.Config)

	root := filepath.Join(f.out, "Orders")
	assert.FileExists(t, filepath.Join(root, "pyproject.toml"))
	assert.DirExists(t, filepath.Join(root, ".git"))

	_, err = f.creator().CreateFromTemplate(context.Background(), "lib", "Orders", Options{OutputDir: f.out})
	assert.ErrorIs(t, err, apperr.ErrDirectoryExists)

	_, err = f.creator().CreateFromTemplate(context.Background(), "Service", "9lives", Options{OutputDir: f.out})
	assert.ErrorIs(t, err, apperr.ErrSchema)
	assert.NoDirExists(t, filepath.Join(f.out, "9lives"))

	_, err = f.creator().CreateFromTemplate(context.Background(), "app", "Orders2", Options{OutputDir: f.out})
	assert.ErrorIs(t, err, apperr.ErrTemplateNotFound)
}

func TestCreateProject_DebugLogsStagePlan(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	c := New(Deps{
		Registry:  f.reg,
		BaseDir:   f.base,
		Publisher: f.publisher,
		Settings:  config.Settings{DefaultBranch: "main"},
		Logger:    slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})

	_, err := c.CreateProject(context.Background(), f.writeConfig(t, ordersAPI), Options{OutputDir: f.out})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "stage plan")

	buf.Reset()
	_, err = c.CreateProject(context.Background(), f.writeConfig(t, ordersAPI), Options{OutputDir: t.TempDir(), Debug: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "stage plan")
	assert.Contains(t, buf.String(), "initialize repository")
	assert.NotContains(t, buf.String(), "publish repository")
}

func TestResult_Record(t *testing.T) {
	res := &Result{}
	assert.NoError(t, res.record(apperr.New(apperr.KindRemotePublish, StagePublish, errors.New("offline"))))
	assert.True(t, res.Partial())

	err := res.record(apperr.New(apperr.KindVcsInit, StageVCS, errors.New("locked")))
	assert.ErrorIs(t, err, apperr.ErrVcsInit)
	assert.Len(t, res.Warnings, 1)
}

func TestWriteConfigSpec(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(t.TempDir(), "cfg.yaml")

	written, err := WriteConfigSpec(f.reg, f.base, "SERVICE", out, false)
	require.NoError(t, err)
	assert.Equal(t, out, written)

	cfg, err := project.LoadFile(written, f.reg)
	require.NoError(t, err)
	assert.Equal(t, project.TypeService, cfg.Project.Type)

	_, err = WriteConfigSpec(f.reg, f.base, "service", out, false)
	assert.ErrorIs(t, err, apperr.ErrDirectoryExists)

	_, err = WriteConfigSpec(f.reg, f.base, "lib", out, true)
	require.NoError(t, err)

	_, err = WriteConfigSpec(f.reg, f.base, "plugin", out, true)
	assert.ErrorIs(t, err, apperr.ErrTemplateNotFound)
}
