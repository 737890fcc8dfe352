package scaffold

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/pytemplate/pytemplate/internal/logging"
	"github.com/pytemplate/pytemplate/internal/platform"
	"github.com/pytemplate/pytemplate/internal/registry"
)

// templateSuffix marks skeleton files whose contents are rendered.
const templateSuffix = ".tmpl"

// Engine expands a resolved template into target using vars.
type Engine interface {
	Expand(ctx context.Context, ref *registry.TemplateRef, vars map[string]string, target string) (*Result, error)
}

// Result holds the outcome of an expansion.
type Result struct {
	Template string
	Files    []string // slash-separated, relative to the target, sorted
}

// DirEngine expands template directories from disk, cloning remote
// templates first.
type DirEngine struct {
	cloner Cloner
	logger *slog.Logger
}

// NewDirEngine returns a DirEngine. A nil cloner uses go-git and a nil
// logger discards output.
func NewDirEngine(cloner Cloner, logger *slog.Logger) *DirEngine {
	if cloner == nil {
		cloner = GitCloner{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &DirEngine{cloner: cloner, logger: logger}
}

// Expand implements Engine.
func (e *DirEngine) Expand(ctx context.Context, ref *registry.TemplateRef, vars map[string]string, target string) (*Result, error) {
	dir := ref.Path
	if ref.IsRemote() {
		tmp, err := os.MkdirTemp("", "pytemplate-clone-*")
		if err != nil {
			return nil, fmt.Errorf("creating clone directory: %w", err)
		}
		defer os.RemoveAll(tmp)

		url := CloneURL(ref.Remote)
		e.logger.Debug("cloning remote template", "template", ref.Name, "url", url)
		if err := e.cloner.Clone(ctx, url, tmp); err != nil {
			return nil, fmt.Errorf("cloning %s: %w", ref.Remote, err)
		}
		dir = tmp
	}

	m, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	skip, err := m.excluded(vars)
	if err != nil {
		return nil, err
	}

	skeleton := filepath.Join(dir, SkeletonDir)
	info, err := os.Stat(skeleton)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("template %s has no %s directory", ref.Name, SkeletonDir)
	}

	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, fmt.Errorf("creating target directory: %w", err)
	}

	r := &renderer{vars: vars, target: target}
	result := &Result{Template: ref.Name}

	err = filepath.WalkDir(skeleton, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(skeleton, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if isExcluded(skip, rel) {
			e.logger.Debug("excluded by template rule", "path", rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		out, err := r.path(rel)
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(out, 0755)
		case d.Type().IsRegular():
			written, err := r.file(p, out)
			if err != nil {
				return err
			}
			relOut, _ := filepath.Rel(target, written)
			result.Files = append(result.Files, filepath.ToSlash(relOut))
			return nil
		default:
			e.logger.Debug("skipping special file", "path", rel)
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(result.Files)
	e.logger.Debug("template expanded", "template", ref.Name, "files", len(result.Files))
	return result, nil
}

// renderer renders skeleton paths and files into the target.
type renderer struct {
	vars   map[string]string
	target string
}

// path renders every segment of rel and returns the absolute output path.
// Rendered paths must stay inside the target.
func (r *renderer) path(rel string) (string, error) {
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		out, err := r.render(rel, seg)
		if err != nil {
			return "", err
		}
		if out == "" {
			return "", fmt.Errorf("path %s renders an empty segment", rel)
		}
		segments[i] = out
	}

	out := filepath.Join(r.target, filepath.FromSlash(strings.Join(segments, "/")))
	back, err := filepath.Rel(r.target, out)
	if err != nil || !filepath.IsLocal(back) {
		return "", fmt.Errorf("path %s renders outside the project directory", rel)
	}
	return out, nil
}

// file writes src to out, rendering it first when it is a template.
// It returns the path actually written.
func (r *renderer) file(src, out string) (string, error) {
	if !strings.HasSuffix(out, templateSuffix) {
		if err := platform.CopyFile(src, out); err != nil {
			return "", fmt.Errorf("copying %s: %w", src, err)
		}
		return out, nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", src, err)
	}
	content, err := r.render(filepath.Base(src), string(data))
	if err != nil {
		return "", err
	}

	out = strings.TrimSuffix(out, templateSuffix)
	if err := platform.WriteFile(out, []byte(content), info.Mode()); err != nil {
		return "", err
	}
	return out, nil
}

func (r *renderer) render(name, text string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.vars); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}
