package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pytemplate/pytemplate/internal/apperr"
)

// TemplateRef is a resolved template. Exactly one of Path and Remote is set.
type TemplateRef struct {
	Kind Kind
	Name string
	// Path is the absolute local path.
	Path string
	// Remote is the unmodified remote locator.
	Remote string
}

// IsRemote reports whether the reference points at a remote locator.
func (r *TemplateRef) IsRemote() bool {
	return r.Remote != ""
}

func (r *TemplateRef) String() string {
	if r.IsRemote() {
		return r.Remote
	}
	return r.Path
}

// Resolve looks name up among the entries of kind k and turns it into a
// TemplateRef. Local locations are joined onto base and must stay inside it
// both lexically and after symlink evaluation. Remote locators are only
// accepted for project scaffolds.
func Resolve(reg *Registry, base string, k Kind, name string) (*TemplateRef, error) {
	const op = "resolve template"

	entry, ok := reg.Lookup(k, name)
	if !ok {
		available := reg.Names(k)
		list := "none"
		if len(available) > 0 {
			list = strings.Join(available, ", ")
		}
		return nil, apperr.Errorf(apperr.KindTemplateNotFound, op,
			"no %s named %q (available: %s)", k.Section(), name, list).WithSubject(name)
	}

	if entry.Location.IsRemote() {
		if k != KindProjectScaffold {
			return nil, apperr.Errorf(apperr.KindInvalidLocation, op,
				"%s %q: remote locators are only supported for project templates", k.Section(), name).
				WithSubject(name)
		}
		return &TemplateRef{Kind: k, Name: name, Remote: string(entry.Location)}, nil
	}

	path, err := localPath(base, string(entry.Location))
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidLocation, op, err).WithSubject(name)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidLocation, op, err).WithSubject(name)
	}
	switch {
	case k == KindProjectScaffold && !info.IsDir():
		return nil, apperr.Errorf(apperr.KindInvalidLocation, op, "%s is not a directory", path).WithSubject(name)
	case k != KindProjectScaffold && !info.Mode().IsRegular():
		return nil, apperr.Errorf(apperr.KindInvalidLocation, op, "%s is not a regular file", path).WithSubject(name)
	}

	return &TemplateRef{Kind: k, Name: name, Path: path}, nil
}

// localPath joins loc onto base and verifies the result is a strict
// descendant of base, first lexically and then with symlinks evaluated.
func localPath(base, loc string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("base directory %q: %w", base, err)
	}

	native := filepath.FromSlash(loc)
	if filepath.IsAbs(native) || filepath.VolumeName(native) != "" {
		return "", fmt.Errorf("location %q must be relative to the template base", loc)
	}

	joined := filepath.Join(absBase, native)
	if !within(absBase, joined) {
		return "", fmt.Errorf("location %q escapes the template base", loc)
	}

	realBase, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		return "", fmt.Errorf("base directory %q: %w", base, err)
	}
	realPath, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", fmt.Errorf("location %q: %w", loc, err)
	}
	if !within(realBase, realPath) {
		return "", fmt.Errorf("location %q resolves outside the template base", loc)
	}

	return joined, nil
}

// within reports whether target is a strict descendant of base.
func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == "." {
		return false
	}
	return filepath.IsLocal(rel)
}
