package linker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/sourcegraph/conc/iter"

	"github.com/pytemplate/pytemplate/internal/logging"
	"github.com/pytemplate/pytemplate/internal/platform"
	"github.com/pytemplate/pytemplate/internal/project"
	"github.com/pytemplate/pytemplate/internal/registry"
)

// Result is the outcome of one assistant's copy.
type Result struct {
	Assistant string
	Path      string // relative to the project root
	Err       error
}

// OK reports whether the copy succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Distributor copies the rules document to assistant destinations.
type Distributor struct {
	parallel int
	logger   *slog.Logger
}

// NewDistributor returns a Distributor running at most parallel copies at
// once. Values below one mean one.
func NewDistributor(parallel int, logger *slog.Logger) *Distributor {
	if parallel < 1 {
		parallel = 1
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Distributor{parallel: parallel, logger: logger}
}

// Distribute writes rules to every assistant's destination under p.Root.
// Results are sorted by assistant id. Destinations already present are
// overwritten.
func (d *Distributor) Distribute(ctx context.Context, p project.Generated, rules *Rules, assistants []registry.Assistant) []Result {
	mapper := iter.Mapper[registry.Assistant, Result]{MaxGoroutines: d.parallel}
	results := mapper.Map(assistants, func(a *registry.Assistant) Result {
		res := Result{Assistant: a.ID, Path: filepath.ToSlash(a.Path)}
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		res.Err = d.copy(p, rules, *a)
		return res
	})

	sort.Slice(results, func(i, j int) bool { return results[i].Assistant < results[j].Assistant })
	for _, r := range results {
		if r.Err != nil {
			d.logger.Warn("coding rules not copied", "assistant", r.Assistant, "path", r.Path, "err", r.Err)
		} else {
			d.logger.Debug("coding rules copied", "assistant", r.Assistant, "path", r.Path)
		}
	}
	return results
}

func (d *Distributor) copy(p project.Generated, rules *Rules, a registry.Assistant) error {
	if !filepath.IsLocal(a.Path) {
		return fmt.Errorf("destination %q is outside the project", a.Path)
	}
	dst := filepath.Join(p.Root, a.Path)
	if err := platform.WriteFile(dst, rules.Content(a.KeepFrontmatter), 0644); err != nil {
		return err
	}
	return nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
