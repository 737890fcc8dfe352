package creator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pytemplate/pytemplate/internal/apperr"
	"github.com/pytemplate/pytemplate/internal/config"
	"github.com/pytemplate/pytemplate/internal/hosting"
	"github.com/pytemplate/pytemplate/internal/linker"
	"github.com/pytemplate/pytemplate/internal/logging"
	"github.com/pytemplate/pytemplate/internal/project"
	"github.com/pytemplate/pytemplate/internal/registry"
	"github.com/pytemplate/pytemplate/internal/scaffold"
	"github.com/pytemplate/pytemplate/internal/vcs"
)

// RulesResource is the shared resource distributed to AI assistants.
const RulesResource = "coding_rules"

// Stage names used in logs and error ops.
const (
	StageLoad       = "load configuration"
	StageResolve    = "resolve template"
	StageExpand     = "expand template"
	StageVCS        = "initialize repository"
	StagePublish    = "publish repository"
	StageDistribute = "distribute coding rules"
)

// Repository initializes and publishes a generated project.
type Repository interface {
	vcs.Initializer
	vcs.Remote
}

// Distributor copies the rules document to assistant destinations.
type Distributor interface {
	Distribute(ctx context.Context, p project.Generated, rules *linker.Rules, assistants []registry.Assistant) []linker.Result
}

// Options tune a single creation run.
type Options struct {
	Force       bool
	Interactive bool
	Debug       bool   // log the stage plan before the first write
	OutputDir   string // parent of the project directory; "." when empty
}

// Result describes a created project. Warnings holds the non-fatal
// failures of the run.
type Result struct {
	Project     project.Generated
	Config      *project.Config
	Files       []string
	Committed   bool
	RemoteURL   string
	Distributed []linker.Result
	Warnings    []*apperr.Error
}

// Partial reports whether the run finished with warnings.
func (r *Result) Partial() bool { return len(r.Warnings) > 0 }

// Deps are the collaborators of a Creator.
type Deps struct {
	Registry    *registry.Registry
	BaseDir     string
	Engine      scaffold.Engine
	Repository  Repository
	Publisher   hosting.Publisher
	Distributor Distributor
	Confirmer   Confirmer
	Settings    config.Settings
	Logger      *slog.Logger
	Now         func() time.Time
}

// Creator runs the project creation pipeline.
type Creator struct {
	reg         *registry.Registry
	base        string
	engine      scaffold.Engine
	repo        Repository
	publisher   hosting.Publisher
	distributor Distributor
	confirmer   Confirmer
	settings    config.Settings
	logger      *slog.Logger
	now         func() time.Time
}

// New returns a Creator. Missing collaborators fall back to the real
// implementations; a nil Confirmer refuses every prompt.
func New(d Deps) *Creator {
	c := &Creator{
		reg:         d.Registry,
		base:        d.BaseDir,
		engine:      d.Engine,
		repo:        d.Repository,
		publisher:   d.Publisher,
		distributor: d.Distributor,
		confirmer:   d.Confirmer,
		settings:    d.Settings,
		logger:      d.Logger,
		now:         d.Now,
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.engine == nil {
		c.engine = scaffold.NewDirEngine(nil, c.logger)
	}
	if c.repo == nil {
		c.repo = vcs.New(c.settings.DefaultBranch, c.logger)
	}
	if c.publisher == nil {
		c.publisher = hosting.NewGitHub(c.settings.GHPath, nil, c.logger)
	}
	if c.distributor == nil {
		c.distributor = linker.NewDistributor(c.settings.MaxParallelCopies, c.logger)
	}
	if c.confirmer == nil {
		c.confirmer = denyConfirmer{}
	}
	if c.settings.PublishTimeout <= 0 {
		c.settings.PublishTimeout = 60 * time.Second
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// plan is everything resolved before the first write.
type plan struct {
	cfg        *project.Config
	scaffold   *registry.TemplateRef
	rules      *registry.TemplateRef
	assistants []registry.Assistant
	target     string
}

// CreateProject creates the project described by the configuration
// document at configPath. A fatal failure returns a nil Result and an
// *apperr.Error; cancelling ctx has effect only until expansion starts.
func (c *Creator) CreateProject(ctx context.Context, configPath string, opts Options) (*Result, error) {
	cfg, err := project.LoadFile(configPath, c.reg)
	if err != nil {
		return nil, err
	}
	return c.create(ctx, cfg, opts)
}

// CreateFromTemplate creates a project named name from the template
// registered for a project type, matched case-insensitively, with every
// option at its default for that type.
func (c *Creator) CreateFromTemplate(ctx context.Context, template, name string, opts Options) (*Result, error) {
	t, err := project.ParseType(template)
	if err != nil {
		return nil, apperr.New(apperr.KindTemplateNotFound, StageResolve, err).WithSubject(template)
	}
	cfg, err := project.LoadDefaults(t, name, c.reg)
	if err != nil {
		return nil, err
	}
	return c.create(ctx, cfg, opts)
}

func (c *Creator) create(ctx context.Context, cfg *project.Config, opts Options) (*Result, error) {
	pl, err := c.prepare(cfg, opts)
	if err != nil {
		return nil, err
	}
	log := c.logger.With("project", pl.cfg.Project.Name, "type", string(pl.cfg.Project.Type))
	if opts.Debug {
		log.Debug("stage plan", "stages", pl.stages(), "target", pl.target, "template", pl.scaffold.String())
	}

	if err := ctx.Err(); err != nil {
		return nil, apperr.New(apperr.KindInternal, StageExpand, err)
	}
	if err := c.claim(pl.target, opts); err != nil {
		return nil, err
	}

	// Expansion has started writing; the remaining local stages run to
	// completion regardless of ctx.
	local := context.WithoutCancel(ctx)

	vars := BuildContext(pl.cfg, c.now())
	log.Debug("expanding template", "template", pl.scaffold.String(), "target", pl.target)
	expanded, err := c.engine.Expand(local, pl.scaffold, vars, pl.target)
	if err != nil {
		return nil, apperr.New(apperr.KindTemplateExpansion, StageExpand, err).WithSubject(pl.scaffold.String())
	}

	gen := project.Generated{Root: pl.target, Name: pl.cfg.Project.Name}
	res := &Result{Project: gen, Config: pl.cfg}
	if expanded != nil {
		res.Files = expanded.Files
	}
	log.Info("template expanded", "files", len(res.Files), "root", gen.Root)

	created, err := c.repo.Init(local, gen, signature(pl.cfg))
	if err != nil {
		return nil, apperr.New(apperr.KindVcsInit, StageVCS, err).WithSubject(gen.Root)
	}
	res.Committed = created
	log.Info("repository initialized", "branch", c.settings.DefaultBranch, "created", created)

	if pl.cfg.VCS.PublishToRemote {
		url, failure := c.publish(ctx, gen, pl.cfg)
		if failure != nil {
			log.Warn("publish failed", "err", failure)
			if err := res.record(failure); err != nil {
				return nil, err
			}
		} else {
			res.RemoteURL = url
			log.Info("repository published", "url", url)
		}
	}

	if len(pl.assistants) > 0 {
		var failures []*apperr.Error
		res.Distributed, failures = c.distribute(local, gen, pl)
		for _, f := range failures {
			if err := res.record(f); err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}

// record keeps a non-fatal failure as a warning and returns fatal ones.
func (r *Result) record(e *apperr.Error) error {
	if e.Kind.Fatal() {
		return e
	}
	r.Warnings = append(r.Warnings, e)
	return nil
}

// stages lists the pipeline stages the plan will run, in order.
func (pl *plan) stages() []string {
	out := []string{StageExpand, StageVCS}
	if pl.cfg.VCS.PublishToRemote {
		out = append(out, StagePublish)
	}
	if len(pl.assistants) > 0 {
		out = append(out, StageDistribute)
	}
	return out
}

// prepare resolves everything the run needs without side effects.
func (c *Creator) prepare(cfg *project.Config, opts Options) (*plan, error) {
	pl := &plan{cfg: cfg}
	var err error
	pl.scaffold, err = registry.Resolve(c.reg, c.base, registry.KindProjectScaffold, string(cfg.Project.Type))
	if err != nil {
		return nil, err
	}

	if len(cfg.AIAssistants) > 0 {
		pl.rules, err = registry.Resolve(c.reg, c.base, registry.KindSharedResource, RulesResource)
		if err != nil {
			return nil, err
		}
		for _, id := range cfg.AIAssistants {
			a, ok := c.reg.Assistant(id)
			if !ok {
				return nil, apperr.Errorf(apperr.KindSchema, StageResolve, "unknown AI assistant %q", id).WithSubject(id)
			}
			pl.assistants = append(pl.assistants, a)
		}
	}

	out := opts.OutputDir
	if out == "" {
		out = "."
	}
	pl.target, err = filepath.Abs(filepath.Join(out, cfg.Project.Name))
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, StageResolve, err)
	}
	return pl, nil
}

// claim makes target an empty directory owned by this run. An existing
// directory is only removed when forced and, in interactive mode,
// confirmed.
func (c *Creator) claim(target string, opts Options) error {
	exists := func(err error) error {
		return apperr.New(apperr.KindDirectoryExists, StageExpand, err).WithSubject(target)
	}

	if _, err := os.Lstat(target); err == nil {
		if !opts.Force {
			return exists(fmt.Errorf("%s already exists", target))
		}
		if opts.Interactive {
			ok, err := c.confirmer.Confirm(fmt.Sprintf("Remove the existing directory %s?", target))
			if err != nil {
				return exists(fmt.Errorf("confirming removal of %s: %w", target, err))
			}
			if !ok {
				return exists(fmt.Errorf("%s already exists and removal was declined", target))
			}
		}
		c.logger.Info("removing existing directory", "path", target)
		if err := os.RemoveAll(target); err != nil {
			return apperr.New(apperr.KindTemplateExpansion, StageExpand,
				fmt.Errorf("removing %s: %w", target, err)).WithSubject(target)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return apperr.New(apperr.KindTemplateExpansion, StageExpand, err).WithSubject(target)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return apperr.New(apperr.KindTemplateExpansion, StageExpand, err).WithSubject(target)
	}
	if err := os.Mkdir(target, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return exists(fmt.Errorf("%s was created by another run", target))
		}
		return apperr.New(apperr.KindTemplateExpansion, StageExpand, err).WithSubject(target)
	}
	return nil
}

// publish creates the remote repository and pushes to it. On any failure
// the origin remote is removed again.
func (c *Creator) publish(ctx context.Context, gen project.Generated, cfg *project.Config) (string, *apperr.Error) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.settings.PublishTimeout)
	defer cancel()

	req := hosting.Request{
		Owner:       cfg.VCS.RemoteUsername,
		Name:        cfg.VCS.RepoName,
		Description: cfg.Project.Description,
		Private:     cfg.VCS.RepoPrivate,
	}
	fail := func(err error) (string, *apperr.Error) {
		return "", apperr.New(apperr.KindRemotePublish, StagePublish, err).WithSubject(req.FullName())
	}

	token, err := c.publisher.Token(pctx)
	if err != nil {
		return fail(err)
	}
	url, err := c.publisher.Create(pctx, req)
	if err != nil {
		return fail(err)
	}

	if err := c.repo.SetOrigin(gen, url); err != nil {
		c.dropOrigin(gen)
		return fail(err)
	}
	if err := c.repo.Push(pctx, gen, token); err != nil {
		c.dropOrigin(gen)
		return fail(fmt.Errorf("pushing to %s: %w", url, err))
	}
	return url, nil
}

func (c *Creator) dropOrigin(gen project.Generated) {
	if err := c.repo.RemoveOrigin(gen); err != nil {
		c.logger.Warn("could not remove origin remote", "root", gen.Root, "err", err)
	}
}

// distribute copies the rules document and turns every failed copy into a
// SharedResourceCopy failure naming the assistant.
func (c *Creator) distribute(ctx context.Context, gen project.Generated, pl *plan) ([]linker.Result, []*apperr.Error) {
	rules, err := linker.LoadRules(pl.rules.Path)
	if err != nil {
		results := make([]linker.Result, 0, len(pl.assistants))
		for _, a := range pl.assistants {
			results = append(results, linker.Result{Assistant: a.ID, Path: filepath.ToSlash(a.Path), Err: err})
		}
		return results, copyFailures(results)
	}

	results := c.distributor.Distribute(ctx, gen, rules, pl.assistants)
	return results, copyFailures(results)
}

func copyFailures(results []linker.Result) []*apperr.Error {
	var out []*apperr.Error
	for _, r := range linker.Failed(results) {
		out = append(out, apperr.New(apperr.KindSharedResourceCopy, StageDistribute,
			fmt.Errorf("%s: %w", r.Path, r.Err)).WithSubject(r.Assistant))
	}
	return out
}

func signature(cfg *project.Config) vcs.Signature {
	sig := vcs.DefaultSignature
	if name := authorName(cfg.Project.Author); name != "" {
		sig.Name = name
	}
	if cfg.Project.Email != "" {
		sig.Email = cfg.Project.Email
	}
	return sig
}
