package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/pytemplate/pytemplate/internal/logging"
	"github.com/pytemplate/pytemplate/internal/project"
)

// OriginName is the remote every published project pushes to.
const OriginName = "origin"

// InitialCommitMessage is used for the single commit created by Init.
const InitialCommitMessage = "Initial commit from pytemplate"

// Signature identifies the author of the initial commit.
type Signature struct {
	Name  string
	Email string
}

// DefaultSignature is used when the project configuration names no author.
var DefaultSignature = Signature{Name: "pytemplate", Email: "pytemplate@localhost"}

// Initializer sets up a repository with one commit containing every file.
type Initializer interface {
	Init(ctx context.Context, p project.Generated, author Signature) (created bool, err error)
}

// Remote manages the origin remote of a generated project.
type Remote interface {
	SetOrigin(p project.Generated, url string) error
	Push(ctx context.Context, p project.Generated, token string) error
	RemoveOrigin(p project.Generated) error
}

// Git implements Initializer and Remote with go-git.
type Git struct {
	branch string
	logger *slog.Logger
}

// New returns a Git using branch as the initial branch name.
func New(branch string, logger *slog.Logger) *Git {
	if branch == "" {
		branch = "main"
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Git{branch: branch, logger: logger}
}

// Init creates the repository and commits the whole tree. Running it on a
// repository that already has a commit is a no-op and reports created as
// false.
func (g *Git) Init(ctx context.Context, p project.Generated, author Signature) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	repo, err := git.PlainOpen(p.Root)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		repo, err = git.PlainInitWithOptions(p.Root, &git.PlainInitOptions{
			InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(g.branch)},
		})
		if err != nil {
			return false, fmt.Errorf("initializing repository: %w", err)
		}
		g.logger.Debug("repository initialized", "root", p.Root, "branch", g.branch)
	case err != nil:
		return false, fmt.Errorf("opening repository: %w", err)
	default:
		if _, err := repo.Head(); err == nil {
			g.logger.Debug("repository already has a commit", "root", p.Root)
			return false, nil
		} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, fmt.Errorf("reading HEAD: %w", err)
		}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("staging files: %w", err)
	}

	if author.Name == "" {
		author.Name = DefaultSignature.Name
	}
	if author.Email == "" {
		author.Email = DefaultSignature.Email
	}
	hash, err := wt.Commit(InitialCommitMessage, &git.CommitOptions{
		Author:            &object.Signature{Name: author.Name, Email: author.Email, When: time.Now()},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return false, fmt.Errorf("creating initial commit: %w", err)
	}
	g.logger.Debug("initial commit created", "hash", hash.String())
	return true, nil
}

// SetOrigin points the origin remote at url, replacing any existing one.
func (g *Git) SetOrigin(p project.Generated, url string) error {
	repo, err := git.PlainOpen(p.Root)
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}
	if err := repo.DeleteRemote(OriginName); err != nil && !errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("replacing remote: %w", err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: OriginName, URLs: []string{url}}); err != nil {
		return fmt.Errorf("adding remote: %w", err)
	}
	return nil
}

// Push pushes the current branch to origin. A non-empty token is sent as
// HTTP basic auth, which is what GitHub expects for token pushes over HTTPS.
func (g *Git) Push(ctx context.Context, p project.Generated, token string) error {
	repo, err := git.PlainOpen(p.Root)
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("reading HEAD: %w", err)
	}

	var auth transport.AuthMethod
	if token != "" {
		auth = &http.BasicAuth{Username: "x-access-token", Password: token}
	}

	spec := config.RefSpec(head.Name().String() + ":" + head.Name().String())
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: OriginName,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       auth,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("pushing %s: %w", head.Name().Short(), err)
	}
	return nil
}

// RemoveOrigin deletes the origin remote. A missing remote is not an error.
func (g *Git) RemoveOrigin(p project.Generated) error {
	repo, err := git.PlainOpen(p.Root)
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}
	if err := repo.DeleteRemote(OriginName); err != nil && !errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("removing remote: %w", err)
	}
	return nil
}

// HasOrigin reports whether the origin remote is configured.
func HasOrigin(p project.Generated) (bool, error) {
	repo, err := git.PlainOpen(p.Root)
	if err != nil {
		return false, err
	}
	_, err = repo.Remote(OriginName)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CommitCount returns the number of commits reachable from HEAD.
func CommitCount(p project.Generated) (int, error) {
	repo, err := git.PlainOpen(p.Root)
	if err != nil {
		return 0, err
	}
	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	n := 0
	err = iter.ForEach(func(*object.Commit) error {
		n++
		return nil
	})
	return n, err
}
