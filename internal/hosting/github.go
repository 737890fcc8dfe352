package hosting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pytemplate/pytemplate/internal/logging"
)

// Request describes the repository to create.
type Request struct {
	Owner       string
	Name        string
	Description string
	Private     bool
}

// FullName returns owner/name, or just name when no owner is set.
func (r Request) FullName() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

// Publisher creates remote repositories and supplies credentials for
// pushing to them.
type Publisher interface {
	Create(ctx context.Context, req Request) (url string, err error)
	Token(ctx context.Context) (string, error)
}

// GitHub publishes through the gh CLI.
type GitHub struct {
	bin    string
	runner Runner
	logger *slog.Logger
}

// NewGitHub returns a GitHub publisher invoking bin (usually "gh").
func NewGitHub(bin string, runner Runner, logger *slog.Logger) *GitHub {
	if bin == "" {
		bin = "gh"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &GitHub{bin: bin, runner: runner, logger: logger}
}

// Create runs `gh repo create` and returns the clone URL of the new
// repository.
func (g *GitHub) Create(ctx context.Context, req Request) (string, error) {
	if req.Name == "" {
		return "", fmt.Errorf("repository name is required")
	}

	visibility := "--public"
	if req.Private {
		visibility = "--private"
	}
	args := []string{"repo", "create", req.FullName(), visibility}
	if req.Description != "" {
		args = append(args, "--description", req.Description)
	}

	g.logger.Debug("creating remote repository", "repo", req.FullName(), "private", req.Private)
	out, err := g.runner.Run(ctx, g.bin, args...)
	if err != nil {
		return "", fmt.Errorf("creating repository %s: %w", req.FullName(), err)
	}

	url := lastLine(out)
	if url == "" {
		return "", fmt.Errorf("creating repository %s: gh printed no repository URL", req.FullName())
	}
	if !strings.HasSuffix(url, ".git") {
		url += ".git"
	}
	return url, nil
}

// Token returns the token gh is authenticated with.
func (g *GitHub) Token(ctx context.Context) (string, error) {
	out, err := g.runner.Run(ctx, g.bin, "auth", "token")
	if err != nil {
		return "", fmt.Errorf("reading gh auth token: %w", err)
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", fmt.Errorf("gh is not authenticated")
	}
	return token, nil
}

// Version returns the first line of `gh --version`.
func (g *GitHub) Version(ctx context.Context) (string, error) {
	out, err := g.runner.Run(ctx, g.bin, "--version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
