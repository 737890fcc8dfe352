package scaffold

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Cloner fetches a remote template into dir.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// GitCloner shallow-clones with go-git.
type GitCloner struct{}

// Clone implements Cloner.
func (GitCloner) Clone(ctx context.Context, url, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	return err
}

var shorthandHosts = map[string]string{
	"gh:": "https://github.com/",
	"gl:": "https://gitlab.com/",
	"bb:": "https://bitbucket.org/",
}

// CloneURL expands host shorthands (gh:owner/repo) into clone URLs. Other
// locators are returned as-is, except that git+ssh:// becomes ssh://.
func CloneURL(locator string) string {
	for prefix, host := range shorthandHosts {
		if rest, ok := strings.CutPrefix(locator, prefix); ok {
			if !strings.HasSuffix(rest, ".git") {
				rest += ".git"
			}
			return host + rest
		}
	}
	if rest, ok := strings.CutPrefix(locator, "git+ssh://"); ok {
		return "ssh://" + rest
	}
	return locator
}
