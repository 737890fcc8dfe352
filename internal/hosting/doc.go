// Package hosting creates remote repositories on a code host. The GitHub
// implementation drives the gh CLI, which owns authentication.
package hosting
