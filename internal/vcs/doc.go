// Package vcs initializes version control for generated projects and manages
// their origin remote. It works in-process through go-git, so no git binary
// is needed for local repository setup.
package vcs
