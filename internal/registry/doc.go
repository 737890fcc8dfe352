// Package registry holds the template path registry: the static mapping from
// symbolic template names to local paths or remote locators, together with
// the destinations each AI assistant reads its coding rules from.
//
// A Registry is loaded once from template_paths.yaml and never mutated, so
// it can be shared freely between goroutines. Resolve turns an entry into a
// TemplateRef the templating engine can consume, refusing any local path
// that would escape the install base directory.
package registry
