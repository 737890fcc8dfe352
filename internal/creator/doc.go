// Package creator runs the project creation pipeline: load and validate a
// configuration document, resolve the scaffold, expand it, initialize the
// repository, optionally publish it, and distribute the coding rules to
// the requested AI assistants.
//
// Everything up to template expansion fails without touching the
// filesystem. Publication and rules distribution failures are returned as
// warnings on a successful Result.
package creator
