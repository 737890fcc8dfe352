// Package apperr defines the error taxonomy of the project creation pipeline.
//
// Every failure surfaced to the user carries a Kind. Fatal kinds abort the
// pipeline; RemotePublishFailed and SharedResourceCopyFailed are reported as
// partial-success warnings. Each kind has a default corrective hint.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindParse              Kind = "ParseError"
	KindSchema             Kind = "SchemaViolation"
	KindTemplateNotFound   Kind = "TemplateNotFound"
	KindInvalidLocation    Kind = "InvalidLocation"
	KindDirectoryExists    Kind = "DirectoryExists"
	KindTemplateExpansion  Kind = "TemplateExpansionFailed"
	KindVcsInit            Kind = "VcsInitFailed"
	KindRemotePublish      Kind = "RemotePublishFailed"
	KindSharedResourceCopy Kind = "SharedResourceCopyFailed"
	KindInternal           Kind = "InternalError"
)

// Sentinels for errors.Is comparisons. Matching is by Kind only.
var (
	ErrParse              = &Error{Kind: KindParse}
	ErrSchema             = &Error{Kind: KindSchema}
	ErrTemplateNotFound   = &Error{Kind: KindTemplateNotFound}
	ErrInvalidLocation    = &Error{Kind: KindInvalidLocation}
	ErrDirectoryExists    = &Error{Kind: KindDirectoryExists}
	ErrTemplateExpansion  = &Error{Kind: KindTemplateExpansion}
	ErrVcsInit            = &Error{Kind: KindVcsInit}
	ErrRemotePublish      = &Error{Kind: KindRemotePublish}
	ErrSharedResourceCopy = &Error{Kind: KindSharedResourceCopy}
)

var defaultHints = map[Kind]string{
	KindParse:              "check that the configuration file is valid YAML with a mapping at the top level",
	KindSchema:             "fix every listed violation and run the command again",
	KindTemplateNotFound:   "run 'pytemplate templates' to see the registered templates",
	KindInvalidLocation:    "check template_paths.yaml; local locations must stay inside the template base directory",
	KindDirectoryExists:    "choose another project name or re-run with --force to replace the directory",
	KindTemplateExpansion:  "the template could not be rendered; re-run with --debug for details",
	KindVcsInit:            "make sure the output directory is writable; re-run with --debug for details",
	KindRemotePublish:      "run 'gh auth status' and publish the local repository manually",
	KindSharedResourceCopy: "copy the rules document to the listed destination manually",
}

// Error is a classified pipeline error.
type Error struct {
	Kind    Kind
	Op      string // pipeline stage or operation, e.g. "expand"
	Subject string // what the error is about: a path, template or assistant
	Err     error
	Hint    string
}

// New creates a classified error wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf creates a classified error from a format string.
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WithSubject sets the subject and returns the error for chaining.
func (e *Error) WithSubject(subject string) *Error {
	e.Subject = subject
	return e
}

// WithHint overrides the default hint.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, "["+string(e.Kind)+"]")
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Subject != "" {
		parts = append(parts, e.Subject)
	}
	msg := strings.Join(parts, " ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// HintText returns the explicit hint or the default hint for the kind.
func (e *Error) HintText() string {
	if e.Hint != "" {
		return e.Hint
	}
	return defaultHints[e.Kind]
}

// Fatal reports whether the kind aborts the pipeline.
func (k Kind) Fatal() bool {
	return k != KindRemotePublish && k != KindSharedResourceCopy
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Hint returns the corrective hint for err, or "" when err is unclassified.
func Hint(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.HintText()
	}
	return ""
}
