// Package project loads and validates project configuration documents and
// defines the types the rest of the pipeline works with.
//
// Validation runs in two passes. The structural pass checks the document
// against an embedded JSON Schema (unknown keys, required fields, value
// types, closed enumerations). The semantic pass then checks cross-field
// rules section by section, skipping any rule whose inputs already failed
// structurally so that each defect is reported exactly once. Every
// violation is collected before returning.
package project
