// Package linker distributes the shared coding-rules document into the
// locations each AI assistant reads inside a generated project. Copies run
// concurrently; a failure for one assistant never affects the others.
package linker
