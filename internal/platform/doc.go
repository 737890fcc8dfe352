// Package platform provides the filesystem primitives shared by the
// generation pipeline: whole-file copies that keep permission bits, atomic
// writes into directories that may not exist yet, and permission handling
// that degrades to a no-op on Windows.
package platform
