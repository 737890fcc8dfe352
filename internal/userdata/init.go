package userdata

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pytemplate/pytemplate/internal/platform"
	"github.com/pytemplate/pytemplate/internal/registry"
)

//go:embed all:assets
var assets embed.FS

const assetsRoot = "assets"

// Bundle returns the embedded template bundle rooted at its top directory.
func Bundle() fs.FS {
	sub, err := fs.Sub(assets, assetsRoot)
	if err != nil {
		panic(err)
	}
	return sub
}

// InstallResult counts what Install did.
type InstallResult struct {
	Created int
	Skipped int
}

// Installed reports whether base holds a registry document.
func Installed(base string) bool {
	info, err := os.Stat(filepath.Join(base, registry.FileName))
	return err == nil && info.Mode().IsRegular()
}

// Install copies the embedded bundle into base. Files that already exist
// are left untouched and reported as skipped, so local edits survive.
// Progress is written to w.
func Install(w io.Writer, base string) (*InstallResult, error) {
	res := &InstallResult{}
	if err := ensureDir(w, base, DirPermNormal); err != nil {
		return nil, err
	}

	bundle := Bundle()
	err := fs.WalkDir(bundle, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		dst := filepath.Join(base, filepath.FromSlash(p))
		if d.IsDir() {
			if err := os.MkdirAll(dst, DirPermNormal); err != nil {
				return fmt.Errorf("creating directory %s: %w", dst, err)
			}
			return nil
		}

		if _, err := os.Lstat(dst); err == nil {
			fmt.Fprintf(w, "  [SKIP] %s already exists\n", p)
			res.Skipped++
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		data, err := fs.ReadFile(bundle, p)
		if err != nil {
			return fmt.Errorf("reading bundled %s: %w", p, err)
		}
		if err := platform.WriteFile(dst, data, FilePermNormal); err != nil {
			return err
		}
		fmt.Fprintf(w, "  [ OK ] Created %s\n", path.Clean(p))
		res.Created++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("installing template bundle: %w", err)
	}
	return res, nil
}

// EnsureInstalled installs the bundle when base has no registry document.
// It reports whether an install happened.
func EnsureInstalled(w io.Writer, base string) (bool, error) {
	if Installed(base) {
		return false, nil
	}
	if _, err := Install(w, base); err != nil {
		return false, err
	}
	return true, nil
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	// MkdirAll may not apply exact perms if parent dirs needed creation.
	if err := platform.Chmod(path, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}
