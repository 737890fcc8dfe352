package creator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pytemplate/pytemplate/internal/apperr"
	"github.com/pytemplate/pytemplate/internal/platform"
	"github.com/pytemplate/pytemplate/internal/project"
	"github.com/pytemplate/pytemplate/internal/registry"
)

// DefaultConfigFile is where WriteConfigSpec writes when no output path is
// given.
const DefaultConfigFile = "project_config.yaml"

// WriteConfigSpec copies the configuration skeleton registered for
// typeArg to outputPath and returns the absolute path written. The type is
// matched case-insensitively. An existing file is only replaced when force
// is set.
func WriteConfigSpec(reg *registry.Registry, base, typeArg, outputPath string, force bool) (string, error) {
	const op = "create configuration"

	t, err := project.ParseType(typeArg)
	if err != nil {
		return "", apperr.New(apperr.KindTemplateNotFound, op, err).WithSubject(typeArg)
	}
	ref, err := registry.Resolve(reg, base, registry.KindConfigSpec, string(t))
	if err != nil {
		return "", err
	}

	if outputPath == "" {
		outputPath = DefaultConfigFile
	}
	dst, err := filepath.Abs(outputPath)
	if err != nil {
		return "", apperr.New(apperr.KindInternal, op, err)
	}
	if platform.Exists(dst) && !force {
		return "", apperr.Errorf(apperr.KindDirectoryExists, op, "%s already exists", dst).
			WithSubject(dst).
			WithHint("choose another --output path or re-run with --force to overwrite it")
	}

	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return "", apperr.New(apperr.KindInvalidLocation, op, err).WithSubject(ref.Path)
	}
	if err := platform.WriteFile(dst, data, 0o644); err != nil {
		return "", apperr.New(apperr.KindInternal, op, fmt.Errorf("writing %s: %w", dst, err))
	}
	return dst, nil
}
