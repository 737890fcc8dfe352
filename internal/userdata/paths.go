package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pytemplate/pytemplate/internal/branding"
	"github.com/pytemplate/pytemplate/internal/config"
)

// Directory names under the pytemplate home directory.
const (
	ShareDir = "share"
	LogsDir  = "logs"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// BaseDir returns the template base directory. The PYTEMPLATE_HOME
// environment variable wins, then the base_dir setting, then
// ~/.pytemplate/share.
func BaseDir(s config.Settings) (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return filepath.Abs(v)
	}
	if s.BaseDir != "" {
		return filepath.Abs(s.BaseDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir(), ShareDir), nil
}

// LogDir returns the directory for debug log files: the log_dir setting, or
// pytemplate/logs under the user cache directory.
func LogDir(s config.Settings) (string, error) {
	if s.LogDir != "" {
		return filepath.Abs(s.LogDir)
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	return filepath.Join(cache, branding.CLIName(), LogsDir), nil
}
