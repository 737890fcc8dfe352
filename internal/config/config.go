package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pytemplate/pytemplate/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyBaseDir           = "base_dir"
	KeyDefaultBranch     = "default_branch"
	KeyGHPath            = "gh_path"
	KeyPublishTimeout    = "publish_timeout"
	KeyMaxParallelCopies = "max_parallel_copies"
	KeyLogDir            = "log_dir"
	KeyDebug             = "debug"
)

// Keys lists every recognised setting, in display order.
var Keys = []string{
	KeyBaseDir,
	KeyDefaultBranch,
	KeyGHPath,
	KeyPublishTimeout,
	KeyMaxParallelCopies,
	KeyLogDir,
	KeyDebug,
}

// Settings is the typed view of the user configuration.
type Settings struct {
	BaseDir           string
	DefaultBranch     string
	GHPath            string
	PublishTimeout    time.Duration
	MaxParallelCopies int
	LogDir            string
	Debug             bool
}

// Dir returns the path to the config directory (~/.pytemplate/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.pytemplate/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDefaultBranch, "main")
	v.SetDefault(KeyGHPath, "gh")
	v.SetDefault(KeyPublishTimeout, "60s")
	v.SetDefault(KeyMaxParallelCopies, 4)
	v.SetDefault(KeyDebug, false)
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Current returns the typed settings from the global Viper instance.
func Current() Settings {
	return fromViper(viper.GetViper())
}

func fromViper(v *viper.Viper) Settings {
	s := Settings{
		BaseDir:           v.GetString(KeyBaseDir),
		DefaultBranch:     v.GetString(KeyDefaultBranch),
		GHPath:            v.GetString(KeyGHPath),
		PublishTimeout:    v.GetDuration(KeyPublishTimeout),
		MaxParallelCopies: v.GetInt(KeyMaxParallelCopies),
		LogDir:            v.GetString(KeyLogDir),
		Debug:             v.GetBool(KeyDebug),
	}
	if s.DefaultBranch == "" {
		s.DefaultBranch = "main"
	}
	if s.PublishTimeout <= 0 {
		s.PublishTimeout = 60 * time.Second
	}
	if s.MaxParallelCopies <= 0 {
		s.MaxParallelCopies = 1
	}
	return s
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// IsKnownKey reports whether key is a recognised setting.
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
