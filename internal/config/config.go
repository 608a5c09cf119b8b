package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/subunit/pkg/results"
)

// FileName is the configuration file looked up in the working directory
// and in the user config directory.
const FileName = ".subunit.yaml"

// DefaultThemeName is used when no source names a theme.
const DefaultThemeName = "default"

// CLIFlags holds the values of command-line flags.
type CLIFlags struct {
	ThemeName string
	NoColor   bool
	CI        bool
	Debug     bool

	// Flags to track if they were explicitly set by the user
	NoColorSet bool
	CISet      bool
	DebugSet   bool
}

// FilterConfig holds the default outcome filters for `subunit filter`.
// A true value drops that outcome; Passthrough keeps non-protocol lines.
type FilterConfig struct {
	Error       bool `yaml:"error"`
	Failure     bool `yaml:"failure"`
	Success     bool `yaml:"success"`
	Skip        bool `yaml:"skip"`
	Xfail       bool `yaml:"xfail"`
	Passthrough bool `yaml:"passthrough"`
}

// Options converts the file settings into filter options.
func (f FilterConfig) Options() results.FilterOptions {
	return results.FilterOptions{
		FilterError:   f.Error,
		FilterFailure: f.Failure,
		FilterSuccess: f.Success,
		FilterSkip:    f.Skip,
		FilterXfail:   f.Xfail,
	}
}

// AppConfig represents the contents of .subunit.yaml.
type AppConfig struct {
	Theme   string       `yaml:"theme"`
	NoColor bool         `yaml:"no_color"`
	CI      bool         `yaml:"ci"`
	Debug   bool         `yaml:"debug"`
	Filter  FilterConfig `yaml:"filter"`
	Tags    []string     `yaml:"tags"`
}

// Defaults returns the configuration used when no file is found.
func Defaults() *AppConfig {
	return &AppConfig{
		Theme: DefaultThemeName,
		Filter: FilterConfig{
			Success:     true,
			Passthrough: true,
		},
	}
}

// LoadConfig reads the first configuration file found, layered over
// Defaults. It returns the path it read, or "" when none exists.
func LoadConfig() (*AppConfig, string, error) {
	cfg := Defaults()
	path := getConfigPath()
	if path == "" {
		return cfg, "", nil
	}
	if err := loadFile(path, cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// loadFile unmarshals path over cfg; keys absent from the file keep their
// current values.
func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Theme == "" {
		cfg.Theme = DefaultThemeName
	}
	return nil
}

// getConfigPath tries to find the configuration file.
// It checks local directory first, then the user config directory.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	// An empty or root config dir is not usable.
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	userPath := filepath.Join(configHome, "subunit", FileName)
	// Other stat errors surface when the file is read.
	if _, err := os.Stat(userPath); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return userPath
}
