package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dkoosis/subunit/pkg/render"
)

// Sources recorded for each resolved value, highest priority first.
const (
	SourceCLI     = "cli"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// Resolved holds the effective configuration after applying all priority rules.
type Resolved struct {
	Theme     render.Theme
	ThemeName string
	NoColor   bool
	CI        bool
	Debug     bool
	Filter    FilterConfig
	Tags      []string

	// Path of the file that was read, "" if none.
	ConfigPath string

	ThemeSource   string
	NoColorSource string
	CISource      string
	DebugSource   string
}

// Resolve loads the configuration file and applies environment variables
// and flags over it.
func Resolve(flags CLIFlags) (*Resolved, error) {
	appCfg, path, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return resolve(flags, appCfg, path)
}

func resolve(flags CLIFlags, appCfg *AppConfig, path string) (*Resolved, error) {
	fileSource := SourceDefault
	if path != "" {
		fileSource = SourceFile
	}

	resolved := &Resolved{
		ThemeName:     appCfg.Theme,
		NoColor:       appCfg.NoColor,
		CI:            appCfg.CI,
		Debug:         appCfg.Debug,
		Filter:        appCfg.Filter,
		Tags:          appCfg.Tags,
		ConfigPath:    path,
		ThemeSource:   fileSource,
		NoColorSource: fileSource,
		CISource:      fileSource,
		DebugSource:   fileSource,
	}

	switch {
	case flags.ThemeName != "":
		resolved.ThemeName, resolved.ThemeSource = flags.ThemeName, SourceCLI
	case os.Getenv("SUBUNIT_THEME") != "":
		resolved.ThemeName, resolved.ThemeSource = os.Getenv("SUBUNIT_THEME"), SourceEnv
	}

	if flags.NoColorSet {
		resolved.NoColor, resolved.NoColorSource = flags.NoColor, SourceCLI
	} else if v := getEnvBool("SUBUNIT_NO_COLOR", "NO_COLOR"); v != nil {
		resolved.NoColor, resolved.NoColorSource = *v, SourceEnv
	}

	if flags.CISet {
		resolved.CI, resolved.CISource = flags.CI, SourceCLI
	} else if v := getEnvBool("SUBUNIT_CI", "CI"); v != nil {
		resolved.CI, resolved.CISource = *v, SourceEnv
	}

	if flags.DebugSet {
		resolved.Debug, resolved.DebugSource = flags.Debug, SourceCLI
	} else if os.Getenv("SUBUNIT_DEBUG") != "" {
		resolved.Debug, resolved.DebugSource = true, SourceEnv
	}

	theme, ok := render.LookupTheme(resolved.ThemeName)
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (from %s), want one of %v",
			resolved.ThemeName, resolved.ThemeSource, render.ThemeNames())
	}

	// CI logs are read as plain text.
	if resolved.CI {
		resolved.NoColor = true
	}
	if resolved.NoColor {
		theme = render.MonoTheme()
	}
	resolved.Theme = theme

	return resolved, nil
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set, or a pointer to the boolean value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}
