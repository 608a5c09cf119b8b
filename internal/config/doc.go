// Package config loads .subunit.yaml and resolves it against the
// environment and command-line flags.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--theme, --no-color, --ci, --debug)
//  2. Environment variables (SUBUNIT_THEME, SUBUNIT_NO_COLOR, NO_COLOR,
//     SUBUNIT_CI, CI, SUBUNIT_DEBUG)
//  3. YAML config file (.subunit.yaml in the working directory, or
//     subunit/.subunit.yaml under the user config directory)
//  4. Defaults
//
// Resolved records which of these supplied each value.
//
// # File Format
//
//	theme: orca
//	no_color: false
//	debug: false
//	filter:
//	  error: false
//	  failure: false
//	  success: true
//	  skip: false
//	  xfail: false
//	  passthrough: true
//	tags: [ci, -flaky]
//
// The filter block sets the defaults of `subunit filter`; a true outcome
// key drops that outcome. tags sets the default arguments of `subunit tags`.
//
// # CI Mode
//
// CI mode implies no color: every theme renders as mono.
package config
