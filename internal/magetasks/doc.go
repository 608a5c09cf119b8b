// Package magetasks provides the build, test and lint tasks behind the
// Magefile.
package magetasks
