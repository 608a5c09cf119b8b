//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/dkoosis/subunit/internal/magetasks"
)

var Default = Build

func init() {
	if err := magetasks.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "magefile: %v\n", err)
		os.Exit(1)
	}
}

// Build compiles bin/subunit with version information.
func Build() error {
	return magetasks.BuildAll()
}

// Install installs subunit into GOBIN.
func Install() error {
	return sh.RunV("go", "install", "./cmd/subunit")
}

// Clean removes bin/ and coverage output.
func Clean() error {
	return magetasks.Clean()
}

// QA lints, runs the test report and builds.
func QA() error {
	return magetasks.QualityCheck()
}

// CI is QA plus the race detector, failing on lint findings.
func CI() {
	mg.SerialDeps(Lint.All, Test.Race, QA)
}

type Lint mg.Namespace

// All runs gofmt, vet and the optional linters that are installed.
func (Lint) All() error { return magetasks.LintAll() }

// Format fails on files that are not gofmt-clean.
func (Lint) Format() error { return magetasks.LintFormat() }

func (Lint) Vet() error { return magetasks.LintVet() }

func (Lint) Staticcheck() error { return magetasks.LintStaticcheck() }

func (Lint) Golangci() error { return magetasks.LintGolangci() }

type Test mg.Namespace

// All runs go test.
func (Test) All() error { return magetasks.TestAll() }

// Report runs go test -json and summarizes it through subunit.
func (Test) Report() error { return magetasks.TestReport() }

// Coverage writes coverage.out and prints per-function coverage.
func (Test) Coverage() error { return magetasks.TestCoverage() }

// Race runs the tests under the race detector.
func (Test) Race() error { return magetasks.TestRace() }
