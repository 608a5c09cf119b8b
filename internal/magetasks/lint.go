package magetasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

// sourceDirs are the paths checked by gofmt; _examples and bin are skipped.
var sourceDirs = []string{"cmd", "internal", "pkg", "magefile.go"}

// linter is an external lint command. Linters with an install path are
// optional: LintAll skips them when they are not installed.
type linter struct {
	name    string
	cmd     string
	args    []string
	install string
}

var (
	vetLinter = linter{name: "Go Vet", cmd: "go", args: []string{"vet", "./..."}}

	staticcheckLinter = linter{
		name:    "Staticcheck",
		cmd:     "staticcheck",
		args:    []string{"./..."},
		install: "honnef.co/go/tools/cmd/staticcheck@latest",
	}

	golangciLinter = linter{
		name: "Golangci-lint",
		cmd:  "golangci-lint",
		args: []string{"run",
			"--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign",
			"--timeout=5m", "./..."},
		install: "github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	}
)

func (l linter) run() error {
	err := Run(l.name, l.cmd, l.args...)
	switch {
	case err == nil:
		return nil
	case l.install != "" && IsCommandNotFound(err):
		PrintWarning(fmt.Sprintf("%s not found (install: go install %s)", l.name, l.install))
		return err
	default:
		return fmt.Errorf("%s failed: %w", strings.ToLower(l.name), err)
	}
}

// LintAll runs every linter and reports all failures together.
func LintAll() error {
	var errs []error
	if err := LintFormat(); err != nil {
		errs = append(errs, err)
	}
	for _, l := range []linter{vetLinter, staticcheckLinter, golangciLinter} {
		if err := l.run(); err != nil && !IsCommandNotFound(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat fails if any source file is not gofmt-clean.
func LintFormat() error {
	PrintH2Header("Go Format")
	out, err := sh.Output("gofmt", append([]string{"-l"}, sourceDirs...)...)
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	files := strings.Fields(out)
	for _, f := range files {
		PrintWarning("needs gofmt: " + f)
	}
	if len(files) > 0 {
		return fmt.Errorf("%d files need gofmt", len(files))
	}
	return nil
}

func LintVet() error { return vetLinter.run() }

func LintStaticcheck() error { return staticcheckLinter.run() }

func LintGolangci() error { return golangciLinter.run() }
