package magetasks

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	ModulePath = "github.com/dkoosis/subunit"

	// BinPath is the binary's path relative to ProjectRoot.
	BinPath = filepath.Join("bin", "subunit")

	// ProjectRoot is the directory holding go.mod, set by Initialize.
	ProjectRoot string
)

// Initialize locates the module root from the working directory and
// creates its bin directory. Call it from the Magefile's init.
func Initialize() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	ProjectRoot, err = findModuleRoot(wd)
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(ProjectRoot, "bin"), 0o750)
}

func findModuleRoot(start string) (string, error) {
	for dir := start; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod in %s or any parent", start)
		}
		dir = parent
	}
}

func binary() string {
	return filepath.Join(ProjectRoot, BinPath)
}
