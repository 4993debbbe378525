package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// lockfiles are checked in order when package.json does not name a package
// manager.
var lockfiles = []struct {
	name string
	pm   string
}{
	{"bun.lock", "bun"},
	{"bun.lockb", "bun"},
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
}

// DetectPackageManager returns the package manager of the project at root,
// defaulting to npm. It fails when root has no package.json.
func DetectPackageManager(root string) (string, error) {
	pkg, err := ReadPackageJSON(filepath.Join(root, "package.json"))
	if err != nil {
		return "", err
	}

	if before, _, found := strings.Cut(pkg.PackageManager, "@"); found {
		return before, nil
	}

	for _, lock := range lockfiles {
		if _, err := os.Stat(filepath.Join(root, lock.name)); err == nil {
			return lock.pm, nil
		}
	}

	return "npm", nil
}

// InstallHint suggests the command installing the dependencies of the
// project at root.
func InstallHint(root string) string {
	pm, err := DetectPackageManager(root)
	if err != nil {
		pm = "npm"
	}
	return fmt.Sprintf("Run `%s install` in %s", pm, root)
}
