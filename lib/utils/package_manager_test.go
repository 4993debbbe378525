package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectPackageManager(t *testing.T) {
	tests := []struct {
		name           string
		expected       string
		lockfile       string
		packageManager string
	}{
		{"Detect Bun from lockfile", "bun", "bun.lock", ""},
		{"Detect legacy Bun lockfile", "bun", "bun.lockb", ""},
		{"Detect Yarn from lockfile", "yarn", "yarn.lock", ""},
		{"Detect Pnpm from lockfile", "pnpm", "pnpm-lock.yaml", ""},
		{"Default to NPM", "npm", "package-lock.json", ""},
		{"packageManager wins over lockfile", "pnpm", "yarn.lock", "pnpm@9.1.0"},
		{"packageManager without version is ignored", "yarn", "yarn.lock", "pnpm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()

			manifest := `{"name": "test"}`
			if tt.packageManager != "" {
				manifest = fmt.Sprintf(`{"name": "test", "packageManager": "%s"}`, tt.packageManager)
			}
			if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0644); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, tt.lockfile), []byte(`{}`), 0644); err != nil {
				t.Fatal(err)
			}

			got, err := DetectPackageManager(dir)
			if err != nil {
				t.Errorf("expected %s, got error: %v", tt.expected, err)
				return
			}

			if got != tt.expected {
				t.Errorf("DetectPackageManager(%s) = %s, want %s", dir, got, tt.expected)
			}
		})
	}
}

func TestMissingPackageManager(t *testing.T) {
	dir := t.TempDir()
	_, err := DetectPackageManager(dir)
	if err == nil {
		t.Error("Expected error when no package.json found")
	}
}

func TestInstallHint(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"packageManager": "yarn@4.1.0"}`), 0644); err != nil {
		t.Fatal(err)
	}

	want := fmt.Sprintf("Run `yarn install` in %s", dir)
	if got := InstallHint(dir); got != want {
		t.Errorf("InstallHint() = %q, want %q", got, want)
	}
}
