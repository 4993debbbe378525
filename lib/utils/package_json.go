package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type PackageJSON struct {
	Name                 string            `json:"name,omitempty"`
	Version              string            `json:"version,omitempty"`
	Private              bool              `json:"private,omitempty"`
	Main                 string            `json:"main,omitempty"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
	DevDependencies      map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies     map[string]string `json:"peerDependencies,omitempty"`
	OptionalDependencies map[string]string `json:"optionalDependencies,omitempty"`
	PackageManager       string            `json:"packageManager,omitempty"` // e.g., "pnpm@8.6.0"
}

func (p *PackageJSON) HasDependency(name string) bool {
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	if _, ok := p.DevDependencies[name]; ok {
		return true
	}
	return false
}

// DependencyVersion returns the declared range for name from dependencies,
// falling back to devDependencies when withDev is set.
func (p *PackageJSON) DependencyVersion(name string, withDev bool) string {
	if p == nil {
		return ""
	}
	if v := p.Dependencies[name]; v != "" {
		return v
	}
	if withDev {
		return p.DevDependencies[name]
	}
	return ""
}

func ReadPackageJSON(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// InstalledPackageDir returns where name would live under root/node_modules.
func InstalledPackageDir(root, name string) string {
	return filepath.Join(root, "node_modules", filepath.FromSlash(name))
}
