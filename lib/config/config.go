// Package config reads the cdn-externals project file.
package config

import (
	"fmt"
	"maps"
	"slices"

	"micromachine.dev/cdn-externals/lib/externals"
	"micromachine.dev/cdn-externals/lib/html"
	"micromachine.dev/cdn-externals/lib/utils"
)

// FileName is the project file base name, looked up with every supported
// extension.
const FileName = "cdn-externals"

type Config struct {
	// Entry maps an entry name to its source files.
	Entry       map[string][]string `json:"entry"`
	Externals   externals.Externals `json:"externals"`
	OutDir      string              `json:"outDir"`
	PublicPath  string              `json:"publicPath"`
	Environment string              `json:"environment"`
	Pages       []html.Page         `json:"pages"`
	Options     externals.Options   `json:"options"`
}

// file is the on-disk shape. Entry accepts a single source, a list of
// sources, or a table of either.
type file struct {
	Entry       any                 `json:"entry" toml:"entry"`
	Externals   externals.Externals `json:"externals" toml:"externals"`
	OutDir      string              `json:"outDir" toml:"outDir"`
	PublicPath  string              `json:"publicPath" toml:"publicPath"`
	Environment string              `json:"environment" toml:"environment"`
	Pages       []html.Page         `json:"pages" toml:"pages"`
	Options     externals.Options   `json:"options" toml:"options"`
}

// Default returns the configuration of a project without a project file.
func Default() *Config {
	return &Config{
		Entry:       map[string][]string{"main": {"./src/index.js"}},
		OutDir:      "dist",
		Environment: "production",
	}
}

// Load detects the project file in root. It returns utils.ErrConfigNotFound
// when there is none.
func Load(root string) (*Config, string, error) {
	f, path, err := utils.DetectConfigFile[file](root, FileName)
	if err != nil {
		return nil, path, err
	}
	config, err := f.config()
	if err != nil {
		return nil, path, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}
	return config, path, nil
}

// Read decodes the project file at path.
func Read(path string) (*Config, error) {
	f, err := utils.ReadConfigFile[file](path)
	if err != nil {
		return nil, err
	}
	config, err := f.config()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}
	return config, nil
}

func (f *file) config() (*Config, error) {
	c := Default()
	if f.Entry != nil {
		entry, err := ParseEntry(f.Entry)
		if err != nil {
			return nil, err
		}
		c.Entry = entry
	}
	c.Externals = f.Externals
	if f.OutDir != "" {
		c.OutDir = f.OutDir
	}
	if f.Environment != "" {
		c.Environment = f.Environment
	}
	c.PublicPath = f.PublicPath
	c.Pages = f.Pages
	c.Options = f.Options
	return c, nil
}

// ParseEntry normalizes the entry setting. A single source or a list of
// sources becomes the "main" entry.
func ParseEntry(v any) (map[string][]string, error) {
	switch e := v.(type) {
	case string, []any:
		sources, err := parseSources(e)
		if err != nil {
			return nil, err
		}
		return map[string][]string{"main": sources}, nil
	case map[string]any:
		entry := make(map[string][]string, len(e))
		for _, name := range slices.Sorted(maps.Keys(e)) {
			sources, err := parseSources(e[name])
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", name, err)
			}
			entry[name] = sources
		}
		return entry, nil
	}
	return nil, fmt.Errorf("entry expected to be a string, a list or a table, got %T", v)
}

func parseSources(v any) ([]string, error) {
	switch s := v.(type) {
	case string:
		return []string{s}, nil
	case []any:
		sources := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("source expected to be a string, got %T", item)
			}
			sources = append(sources, str)
		}
		return sources, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("sources expected to be a string or a list, got %T", v)
}
