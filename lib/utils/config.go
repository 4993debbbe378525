package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
)

var ErrConfigNotFound = errors.New("no configuration file found")

// ConfigExtensions lists the file extensions DetectConfigFile tries, in order.
var ConfigExtensions = []string{".toml", ".json", ".jsonc"}

// DetectConfigFile looks for dir/base with one of ConfigExtensions and decodes
// the first one found into T. It returns ErrConfigNotFound when none exists.
func DetectConfigFile[T any](dir, base string) (*T, string, error) {
	for _, ext := range ConfigExtensions {
		path := filepath.Join(dir, base+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", err
		}

		config, err := DecodeConfig[T](data, ext)
		if err != nil {
			return nil, path, fmt.Errorf("invalid configuration file %s: %w", path, err)
		}
		return config, path, nil
	}

	return nil, "", fmt.Errorf("%w: %s.{toml,json,jsonc} in %s", ErrConfigNotFound, base, dir)
}

// ReadConfigFile decodes a single configuration file, choosing the format
// from its extension. Dotfiles such as .babelrc and files with an unknown
// extension are read as JSON with comments.
func ReadConfigFile[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := filepath.Ext(path)
	if ext == filepath.Base(path) || !slices.Contains(ConfigExtensions, ext) {
		ext = ".jsonc"
	}
	return DecodeConfig[T](data, ext)
}

func DecodeConfig[T any](data []byte, ext string) (*T, error) {
	config := new(T)
	switch ext {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), config); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", ext)
	}
	return config, nil
}
