package externals

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"micromachine.dev/cdn-externals/lib/utils"
)

const commonJSPlugin = "@babel/plugin-transform-modules-commonjs"

// babelConfigFiles are tried in order; .babelrc has no extension and is read
// as JSON with comments.
var babelConfigFiles = []string{"babel.config.json", ".babelrc.json", ".babelrc"}

// presets known to rewrite module imports into require calls.
var commonJSPresets = []string{"babel-config-pandora", "babel-config-pandora-typescript"}

type babelConfig struct {
	Extends string `json:"extends"`
	Plugins []any  `json:"plugins"`
}

func (c *babelConfig) usesCommonJS() bool {
	if slices.Contains(commonJSPresets, c.Extends) {
		return true
	}
	for _, plugin := range c.Plugins {
		switch p := plugin.(type) {
		case string:
			if p == commonJSPlugin {
				return true
			}
		case []any:
			if len(p) > 0 && p[0] == commonJSPlugin {
				return true
			}
		}
	}
	return false
}

// detectCommonJS decides once per build which form the chunk scanner looks
// for. prompting enables warnings, which only matter when the main library is
// externalized.
func detectCommonJS(root string, format ModuleFormat, prompting bool, log *slog.Logger) (bool, error) {
	switch format {
	case ModuleFormatCommonJS:
		return true, nil
	case ModuleFormatESM:
		return false, nil
	}

	for _, name := range babelConfigFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		config, err := utils.ReadConfigFile[babelConfig](path)
		if err != nil {
			return false, fmt.Errorf("invalid babel config '%s': %w", path, err)
		}
		if config.usesCommonJS() {
			return true, nil
		}
		if prompting {
			log.Warn(fmt.Sprintf("%s is not in your %s, chunks are detected from import declarations.", commonJSPlugin, name))
		}
		return false, nil
	}

	if prompting {
		log.Warn(fmt.Sprintf("No babel config found in '%s', chunks are detected from import declarations.", root))
	}
	return false, nil
}
