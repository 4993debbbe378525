package externals

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsNormalize(t *testing.T) {
	log, buf := testLogger(t)
	opts := Options{
		Mode:           "split",
		ModuleFormat:   "amd",
		ScriptsPrepend: []*Descriptor{nil, {Path: "a.js"}},
	}
	opts.Normalize(log)

	assert.Equal(t, ModeChunk, opts.Mode)
	assert.Equal(t, ModuleFormatAuto, opts.ModuleFormat)
	assert.Equal(t, DefaultPrefixURL, opts.PrefixURL)
	assert.Equal(t, DefaultTheme, opts.Theme)
	assert.Equal(t, DefaultMainGlobal, opts.MainGlobal)
	assert.True(t, opts.skipCircularReference())
	assert.Len(t, opts.ScriptsPrepend, 1)

	out := buf.String()
	assert.Contains(t, out, `options.mode expected to be 'one' or 'chunk', got \"split\"`)
	assert.Contains(t, out, "options.moduleFormat")
	assert.Contains(t, out, "empty tag entry")
}

func TestDetectCommonJS(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		format   ModuleFormat
		expected bool
		warning  string
	}{
		{"forced commonjs", "", "", ModuleFormatCommonJS, true, ""},
		{"forced esm", "babel.config.json", `{"extends": "babel-config-pandora"}`, ModuleFormatESM, false, ""},
		{"preset", "babel.config.json", `{"extends": "babel-config-pandora-typescript"}`, ModuleFormatAuto, true, ""},
		{"plugin string", ".babelrc", `{
			// comments are allowed here
			"plugins": ["@babel/plugin-transform-modules-commonjs"]
		}`, ModuleFormatAuto, true, ""},
		{"plugin with options", ".babelrc.json", `{"plugins": [["@babel/plugin-transform-modules-commonjs", {"loose": true}]]}`, ModuleFormatAuto, true, ""},
		{"no plugin", "babel.config.json", `{"presets": ["@babel/preset-env"]}`, ModuleFormatAuto, false, "is not in your babel.config.json"},
		{"no config", "", "", ModuleFormatAuto, false, "No babel config found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.file != "" {
				writeFile(t, filepath.Join(root, tt.file), tt.content)
			}
			log, buf := testLogger(t)

			commonJS, err := detectCommonJS(root, tt.format, true, log)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, commonJS)
			if tt.warning != "" {
				assert.Contains(t, buf.String(), tt.warning)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestDetectCommonJSInvalidConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "babel.config.json"), `{"extends": `)
	log, _ := testLogger(t)

	_, err := detectCommonJS(root, ModuleFormatAuto, false, log)
	assert.ErrorContains(t, err, "invalid babel config")
}
