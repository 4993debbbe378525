package bundler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"micromachine.dev/cdn-externals/lib/bundler/plugins"
	"micromachine.dev/cdn-externals/lib/externals"
	"micromachine.dev/cdn-externals/lib/graph"
	"micromachine.dev/cdn-externals/lib/utils"
)

var ErrNoEntries = errors.New("no entry to bundle")

type Bundle struct {
	RootDir string
	// OutDir is relative to RootDir unless absolute.
	OutDir string
	// Entries maps an entry name to its source files, relative to RootDir.
	Entries     map[string][]string
	Externals   externals.Externals
	Environment string
	Debug       bool
	// Write emits the bundles to OutDir. Without it only the metafile is
	// produced.
	Write bool
	// CommonJS makes Graph sources read as CommonJS, with imports turned
	// into require calls.
	CommonJS bool
}

// Result is the output of one build.
type Result struct {
	Graph    *graph.Graph
	Metafile *graph.Metafile
	// Outputs maps an entry name to its emitted files, relative to OutDir.
	Outputs map[string][]string
}

// EntryNames returns the entry names in sorted order.
func (r *Result) EntryNames() []string {
	return slices.Sorted(maps.Keys(r.Outputs))
}

func (b *Bundle) Build() (*Result, error) {
	if len(b.Entries) == 0 {
		return nil, ErrNoEntries
	}

	absDir, err := filepath.Abs(b.RootDir)
	if err != nil {
		slog.Error(fmt.Sprintf("✗ %v", err))
		return nil, fmt.Errorf("could not resolve absolute path: %w", err)
	}
	outDir := b.GetOutputDir(absDir)

	if b.Write {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			slog.Error(fmt.Sprintf("✗ %v", err))
			return nil, fmt.Errorf("could not create output directory: %w", err)
		}
	}

	start := time.Now()
	utils.LogWithColor(utils.Cyan, "Bundling application...")

	names := slices.Sorted(maps.Keys(b.Entries))
	entryPoints := make([]api.EntryPoint, 0, len(names))
	entryInputs := make(map[string]string, len(names))
	for _, name := range names {
		entryPoints = append(entryPoints, api.EntryPoint{InputPath: plugins.EntryInput(name), OutputPath: name})
		entryInputs[plugins.EntryInput(name)] = name
	}

	entryPlugin := plugins.EntryPlugin{Entries: b.Entries, ResolveDir: absDir}
	externalsPlugin := plugins.GlobalExternalsPlugin{Globals: b.Externals.Globals()}
	remoteFilePlugin := plugins.RemoteFilePlugin{}

	sourcemap := api.SourceMapNone
	if b.Debug {
		sourcemap = api.SourceMapLinked
	}

	result := api.Build(api.BuildOptions{
		Plugins: []api.Plugin{
			entryPlugin.New(),
			externalsPlugin.New(),
			remoteFilePlugin.New(),
		},
		EntryPointsAdvanced: entryPoints,
		Outdir:              outDir,
		AbsWorkingDir:       absDir,
		Bundle:              true,
		Write:               b.Write,
		AllowOverwrite:      true,
		EntryNames:          "[name]",
		AssetNames:          "assets/[name]-[hash]",
		LogLevel:            api.LogLevelSilent,
		Format:              api.FormatIIFE,
		Platform:            api.PlatformBrowser,
		TreeShaking:         api.TreeShakingTrue,
		Loader: map[string]api.Loader{
			".js":    api.LoaderJSX,
			".mjs":   api.LoaderJSX,
			".cjs":   api.LoaderJSX,
			".png":   api.LoaderFile,
			".jpg":   api.LoaderFile,
			".gif":   api.LoaderFile,
			".svg":   api.LoaderFile,
			".woff":  api.LoaderFile,
			".woff2": api.LoaderFile,
		},
		Target:            api.ES2017,
		MinifyWhitespace:  !b.Debug,
		MinifyIdentifiers: !b.Debug,
		MinifySyntax:      !b.Debug,
		Metafile:          true,
		Sourcemap:         sourcemap,
		Define: map[string]string{
			"process.env.NODE_ENV":            toJSString(b.Environment),
			"globalThis.process.env.NODE_ENV": toJSString(b.Environment),
		},
	})

	if len(result.Errors) > 0 {
		for _, err := range result.Errors {
			slog.Error(fmt.Sprintf("✗ %s", formatMessage(err)))
		}

		return nil, fmt.Errorf("bundle failed with %d error(s)", len(result.Errors))
	}

	for _, warning := range result.Warnings {
		slog.Warn(formatMessage(warning))
	}

	meta, err := graph.ParseMetafile([]byte(result.Metafile))
	if err != nil {
		return nil, err
	}

	outputs := make(map[string][]string, len(names))
	for input, name := range entryInputs {
		for _, out := range meta.OutputsFor(input) {
			rel, err := filepath.Rel(outDir, filepath.Join(absDir, out))
			if err != nil {
				return nil, err
			}
			outputs[name] = append(outputs[name], filepath.ToSlash(rel))
		}
	}

	sources := sourceReader{root: absDir, commonJS: b.CommonJS, cache: map[string]string{}}
	g := graph.FromMetafile(meta, graph.MetafileOptions{
		Entries: entryInputs,
		Request: externalRequest,
		Source:  sources.read,
	})

	elapsed := time.Since(start)
	utils.LogWithColor(utils.Success, fmt.Sprintf("✓ Bundling completed in %s", elapsed))

	return &Result{Graph: g, Metafile: meta, Outputs: outputs}, nil
}

// GetOutputDir returns the absolute output directory for a project rooted at
// absDir.
func (b *Bundle) GetOutputDir(absDir string) string {
	outDir := b.OutDir
	if outDir == "" {
		outDir = "dist"
	}
	if filepath.IsAbs(outDir) {
		return outDir
	}
	return filepath.Join(absDir, outDir)
}

// externalRequest exposes shimmed libraries on the graph under their
// package name, as an external import.
func externalRequest(imp graph.MetafileImport) (string, bool) {
	if name, ok := plugins.ExternalRequest(imp.Path); ok {
		return name, true
	}
	if imp.Original != "" {
		return imp.Original, imp.External
	}
	return imp.Path, imp.External
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}

func toJSString(val string) string {
	if val == "" {
		return `""`
	}
	// JSON marshal handles escaping
	b, _ := json.Marshal(val)
	return string(b)
}

// sourceReader loads module sources for the chunk scanner. In CommonJS mode
// each file is transformed once so that imports read as require calls.
type sourceReader struct {
	root     string
	commonJS bool
	cache    map[string]string
}

func (r *sourceReader) read(m *graph.Module) (string, error) {
	if m == nil || !m.Normal {
		return "", graph.ErrNoSource
	}
	if src, ok := r.cache[m.Resource]; ok {
		return src, nil
	}

	path := m.Resource
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	src := string(data)

	if loader := loaderFor(path); r.commonJS && loader != api.LoaderCSS && loader != api.LoaderJSON {
		result := api.Transform(src, api.TransformOptions{
			Format:     api.FormatCommonJS,
			Loader:     loader,
			Sourcefile: m.Resource,
			LogLevel:   api.LogLevelSilent,
		})
		if len(result.Errors) > 0 {
			return "", fmt.Errorf("could not transform %s: %s", m.Resource, formatMessage(result.Errors[0]))
		}
		src = string(result.Code)
	}

	r.cache[m.Resource] = src
	return src, nil
}

func loaderFor(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".css":
		return api.LoaderCSS
	case ".json":
		return api.LoaderJSON
	default:
		return api.LoaderJSX
	}
}
