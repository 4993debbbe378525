package externals

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"micromachine.dev/cdn-externals/lib/utils"
)

var (
	ErrNotInstalled    = errors.New("library is not installed")
	ErrMissingManifest = errors.New("cannot read package.json")
)

// Companion metadata file names, without extension, looked up in the main
// library's install directory (and, for the path config, the project root).
const (
	PathConfigName    = "externals.config"
	ChunkConfigName   = "chunk.config"
	MainExternalsName = "webpack.externals"
)

// PathConfigFile holds resource path templates by library name.
type PathConfigFile struct {
	Production  map[string]string `json:"production" toml:"production"`
	Development map[string]string `json:"development" toml:"development"`
}

// Templates returns the production templates overlaid with the development
// ones when debug is set.
func (f *PathConfigFile) Templates(debug bool) map[string]string {
	out := map[string]string{}
	if f == nil {
		return out
	}
	maps.Copy(out, f.Production)
	if debug {
		maps.Copy(out, f.Development)
	}
	return out
}

// Project is everything read from disk once per build. It is not modified
// afterwards.
type Project struct {
	Root    string
	Entries map[string][]string
	// Externals are the libraries the build leaves out, in declaration order.
	Externals Externals

	Package *utils.PackageJSON

	// MainName is the package name of the main library, empty when the build
	// does not externalize it.
	MainName      string
	MainPackage   *utils.PackageJSON
	MainExternals Externals
	Chunks        *ChunkConfig
	// PathConfig merges the main library's path templates with the project's.
	PathConfig map[string]string

	// CommonJS is set when module sources bind the main library through
	// require calls instead of import declarations.
	CommonJS bool

	// Packages reads the manifest of an installed package, nil when absent.
	Packages func(name string) *utils.PackageJSON
}

// MainLibraryName returns the externals key bound to global. A key equal to
// the global itself wins over any other.
func MainLibraryName(externals Externals, global string) string {
	if g, ok := externals.Get(global); ok && g == global {
		return global
	}
	for _, ext := range externals {
		if ext.Global == global {
			return ext.Name
		}
	}
	return ""
}

// LoadProject reads the manifests and companion metadata of the project at
// root. Missing required files are returned as errors; optional metadata that
// is absent only produces warnings later.
func LoadProject(root string, entries map[string][]string, externals Externals, opts Options, log *slog.Logger) (*Project, error) {
	if log == nil {
		log = slog.Default()
	}
	opts.Normalize(log)

	p := &Project{
		Root:      root,
		Entries:   entries,
		Externals: externals,
		Packages: func(name string) *utils.PackageJSON {
			pkg, err := utils.ReadPackageJSON(filepath.Join(utils.InstalledPackageDir(root, name), "package.json"))
			if err != nil {
				return nil
			}
			return pkg
		},
	}

	if len(externals) == 0 {
		log.Warn("No externals in your build config, are you sure?")
		return p, nil
	}

	p.MainName = MainLibraryName(externals, opts.MainGlobal)
	if p.MainName == "" {
		log.Warn(fmt.Sprintf("%s is not in externals of your build config, are you sure?", opts.MainGlobal))
	}

	var mainDir string
	if p.MainName != "" {
		dir, err := installedDir(root, p.MainName)
		if err != nil {
			return nil, err
		}
		mainDir = dir
	}

	pathConfig, err := readPathConfig(mainDir, opts.Debug)
	if err != nil {
		return nil, err
	}
	projectPathConfig, err := readPathConfig(root, opts.Debug)
	if err != nil {
		return nil, err
	}
	maps.Copy(pathConfig, projectPathConfig)
	p.PathConfig = pathConfig

	CheckEntries(entries, log)

	p.Package, err = readManifest(filepath.Join(root, "package.json"))
	if err != nil {
		return nil, err
	}

	p.CommonJS, err = detectCommonJS(root, opts.ModuleFormat, p.MainName != "", log)
	if err != nil {
		return nil, err
	}

	if p.MainName == "" {
		return p, nil
	}

	p.MainPackage, err = readManifest(filepath.Join(mainDir, "package.json"))
	if err != nil {
		return nil, err
	}

	p.MainExternals, err = readMainExternals(mainDir)
	if err != nil {
		return nil, err
	}

	p.Chunks, _, err = utils.DetectConfigFile[ChunkConfig](mainDir, ChunkConfigName)
	if err != nil && !errors.Is(err, utils.ErrConfigNotFound) {
		return nil, err
	}

	return p, nil
}

// CheckEntries warns about entries without sources when the build has more
// than one entry, and reports whether it does.
func CheckEntries(entries map[string][]string, log *slog.Logger) bool {
	multiple := len(entries) > 1
	if !multiple {
		return false
	}
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		if len(entries[name]) == 0 {
			log.Warn(fmt.Sprintf("Entry %q has no sources, every entry is expected to list its source files.", name))
			break
		}
	}
	return true
}

func installedDir(root, name string) (string, error) {
	dir := utils.InstalledPackageDir(root, name)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("%w: %s, cannot find the path '%s'", ErrNotInstalled, name, dir)
	}
	return dir, nil
}

func readManifest(path string) (*utils.PackageJSON, error) {
	pkg, err := utils.ReadPackageJSON(path)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrMissingManifest, path, err)
	}
	return pkg, nil
}

func readPathConfig(dir string, debug bool) (map[string]string, error) {
	if dir == "" {
		return map[string]string{}, nil
	}
	file, _, err := utils.DetectConfigFile[PathConfigFile](dir, PathConfigName)
	if err != nil {
		if errors.Is(err, utils.ErrConfigNotFound) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return file.Templates(debug), nil
}

// readMainExternals reads the externals the main library expects to be
// provided. Only JSON forms keep the declaration order, so TOML is not
// accepted for this file.
func readMainExternals(dir string) (Externals, error) {
	for _, ext := range []string{".json", ".jsonc"} {
		path := filepath.Join(dir, MainExternalsName+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		externals, err := utils.ReadConfigFile[Externals](path)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", path, err)
		}
		return *externals, nil
	}
	return nil, nil
}
