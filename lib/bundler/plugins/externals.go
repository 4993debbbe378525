package plugins

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ExternalNamespace holds the shims of libraries loaded from the asset host.
// Imports of "react" are recorded in the metafile as "cdn-external:react".
const ExternalNamespace = "cdn-external"

// GlobalExternalsPlugin replaces imports of externalized libraries with the
// global each library defines when loaded from a script tag.
type GlobalExternalsPlugin struct {
	// Globals maps a library name to its global binding.
	Globals map[string]string
}

func (p *GlobalExternalsPlugin) New() api.Plugin {
	names := slices.Sorted(maps.Keys(p.Globals))
	for i, name := range names {
		names[i] = regexp.QuoteMeta(name)
	}

	return api.Plugin{
		Name: "cdn-externals",
		Setup: func(build api.PluginBuild) {
			if len(names) == 0 {
				return
			}
			filter := fmt.Sprintf(`^(%s)$`, strings.Join(names, "|"))

			build.OnResolve(api.OnResolveOptions{Filter: filter}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				return api.OnResolveResult{Path: args.Path, Namespace: ExternalNamespace}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: ExternalNamespace}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				contents := GlobalShim(p.Globals[args.Path])
				return api.OnLoadResult{
					Contents: &contents,
					Loader:   api.LoaderJS,
				}, nil
			})
		},
	}
}

// ExternalRequest returns the library name of an import resolved by the
// plugin.
func ExternalRequest(path string) (string, bool) {
	return strings.CutPrefix(path, ExternalNamespace+":")
}

func GlobalShim(global string) string {
	quoted, _ := json.Marshal(global)
	return fmt.Sprintf("module.exports = globalThis[%s];", quoted)
}
