package plugins

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// EntryNamespace holds the virtual entry modules. An entry named "main" is
// recorded in the metafile as "cdn-entry:main".
const EntryNamespace = "cdn-entry"

// EntryPlugin turns every named build entry into a virtual module that imports
// its source files in order, so one entry may list several sources.
type EntryPlugin struct {
	Entries    map[string][]string
	ResolveDir string
}

func EntryInput(name string) string {
	return EntryNamespace + ":" + name
}

func (p *EntryPlugin) New() api.Plugin {
	return api.Plugin{
		Name: "cdn-entry",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + EntryNamespace + ":"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				name := strings.TrimPrefix(args.Path, EntryNamespace+":")
				if _, ok := p.Entries[name]; !ok {
					return api.OnResolveResult{}, fmt.Errorf("unknown entry %q", name)
				}
				return api.OnResolveResult{Path: name, Namespace: EntryNamespace}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: EntryNamespace}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				contents := EntryContents(p.Entries[args.Path])
				return api.OnLoadResult{
					Contents:   &contents,
					ResolveDir: p.ResolveDir,
					Loader:     api.LoaderJS,
				}, nil
			})
		},
	}
}

// EntryContents is the source of a virtual entry module.
func EntryContents(sources []string) string {
	var b strings.Builder
	for _, src := range sources {
		if !filepath.IsAbs(src) && !strings.HasPrefix(src, ".") {
			src = "./" + src
		}
		quoted, _ := json.Marshal(filepath.ToSlash(src))
		fmt.Fprintf(&b, "import %s;\n", quoted)
	}
	return b.String()
}
