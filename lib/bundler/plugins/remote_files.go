package plugins

import (
	"github.com/evanw/esbuild/pkg/api"
)

// RemoteFilePlugin keeps references to files on other hosts, such as fonts or
// stylesheets imported from a CDN, out of the bundle.
type RemoteFilePlugin struct{}

func (p *RemoteFilePlugin) New() api.Plugin {
	return api.Plugin{
		Name: "remote-files",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `^(https?:)?//`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				return api.OnResolveResult{
					Path:     args.Path,
					External: true,
				}, nil
			})
		},
	}
}
