package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"micromachine.dev/cdn-externals/lib/html"
	"micromachine.dev/cdn-externals/lib/utils"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Bundles the entries and writes their HTML pages",
	Long: `The build command prepares the application for deployment.
It performs the following steps:
1. Reads cdn-externals.{toml,json,jsonc}, the project's package.json and the
   metadata shipped with the main library in node_modules.
2. Bundles every entry with esbuild, replacing external libraries with globals.
3. Resolves the CDN scripts and stylesheets each entry needs.
4. Writes one HTML page per entry loading them before the bundle.`,
	Run: func(cmd *cobra.Command, args []string) {
		start := time.Now()
		utils.LogWithColor(utils.Cyan, "Running `cdn-externals build`...")

		s, err := loadSettings(cmd)
		if err != nil {
			utils.LogWithColor(utils.Fail, fmt.Sprintf("✗ %v", err))
			os.Exit(1)
		}

		p := newPipeline(s)
		if err := p.run(cmd.Context(), true); err != nil {
			utils.LogWithColor(utils.Fail, fmt.Sprintf("✗ %v", err))
			os.Exit(1)
		}

		pages := s.Config.Pages
		if len(pages) == 0 {
			pages = html.DefaultPages(s.Config.Entry)
		}
		injector := html.Injector{
			RootDir:    s.Root,
			OutDir:     p.outDir(),
			Session:    p.session,
			Graph:      p.result.Graph,
			Bundles:    p.result.Outputs,
			PublicPath: s.Config.PublicPath,
			Log:        p.log,
		}
		if err := injector.WritePages(pages); err != nil {
			utils.LogWithColor(utils.Fail, fmt.Sprintf("✗ %v", err))
			os.Exit(1)
		}

		elapsed := time.Since(start)
		utils.LogWithColor(utils.Success, fmt.Sprintf("✓ Completed `cdn-externals build` in %s", elapsed))
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	addBuildFlags(buildCmd.Flags())
	buildCmd.Flags().StringP("outdir", "o", "", "--outdir ./dist")
	buildCmd.Flags().String("public-path", "", "--public-path /static/")
}
