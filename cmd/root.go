package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"micromachine.dev/cdn-externals/lib/utils"
)

// Version is set at link time by the release build.
var Version = "dev"

var rootDir string
var configPath string
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cdn-externals",
	Short: "Bundles a web application and loads its shared libraries from a CDN",
	Long: `cdn-externals bundles the entries of a web application with esbuild, leaving
the configured external libraries out of the bundles. Every generated page loads
those libraries from the asset host at the versions the project is built against,
together with the chunks of the main UI library each entry actually uses.`,
	SilenceUsage: true,
	Version:      Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			slog.SetDefault(slog.New(utils.NewColorHandler(slog.LevelDebug)))
		}
	},
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "rootdir", "r", ".", "--rootdir ./apps/web")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "--config ./cdn-externals.toml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
}
