package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"micromachine.dev/cdn-externals/lib/externals"
	"micromachine.dev/cdn-externals/lib/utils"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [entry...]",
	Short: "Prints the CDN resources of each entry as JSON",
	Long: `The resolve command bundles the project in memory and prints, for every entry
(or the entries given as arguments), the scripts and stylesheets its pages load,
without writing any file.`,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := loadSettings(cmd)
		if err != nil {
			utils.LogWithColor(utils.Fail, fmt.Sprintf("✗ %v", err))
			os.Exit(1)
		}

		p := newPipeline(s)
		if err := p.run(cmd.Context(), false); err != nil {
			utils.LogWithColor(utils.Fail, fmt.Sprintf("✗ %v", err))
			os.Exit(1)
		}

		names := args
		if len(names) == 0 {
			names = p.result.EntryNames()
		}
		resources := make(map[string]externals.EntryAssets, len(names))
		for _, name := range names {
			if _, ok := s.Config.Entry[name]; !ok {
				utils.LogWithColor(utils.Fail, fmt.Sprintf("✗ Unknown entry %q", name))
				os.Exit(1)
			}
			resources[name] = p.session.Resources(p.result.Graph, name)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(resources); err != nil {
			utils.LogWithColor(utils.Fail, fmt.Sprintf("✗ %v", err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	addBuildFlags(resolveCmd.Flags())
}
