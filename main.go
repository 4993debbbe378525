/*
Copyright © 2026 Micromachine
*/
package main

import (
	"log/slog"

	"micromachine.dev/cdn-externals/cmd"
	"micromachine.dev/cdn-externals/lib/utils"
)

func main() {
	slog.SetDefault(slog.New(utils.NewColorHandler(nil)))
	cmd.Execute()
}
