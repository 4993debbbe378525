package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const binName = "cdn-externals"

var targets = []struct {
	GOOS   string
	GOARCH string
	NPMPkg string
}{
	{"darwin", "arm64", "darwin-arm64"},
	{"darwin", "amd64", "darwin-x64"},
	{"linux", "arm64", "linux-arm64"},
	{"linux", "amd64", "linux-x64"},
	{"windows", "amd64", "win32-x64"},
}

// publish cross-compiles the CLI into the per-platform npm packages that the
// cdn-externals npm wrapper depends on.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: go run ./publish <version>")
		os.Exit(2)
	}
	version := os.Args[1]

	for _, t := range targets {
		fmt.Printf("Building %s/%s...\n", t.GOOS, t.GOARCH)

		name := binName
		if t.GOOS == "windows" {
			name += ".exe"
		}

		outDir := filepath.Join("npm", "@micromachine.dev", binName+"-"+t.NPMPkg, "bin")
		if err := os.MkdirAll(outDir, 0755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		cmd := exec.Command("go", "build",
			"-ldflags", fmt.Sprintf("-s -w -X micromachine.dev/cdn-externals/cmd.Version=%s", version),
			"-o", filepath.Join(outDir, name),
			"./main.go",
		)
		cmd.Env = append(os.Environ(),
			"GOOS="+t.GOOS,
			"GOARCH="+t.GOARCH,
			"CGO_ENABLED=0",
		)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "build %s/%s: %v\n", t.GOOS, t.GOARCH, err)
			os.Exit(1)
		}
	}
}
