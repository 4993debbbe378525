package externals

import (
	"bytes"
	"log/slog"
	"testing"

	"micromachine.dev/cdn-externals/lib/utils"
)

const testPrefix = "https://cdn.test/"

func testLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func testOptions() Options {
	return Options{PrefixURL: testPrefix}
}

func pkg(version string, deps, devDeps map[string]string) *utils.PackageJSON {
	return &utils.PackageJSON{Version: version, Dependencies: deps, DevDependencies: devDeps}
}

// mainProject externalizes the main library at version plus react.
func mainProject(version string) *Project {
	return &Project{
		Externals: Externals{
			{Name: "pandora", Global: "pandora"},
			{Name: "react", Global: "React"},
		},
		Package:     pkg("1.0.0", map[string]string{"pandora": version, "react": "16.14.0"}, nil),
		MainName:    "pandora",
		MainPackage: pkg(version, map[string]string{"react": "16.14.0"}, nil),
		PathConfig:  map[string]string{},
	}
}
