package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"micromachine.dev/cdn-externals/lib/config"
	"micromachine.dev/cdn-externals/lib/externals"
	"micromachine.dev/cdn-externals/lib/utils"
)

// EnvPrefix prefixes the environment variables overriding flags, e.g.
// CDN_EXTERNALS_PREFIX_URL for --prefix-url.
const EnvPrefix = "CDN_EXTERNALS"

// settings is the project configuration with flags and environment applied.
type settings struct {
	Root   string
	Path   string
	Config *config.Config
}

func addBuildFlags(flags *pflag.FlagSet) {
	flags.BoolP("debug", "d", false, "load development builds of the external libraries")
	flags.StringP("mode", "m", "", "--mode chunk|one")
	flags.String("prefix-url", "", "--prefix-url https://cdn.example.com/libs/")
	flags.String("theme", "", "--theme dark")
	flags.StringP("env", "e", "", "--env production")
}

// loadSettings layers the project file, the .env file of the project,
// environment variables and flags, later ones winning.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(v.GetString("rootdir"))
	if err != nil {
		return nil, fmt.Errorf("could not resolve absolute path: %w", err)
	}

	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("invalid .env file: %w", err)
	}

	s := &settings{Root: root}
	if path := v.GetString("config"); path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		s.Config, err = config.Read(path)
		s.Path = path
	} else {
		s.Config, s.Path, err = config.Load(root)
		if errors.Is(err, utils.ErrConfigNotFound) {
			utils.LogWithColor(utils.Muted, fmt.Sprintf("No %s file found, using defaults", config.FileName))
			s.Config, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	applyOverrides(v, s.Config)
	return s, nil
}

func applyOverrides(v *viper.Viper, c *config.Config) {
	if v.IsSet("debug") {
		c.Options.Debug = v.GetBool("debug")
	}
	if v.IsSet("mode") {
		c.Options.Mode = externals.Mode(v.GetString("mode"))
	}
	if v.IsSet("prefix-url") {
		c.Options.PrefixURL = v.GetString("prefix-url")
	}
	if v.IsSet("theme") {
		c.Options.Theme = v.GetString("theme")
	}
	if v.IsSet("env") {
		c.Environment = v.GetString("env")
	}
	if v.IsSet("outdir") {
		c.OutDir = v.GetString("outdir")
	}
	if v.IsSet("public-path") {
		c.PublicPath = v.GetString("public-path")
	}
}
