package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"micromachine.dev/cdn-externals/lib/bundler"
	"micromachine.dev/cdn-externals/lib/externals"
	"micromachine.dev/cdn-externals/lib/utils"
)

const integrityTimeout = 30 * time.Second

// pipeline is one build of a project: its loaded metadata, the resolution
// session and the bundler result.
type pipeline struct {
	settings *settings
	log      *slog.Logger
	project  *externals.Project
	session  *externals.Session
	result   *bundler.Result
}

func newPipeline(s *settings) *pipeline {
	return &pipeline{
		settings: s,
		log:      slog.Default().With("plugin", "cdn-externals"),
	}
}

func (p *pipeline) run(ctx context.Context, write bool) error {
	c := p.settings.Config
	c.Options.Normalize(p.log)

	project, err := externals.LoadProject(p.settings.Root, c.Entry, c.Externals, c.Options, p.log)
	if err != nil {
		if errors.Is(err, externals.ErrNotInstalled) {
			return fmt.Errorf("%w. %s", err, utils.InstallHint(p.settings.Root))
		}
		return err
	}
	p.project = project
	p.session = externals.NewSession(project, c.Options, p.log)

	fetchCtx, cancel := context.WithTimeout(ctx, integrityTimeout)
	defer cancel()
	p.session.FetchIntegrity(fetchCtx, &http.Client{})

	b := bundler.Bundle{
		RootDir:     p.settings.Root,
		OutDir:      c.OutDir,
		Entries:     c.Entry,
		Externals:   c.Externals,
		Environment: c.Environment,
		Debug:       p.session.Options().Debug,
		Write:       write,
		CommonJS:    project.CommonJS,
	}
	p.result, err = b.Build()
	if err != nil {
		return err
	}
	return nil
}

// outDir returns the absolute output directory.
func (p *pipeline) outDir() string {
	b := bundler.Bundle{OutDir: p.settings.Config.OutDir}
	return b.GetOutputDir(p.settings.Root)
}
