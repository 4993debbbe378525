package externals

import (
	"fmt"

	"micromachine.dev/cdn-externals/lib/graph"
)

// preferredOrder lists libraries that must load before the others, in load
// order.
var preferredOrder = []string{"core-js", "@babel/polyfill", "react", "react-dom", "i18next", "mobx", "mobx-react", "jquery", "lodash"}

// Resources resolves the scripts and stylesheets to load for entry. g may be
// nil, in which case no optional chunk is detected.
func (s *Session) Resources(g *graph.Graph, entry string) EntryAssets {
	var assets EntryAssets

	if s.MainEnabled() {
		assets.CSS = appendDescriptor(assets.CSS, s.MainStylesheet(s.mainGlobal()))
	}

	assets.Scripts = s.externalScripts()

	if !s.MainEnabled() {
		return assets
	}

	if s.opts.Mode == ModeOne || s.chunks == nil {
		assets.Scripts = appendDescriptor(assets.Scripts, s.MainScript(s.mainGlobal()))
		return assets
	}

	for _, name := range s.chunks.SharedChunks() {
		assets.Scripts = appendDescriptor(assets.Scripts, s.MainScript(name))
	}

	pending := NewPending()
	for _, c := range s.chunks.Chunks {
		if c == nil {
			continue
		}
		if len(c.Modules) > 0 {
			pending.Add(c)
			continue
		}
		assets.Scripts = appendDescriptor(assets.Scripts, s.MainScript(c.Name))
	}

	if pending.Len() == 0 || g == nil {
		return assets
	}
	emit := func(c *Chunk) {
		assets.Scripts = appendDescriptor(assets.Scripts, s.MainScript(c.Name))
	}
	for _, m := range g.Modules {
		if !m.Normal || !m.DependsOn(s.project.MainName) || !s.BelongsToEntry(g, m, entry) {
			continue
		}
		source, err := g.Source(m)
		if err != nil {
			s.log.Warn(fmt.Sprintf("Cannot read the source of %s: %v", m.Resource, err))
			continue
		}
		s.scanner.Scan(source, pending, emit)
		if pending.Len() == 0 {
			break
		}
	}
	return assets
}

// externalScripts resolves every externalized library except the main one:
// preferred libraries first, then the rest in declaration order.
func (s *Session) externalScripts() []*Descriptor {
	if len(s.project.Externals) == 0 {
		return nil
	}

	externals := s.project.Externals
	if s.MainEnabled() && len(s.project.MainExternals) > 0 {
		externals = s.project.MainExternals.Merge(externals)
	}

	var scripts []*Descriptor
	done := make(map[string]bool, len(externals))
	for _, name := range preferredOrder {
		if externals.Has(name) {
			scripts = appendDescriptor(scripts, s.ExternalScript(name))
			done[name] = true
		}
	}
	for _, ext := range externals {
		if done[ext.Name] || ext.Name == s.project.MainName {
			continue
		}
		scripts = appendDescriptor(scripts, s.ExternalScript(ext.Name))
	}
	return scripts
}

func appendDescriptor(list []*Descriptor, d *Descriptor) []*Descriptor {
	if d == nil {
		return list
	}
	return append(list, d)
}
