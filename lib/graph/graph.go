// Package graph is a read-only view of a compiled module graph: which module
// imports which, which build entry a module was reached from, and the source
// text of each module.
package graph

import (
	"errors"
	"slices"
)

var ErrNoSource = errors.New("graph: module has no source")

// Dependency is an outgoing import edge of a module.
type Dependency struct {
	// Request is the import specifier as written in the source, e.g. "react".
	Request  string
	Kind     string
	External bool
}

// Module is a node of the graph.
type Module struct {
	// Resource identifies the module. It is empty for synthetic modules.
	Resource string
	// Name is set on entry modules to the build entry name.
	Name string
	// Normal is true when the module is backed by a source file.
	Normal bool

	// Reasons are the modules importing this one, in discovery order.
	Reasons []*Module
	// Issuer is the module that first imported this one. Entry modules have none.
	Issuer *Module

	Dependencies []Dependency
}

// DependsOn reports whether m imports request directly.
func (m *Module) DependsOn(request string) bool {
	if m == nil {
		return false
	}
	for _, dep := range m.Dependencies {
		if dep.Request == request {
			return true
		}
	}
	return false
}

// SourceFunc loads the source text of a module.
type SourceFunc func(m *Module) (string, error)

type Graph struct {
	// Modules in discovery order.
	Modules []*Module
	// Entries are the build entry names.
	Entries []string

	byResource map[string]*Module
	source     SourceFunc
}

func New(entries []string, source SourceFunc) *Graph {
	return &Graph{
		Entries:    slices.Clone(entries),
		byResource: make(map[string]*Module),
		source:     source,
	}
}

// Module returns the module registered under resource, or nil.
func (g *Graph) Module(resource string) *Module {
	return g.byResource[resource]
}

// Add returns the module for resource, registering it on first use.
func (g *Graph) Add(resource string, normal bool) *Module {
	if m, ok := g.byResource[resource]; ok {
		return m
	}
	m := &Module{Resource: resource, Normal: normal}
	g.byResource[resource] = m
	g.Modules = append(g.Modules, m)
	return m
}

// AddEntry registers resource as the entry module of the named entry.
func (g *Graph) AddEntry(resource, name string) *Module {
	m := g.Add(resource, false)
	m.Name = name
	m.Issuer = nil
	if !slices.Contains(g.Entries, name) {
		g.Entries = append(g.Entries, name)
	}
	return m
}

// Link records that from imports to through request.
func (g *Graph) Link(from, to *Module, request, kind string) {
	from.Dependencies = append(from.Dependencies, Dependency{Request: request, Kind: kind})
	if !slices.Contains(to.Reasons, from) {
		to.Reasons = append(to.Reasons, from)
	}
	if to.Issuer == nil && to.Name == "" {
		to.Issuer = from
	}
}

// LinkExternal records an import of a module left out of the bundle.
func (g *Graph) LinkExternal(from *Module, request, kind string) {
	from.Dependencies = append(from.Dependencies, Dependency{Request: request, Kind: kind, External: true})
}

func (g *Graph) EntryCount() int {
	return len(g.Entries)
}

// Source returns the source text of m.
func (g *Graph) Source(m *Module) (string, error) {
	if g.source == nil || m == nil {
		return "", ErrNoSource
	}
	return g.source(m)
}
