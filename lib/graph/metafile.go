package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Metafile is the subset of esbuild's JSON metafile the graph is built from.
type Metafile struct {
	Inputs  map[string]MetafileInput  `json:"inputs"`
	Outputs map[string]MetafileOutput `json:"outputs"`
}

type MetafileInput struct {
	Bytes   int              `json:"bytes"`
	Imports []MetafileImport `json:"imports"`
	Format  string           `json:"format,omitempty"`
}

type MetafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
	Original string `json:"original,omitempty"`
}

type MetafileOutput struct {
	Bytes      int              `json:"bytes"`
	Imports    []MetafileImport `json:"imports"`
	Exports    []string         `json:"exports"`
	EntryPoint string           `json:"entryPoint,omitempty"`
	CSSBundle  string           `json:"cssBundle,omitempty"`
}

func ParseMetafile(data []byte) (*Metafile, error) {
	var meta Metafile
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("invalid metafile: %w", err)
	}
	return &meta, nil
}

// OutputsFor returns the output paths generated for the entry point input,
// sorted by path.
func (m *Metafile) OutputsFor(input string) []string {
	var out []string
	for path, output := range m.Outputs {
		if output.EntryPoint == input {
			out = append(out, path)
			if output.CSSBundle != "" {
				out = append(out, output.CSSBundle)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

type MetafileOptions struct {
	// Entries maps metafile input paths to build entry names.
	Entries map[string]string
	// Request maps an import recorded by esbuild to the specifier exposed on the
	// module graph, and whether that import leaves the bundle. When nil the
	// import's Original specifier is used, falling back to its Path.
	Request func(imp MetafileImport) (request string, external bool)
	Source  SourceFunc
}

// FromMetafile builds a graph by walking the metafile imports depth first from
// each entry, entries taken in name order. Inputs never reached from an entry
// are appended last in path order.
func FromMetafile(meta *Metafile, opts MetafileOptions) *Graph {
	request := opts.Request
	if request == nil {
		request = defaultRequest
	}

	inputs := slices.Sorted(maps.Keys(opts.Entries))
	slices.SortStableFunc(inputs, func(a, b string) int {
		return strings.Compare(opts.Entries[a], opts.Entries[b])
	})

	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if !slices.Contains(names, opts.Entries[in]) {
			names = append(names, opts.Entries[in])
		}
	}
	g := New(names, opts.Source)

	visited := make(map[string]bool, len(meta.Inputs))
	var walk func(m *Module)
	walk = func(m *Module) {
		if visited[m.Resource] {
			return
		}
		visited[m.Resource] = true

		for _, imp := range meta.Inputs[m.Resource].Imports {
			req, external := request(imp)
			if external || imp.External {
				g.LinkExternal(m, req, imp.Kind)
				continue
			}
			child := g.Add(imp.Path, isFileInput(imp.Path))
			g.Link(m, child, req, imp.Kind)
			walk(child)
		}
	}

	for _, in := range inputs {
		entry := g.AddEntry(in, opts.Entries[in])
		entry.Normal = isFileInput(in)
		walk(entry)
	}
	for _, in := range slices.Sorted(maps.Keys(meta.Inputs)) {
		if !visited[in] {
			walk(g.Add(in, isFileInput(in)))
		}
	}
	return g
}

func defaultRequest(imp MetafileImport) (string, bool) {
	if imp.Original != "" {
		return imp.Original, imp.External
	}
	return imp.Path, imp.External
}

// esbuild prefixes inputs outside the file namespace with "namespace:".
func isFileInput(path string) bool {
	ns, _, found := strings.Cut(path, ":")
	return !found || len(ns) == 1
}
