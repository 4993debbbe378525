package externals

import "micromachine.dev/cdn-externals/lib/graph"

// BelongsToEntry reports whether m is reachable from the named entry by
// following its importers up the graph.
func (s *Session) BelongsToEntry(g *graph.Graph, m *graph.Module, entry string) bool {
	if entry == "" || s.opts.SkipFindEntry {
		return true
	}
	if g == nil || g.EntryCount() <= 1 {
		return true
	}
	return s.findEntry(m, entry, map[*graph.Module]bool{}, map[string]bool{})
}

// findEntry walks importers depth first. Shared modules (two or more
// importers) are only entered once per search when SkipCircularReference is
// set; otherwise a module is only skipped while it is on the current path, so
// every acyclic path is still tried.
func (s *Session) findEntry(m *graph.Module, entry string, onPath map[*graph.Module]bool, visited map[string]bool) bool {
	if m == nil || onPath[m] {
		return false
	}
	onPath[m] = true
	defer delete(onPath, m)

	if len(m.Reasons) > 1 {
		if s.opts.skipCircularReference() && m.Resource != "" {
			if visited[m.Resource] {
				return false
			}
			visited[m.Resource] = true
		}
		if s.opts.DebugFindEntry {
			s.log.Info("Searching entry through shared module", "resource", m.Resource, "entry", entry)
		}
		for _, reason := range m.Reasons {
			if s.findEntry(reason, entry, onPath, visited) {
				return true
			}
		}
		return false
	}

	if m.Issuer != nil {
		return s.findEntry(m.Issuer, entry, onPath, visited)
	}
	return m.Name != "" && m.Name == entry
}
