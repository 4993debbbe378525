package externals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"micromachine.dev/cdn-externals/lib/graph"
)

func boolPtr(v bool) *bool { return &v }

func TestBelongsToEntrySingleEntry(t *testing.T) {
	log, _ := testLogger(t)
	s := NewSession(&Project{}, testOptions(), log)

	g := graph.New([]string{"main"}, nil)
	orphan := g.Add("src/orphan.js", true)

	assert.True(t, s.BelongsToEntry(g, orphan, "main"))
	assert.True(t, s.BelongsToEntry(g, orphan, "other"))
}

func TestBelongsToEntryShortCircuits(t *testing.T) {
	g := graph.New([]string{"a", "b"}, nil)
	orphan := g.Add("src/orphan.js", true)

	log, _ := testLogger(t)
	s := NewSession(&Project{}, testOptions(), log)
	assert.True(t, s.BelongsToEntry(g, orphan, ""))

	opts := testOptions()
	opts.SkipFindEntry = true
	s = NewSession(&Project{}, opts, log)
	assert.True(t, s.BelongsToEntry(g, orphan, "a"))
}

func TestBelongsToEntryIssuerChain(t *testing.T) {
	g := graph.New([]string{"A", "B"}, nil)
	a := g.AddEntry("entry:A", "A")
	g.AddEntry("entry:B", "B")
	x := g.Add("src/x.js", true)
	m := g.Add("src/m.js", true)
	g.Link(a, x, "./x", "import-statement")
	g.Link(x, m, "./m", "import-statement")

	log, _ := testLogger(t)
	s := NewSession(&Project{}, testOptions(), log)

	assert.True(t, s.BelongsToEntry(g, m, "A"))
	assert.False(t, s.BelongsToEntry(g, m, "B"))
}

func TestBelongsToEntrySharedModule(t *testing.T) {
	g := graph.New([]string{"A", "B", "C"}, nil)
	a := g.AddEntry("entry:A", "A")
	b := g.AddEntry("entry:B", "B")
	g.AddEntry("entry:C", "C")
	shared := g.Add("src/shared.js", true)
	g.Link(a, shared, "./shared", "import-statement")
	g.Link(b, shared, "./shared", "import-statement")

	log, buf := testLogger(t)
	opts := testOptions()
	opts.DebugFindEntry = true
	s := NewSession(&Project{}, opts, log)

	assert.True(t, s.BelongsToEntry(g, shared, "A"))
	assert.True(t, s.BelongsToEntry(g, shared, "B"))
	assert.False(t, s.BelongsToEntry(g, shared, "C"))
	assert.Contains(t, buf.String(), "src/shared.js")
}

// cycleGraph: A -> s -> c1 <-> c2, with m imported by both c1 and c2.
func cycleGraph() (*graph.Graph, *graph.Module) {
	g := graph.New([]string{"A", "B"}, nil)
	a := g.AddEntry("entry:A", "A")
	g.AddEntry("entry:B", "B")
	s := g.Add("src/s.js", true)
	c1 := g.Add("src/c1.js", true)
	c2 := g.Add("src/c2.js", true)
	m := g.Add("src/m.js", true)
	g.Link(a, s, "./s", "import-statement")
	g.Link(s, c1, "./c1", "import-statement")
	g.Link(c1, c2, "./c2", "import-statement")
	g.Link(c2, c1, "./c1", "import-statement")
	g.Link(c1, m, "./m", "import-statement")
	g.Link(c2, m, "./m", "import-statement")
	return g, m
}

func TestBelongsToEntryCycle(t *testing.T) {
	for _, skip := range []bool{true, false} {
		opts := testOptions()
		opts.SkipCircularReference = boolPtr(skip)
		log, _ := testLogger(t)
		s := NewSession(&Project{}, opts, log)
		g, m := cycleGraph()

		assert.True(t, s.BelongsToEntry(g, m, "A"), "skipCircularReference=%v", skip)
		assert.False(t, s.BelongsToEntry(g, m, "B"), "skipCircularReference=%v", skip)
	}
}

func TestBelongsToEntryIssuerCycle(t *testing.T) {
	g := graph.New([]string{"A", "B"}, nil)
	g.AddEntry("entry:A", "A")
	g.AddEntry("entry:B", "B")
	x := g.Add("src/x.js", true)
	y := g.Add("src/y.js", true)
	g.Link(x, y, "./y", "import-statement")
	g.Link(y, x, "./x", "import-statement")

	log, _ := testLogger(t)
	s := NewSession(&Project{}, testOptions(), log)

	assert.False(t, s.BelongsToEntry(g, y, "A"))
}
