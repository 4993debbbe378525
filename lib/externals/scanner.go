package externals

import (
	"regexp"
	"slices"
	"strings"
)

// Pending holds the main library chunks not yet found in an entry, in
// declaration order.
type Pending struct {
	chunks []*Chunk
}

func NewPending(chunks ...*Chunk) *Pending {
	return &Pending{chunks: slices.Clone(chunks)}
}

func (p *Pending) Add(c *Chunk) {
	p.chunks = append(p.chunks, c)
}

func (p *Pending) Len() int {
	return len(p.chunks)
}

func (p *Pending) Names() []string {
	names := make([]string, 0, len(p.chunks))
	for _, c := range p.chunks {
		names = append(names, c.Name)
	}
	return names
}

// take removes every chunk whose pattern matches text and reports it through
// emit, in declaration order.
func (p *Pending) take(text string, pattern func(members string) *regexp.Regexp, emit func(*Chunk)) {
	p.chunks = slices.DeleteFunc(p.chunks, func(c *Chunk) bool {
		if !pattern(memberAlternation(c.Modules)).MatchString(text) {
			return false
		}
		emit(c)
		return true
	})
}

func memberAlternation(members []string) string {
	quoted := make([]string, len(members))
	for i, m := range members {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return strings.Join(quoted, "|")
}

// Scanner finds the pending chunks used by one module source.
type Scanner interface {
	Scan(source string, pending *Pending, emit func(*Chunk))
}

// NewScanner returns the scanner for sources that bind the main library with
// require calls when commonJS is set, or with import declarations otherwise.
func NewScanner(main string, commonJS bool) Scanner {
	quoted := regexp.QuoteMeta(main)
	if commonJS {
		return &callFormScanner{
			binding: regexp.MustCompile(`(^|\s+)(?:var|let|const)\s+(\w+)\s*=\s*(?:__toESM\()?require\(["']` + quoted + `["']\)`),
		}
	}
	return &importFormScanner{
		list: regexp.MustCompile(`(^|\s+)import\s+[\w,\s]*\{([^}]+)?\}\s*from\s*["']` + quoted + `["'];*`),
	}
}

// callFormScanner matches "<alias>.<Member>" anywhere in the source, where
// alias is bound to require("<main>").
type callFormScanner struct {
	binding *regexp.Regexp
}

func (sc *callFormScanner) Scan(source string, pending *Pending, emit func(*Chunk)) {
	m := sc.binding.FindStringSubmatch(source)
	if m == nil || m[2] == "" {
		return
	}
	alias := regexp.QuoteMeta(m[2])
	pending.take(source, func(members string) *regexp.Regexp {
		return regexp.MustCompile(alias + `(\.Validator)?\.(` + members + `)`)
	}, emit)
}

// importFormScanner matches members inside the braces of
// `import { ... } from "<main>"`. Only the brace contents are searched.
type importFormScanner struct {
	list *regexp.Regexp
}

func (sc *importFormScanner) Scan(source string, pending *Pending, emit func(*Chunk)) {
	m := sc.list.FindStringSubmatch(source)
	if m == nil || m[2] == "" {
		return
	}
	pending.take(m[2], func(members string) *regexp.Regexp {
		return regexp.MustCompile(`(` + members + `)\s*(,|$)`)
	}, emit)
}
