package html

import (
	"fmt"
	"maps"
	"slices"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"micromachine.dev/cdn-externals/lib/externals"
)

func scriptNode(src string, attrs map[string]any) *html.Node {
	return element(atom.Script, []html.Attribute{{Key: "src", Val: src}}, attrs)
}

func linkNode(href string, attrs map[string]any) *html.Node {
	return element(atom.Link, []html.Attribute{{Key: "href", Val: href}, {Key: "rel", Val: "stylesheet"}}, attrs)
}

// metaNode uses the descriptor path, when set, as the content attribute.
func metaNode(d *externals.Descriptor) *html.Node {
	var base []html.Attribute
	if d.Path != "" {
		base = append(base, html.Attribute{Key: "content", Val: d.Path})
	}
	return element(atom.Meta, base, d.Attributes)
}

// element builds a tag whose base attributes are overridden by attrs. A true
// value renders as a bare attribute; false and nil drop it.
func element(a atom.Atom, base []html.Attribute, attrs map[string]any) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}

	for _, attr := range base {
		if _, overridden := attrs[attr.Key]; !overridden {
			n.Attr = append(n.Attr, attr)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(attrs)) {
		switch v := attrs[key].(type) {
		case nil:
		case bool:
			if v {
				n.Attr = append(n.Attr, html.Attribute{Key: key})
			}
		default:
			n.Attr = append(n.Attr, html.Attribute{Key: key, Val: fmt.Sprint(v)})
		}
	}
	return n
}
