// Package html writes the pages of a build, loading the external libraries,
// the entry bundles and any extra tags configured for the project.
package html

import (
	"fmt"
	"maps"
	"slices"

	"golang.org/x/net/html"
)

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body>
<div id="root"></div>
</body>
</html>
`

// Page is one HTML file to generate.
type Page struct {
	// Filename is the output path relative to the output directory.
	Filename string `json:"filename" toml:"filename"`
	// Template is an HTML file relative to the project root. A minimal page
	// is used when empty.
	Template string `json:"template" toml:"template"`
	// Entry names the build entry the page loads. Every entry is loaded when
	// empty.
	Entry string `json:"entry" toml:"entry"`
	Title string `json:"title" toml:"title"`
}

func (p Page) filename() string {
	if p.Filename != "" {
		return p.Filename
	}
	if p.Entry != "" {
		return p.Entry + ".html"
	}
	return "index.html"
}

// DefaultPages returns one index.html for a single entry build, or one page
// per entry named after it.
func DefaultPages(entries map[string][]string) []Page {
	if len(entries) <= 1 {
		for name := range entries {
			return []Page{{Filename: "index.html", Entry: name}}
		}
		return []Page{{Filename: "index.html"}}
	}

	pages := make([]Page, 0, len(entries))
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		pages = append(pages, Page{Filename: name + ".html", Entry: name})
	}
	return pages
}

func defaultPage(title string) string {
	if title == "" {
		title = "App"
	}
	return fmt.Sprintf(defaultTemplate, html.EscapeString(title))
}
