package html

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"micromachine.dev/cdn-externals/lib/externals"
	"micromachine.dev/cdn-externals/lib/graph"
)

var ErrNoHead = errors.New("template has no <head> or <body>")

// Injector renders pages for one build.
type Injector struct {
	RootDir string
	OutDir  string
	Session *externals.Session
	Graph   *graph.Graph
	// Bundles maps an entry name to its emitted files, relative to OutDir.
	Bundles map[string][]string
	// PublicPath prefixes the references to emitted bundles.
	PublicPath string
	// Log defaults to the session logger.
	Log *slog.Logger
}

// Tags are the elements injected into a page, in document order.
type Tags struct {
	Metas   []*html.Node
	Links   []*html.Node
	Scripts []*html.Node
}

// WritePages renders every page into OutDir.
func (in *Injector) WritePages(pages []Page) error {
	for _, page := range pages {
		data, err := in.Render(page)
		if err != nil {
			return fmt.Errorf("%s: %w", page.filename(), err)
		}
		target := filepath.Join(in.OutDir, filepath.FromSlash(page.filename()))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the page with every tag injected.
func (in *Injector) Render(page Page) ([]byte, error) {
	source, err := in.template(page)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	tags, err := in.Tags(page)
	if err != nil {
		return nil, err
	}

	head := findElement(doc, atom.Head)
	body := findElement(doc, atom.Body)
	if head == nil || body == nil {
		return nil, ErrNoHead
	}
	for _, n := range tags.Metas {
		head.AppendChild(n)
	}
	for _, n := range tags.Links {
		head.AppendChild(n)
	}
	for _, n := range tags.Scripts {
		body.AppendChild(n)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Tags resolves the elements of page. Local files referenced by extra tags
// are copied into OutDir, which is the only failure.
func (in *Injector) Tags(page Page) (*Tags, error) {
	tags := &Tags{}
	js, css := in.bundleFiles(page.Entry)

	if in.excluded(page.filename()) {
		for _, p := range css {
			tags.Links = append(tags.Links, linkNode(p, nil))
		}
		for _, p := range js {
			tags.Scripts = append(tags.Scripts, scriptNode(p, nil))
		}
		return tags, nil
	}

	in.checkEntry(page.Entry)

	opts := in.Session.Options()
	assets := in.Session.Resources(in.Graph, page.Entry)

	for _, d := range slices.Concat(opts.ScriptsPrepend, opts.ScriptsAppend, opts.LinksPrepend, opts.LinksAppend, opts.Metas) {
		if err := in.addAsset(d); err != nil {
			return nil, err
		}
	}

	for _, d := range opts.Metas {
		tags.Metas = append(tags.Metas, metaNode(d))
	}

	for _, d := range opts.LinksPrepend {
		tags.Links = append(tags.Links, linkNode(d.Path, d.Attributes))
	}
	for _, d := range assets.CSS {
		tags.Links = append(tags.Links, linkNode(d.Path, in.stylesheetAttributes(d.Path)))
	}
	for _, p := range css {
		tags.Links = append(tags.Links, linkNode(p, in.stylesheetAttributes(p)))
	}
	for _, d := range opts.LinksAppend {
		tags.Links = append(tags.Links, linkNode(d.Path, d.Attributes))
	}

	for _, d := range opts.ScriptsPrepend {
		tags.Scripts = append(tags.Scripts, scriptNode(d.Path, d.Attributes))
	}
	for _, d := range assets.Scripts {
		tags.Scripts = append(tags.Scripts, scriptNode(d.Path, in.scriptAttributes(d.Path)))
	}
	for _, p := range js {
		tags.Scripts = append(tags.Scripts, scriptNode(p, in.scriptAttributes(p)))
	}
	for _, d := range opts.ScriptsAppend {
		tags.Scripts = append(tags.Scripts, scriptNode(d.Path, d.Attributes))
	}

	return tags, nil
}

func (in *Injector) template(page Page) (string, error) {
	if page.Template == "" {
		return defaultPage(page.Title), nil
	}
	p := page.Template
	if !filepath.IsAbs(p) {
		p = filepath.Join(in.RootDir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("cannot read template: %w", err)
	}
	return string(data), nil
}

// bundleFiles returns the emitted scripts and stylesheets of entry, or of
// every entry when it is empty.
func (in *Injector) bundleFiles(entry string) (js, css []string) {
	names := []string{entry}
	if entry == "" {
		names = slices.Sorted(maps.Keys(in.Bundles))
	}
	for _, name := range names {
		for _, file := range in.Bundles[name] {
			switch path.Ext(file) {
			case ".js":
				js = append(js, in.PublicPath+file)
			case ".css":
				css = append(css, in.PublicPath+file)
			}
		}
	}
	return js, css
}

func (in *Injector) excluded(filename string) bool {
	for _, pattern := range in.Session.Options().Exclude {
		matched, err := path.Match(pattern, filepath.ToSlash(filename))
		if err != nil {
			in.log().Warn(fmt.Sprintf("options.exclude has an invalid pattern %q", pattern))
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func (in *Injector) checkEntry(entry string) {
	if len(in.Bundles) <= 1 {
		return
	}
	if entry == "" {
		in.log().Warn("Please give an entry name to every page, and make sure it is the same as the build entry name!")
		return
	}
	if _, ok := in.Bundles[entry]; !ok {
		in.log().Warn(fmt.Sprintf("The page entry is %s, but cannot find it in the build entries. Please make sure the value is the same as the entry name!", entry))
	}
}

// addAsset copies the local file behind d into OutDir under d.Path.
func (in *Injector) addAsset(d *externals.Descriptor) error {
	if d == nil || d.SourcePath == "" {
		return nil
	}
	src := d.SourcePath
	if !filepath.IsAbs(src) {
		src = filepath.Join(in.RootDir, src)
	}
	name := d.Path
	if name == "" {
		name = filepath.Base(src)
	}
	dst := filepath.Join(in.OutDir, filepath.FromSlash(strings.TrimPrefix(name, "/")))

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return copyFile(src, dst)
}

func (in *Injector) scriptAttributes(p string) map[string]any {
	if d, ok := in.Session.ScriptByPath(p); ok {
		return d.Attributes
	}
	return nil
}

func (in *Injector) stylesheetAttributes(p string) map[string]any {
	if d, ok := in.Session.StylesheetByPath(p); ok {
		return d.Attributes
	}
	return nil
}

func (in *Injector) log() *slog.Logger {
	if in.Log != nil {
		return in.Log
	}
	if in.Session != nil {
		return in.Session.Logger()
	}
	return slog.Default()
}

func copyFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cannot add asset: %w", err)
	}
	defer f.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
