package html

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"micromachine.dev/cdn-externals/lib/externals"
	"micromachine.dev/cdn-externals/lib/utils"
)

const prefix = "https://cdn.test/"

func testSession(t *testing.T, opts externals.Options) (*externals.Session, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	p := &externals.Project{
		Externals: externals.Externals{
			{Name: "pandora", Global: "pandora"},
			{Name: "react", Global: "React"},
		},
		Package:     &utils.PackageJSON{Dependencies: map[string]string{"pandora": "13.1.0", "react": "16.14.0"}},
		MainName:    "pandora",
		MainPackage: &utils.PackageJSON{Version: "13.1.0"},
	}
	opts.PrefixURL = prefix
	opts.Mode = externals.ModeOne
	return externals.NewSession(p, opts, log), &buf
}

func testInjector(t *testing.T, s *externals.Session, bundles map[string][]string) *Injector {
	t.Helper()
	return &Injector{
		RootDir: t.TempDir(),
		OutDir:  t.TempDir(),
		Session: s,
		Bundles: bundles,
	}
}

func attr(t *testing.T, tags []string, i int) string {
	t.Helper()
	require.Greater(t, len(tags), i)
	return tags[i]
}

var (
	scriptTag = regexp.MustCompile(`<script[^>]*></script>`)
	linkTag   = regexp.MustCompile(`<link[^>]*/>`)
)

// renderTags returns the rendered script and link tags of page, in order.
func renderTags(t *testing.T, in *Injector, page Page) (scripts, links []string) {
	t.Helper()
	out, err := in.Render(page)
	require.NoError(t, err)
	return scriptTag.FindAllString(string(out), -1), linkTag.FindAllString(string(out), -1)
}

func TestRenderOrder(t *testing.T) {
	s, _ := testSession(t, externals.Options{
		ScriptsPrepend: []*externals.Descriptor{{Path: "/polyfill.js"}},
		ScriptsAppend:  []*externals.Descriptor{{Path: "/analytics.js", Attributes: map[string]any{"async": true}}},
		LinksPrepend:   []*externals.Descriptor{{Path: "/reset.css"}},
		LinksAppend:    []*externals.Descriptor{{Path: "/print.css", Attributes: map[string]any{"media": "print"}}},
	})
	in := testInjector(t, s, map[string][]string{"main": {"main.css", "main.js"}})

	scripts, links := renderTags(t, in, Page{Entry: "main"})

	assert.Equal(t, []string{
		`<script src="/polyfill.js"></script>`,
		`<script src="` + prefix + `react/16.14.0/umd/react.production.min.js" crossorigin=""></script>`,
		`<script src="` + prefix + `pandora/13.1.0/pandora.min.js" crossorigin=""></script>`,
		`<script src="main.js"></script>`,
		`<script src="/analytics.js" async=""></script>`,
	}, scripts)
	assert.Equal(t, []string{
		`<link href="/reset.css" rel="stylesheet"/>`,
		`<link href="` + prefix + `pandora/13.1.0/pandora.min.css" rel="stylesheet" crossorigin=""/>`,
		`<link href="main.css" rel="stylesheet"/>`,
		`<link href="/print.css" rel="stylesheet" media="print"/>`,
	}, links)
}

func TestRenderMergesProcessedAttributes(t *testing.T) {
	s, _ := testSession(t, externals.Options{
		ProcessExternals: func(d *externals.Descriptor) *externals.Descriptor {
			d.Attributes["crossorigin"] = "anonymous"
			d.Attributes["defer"] = true
			return d
		},
	})
	s.SetIntegrity(map[string]string{"pandora.min.js": "sha384-main"})
	in := testInjector(t, s, map[string][]string{"main": {"main.js"}})

	scripts, _ := renderTags(t, in, Page{})
	assert.Equal(t, `<script src="`+prefix+`pandora/13.1.0/pandora.min.js" crossorigin="anonymous" defer="" integrity="sha384-main"></script>`, attr(t, scripts, 1))
}

func TestRenderMetas(t *testing.T) {
	s, _ := testSession(t, externals.Options{
		Metas: []*externals.Descriptor{
			{Path: "/manifest.json", Attributes: map[string]any{"name": "manifest"}},
			{Attributes: map[string]any{"name": "theme-color", "content": "#fff"}},
		},
	})
	in := testInjector(t, s, nil)

	out, err := in.Render(Page{Title: "Demo <app>"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `<meta content="/manifest.json" name="manifest"/>`)
	assert.Contains(t, string(out), `<meta content="#fff" name="theme-color"/>`)
	assert.Contains(t, string(out), `<title>Demo &lt;app&gt;</title>`)
}

func TestRenderTemplate(t *testing.T) {
	s, _ := testSession(t, externals.Options{})
	in := testInjector(t, s, map[string][]string{"main": {"main.js"}})
	require.NoError(t, os.WriteFile(filepath.Join(in.RootDir, "index.html"), []byte(`<html><head><title>T</title></head><body><main id="app"></main></body></html>`), 0644))

	out, err := in.Render(Page{Template: "index.html"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `<main id="app"></main><script src="`+prefix+`react/`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(out)), `<script src="main.js"></script></body></html>`))

	_, err = in.Render(Page{Template: "missing.html"})
	assert.ErrorContains(t, err, "cannot read template")
}

func TestRenderExclude(t *testing.T) {
	s, _ := testSession(t, externals.Options{
		Exclude:        []string{"admin/*.html"},
		ScriptsPrepend: []*externals.Descriptor{{Path: "/polyfill.js"}},
	})
	in := testInjector(t, s, map[string][]string{"main": {"main.js"}})

	scripts, links := renderTags(t, in, Page{Filename: "admin/index.html"})
	assert.Equal(t, []string{`<script src="main.js"></script>`}, scripts)
	assert.Empty(t, links)

	scripts, _ = renderTags(t, in, Page{Filename: "index.html"})
	assert.Len(t, scripts, 4)
}

func TestRenderEntryWarnings(t *testing.T) {
	s, buf := testSession(t, externals.Options{})
	in := testInjector(t, s, map[string][]string{"a": {"a.js"}, "b": {"b.js"}})

	scripts, _ := renderTags(t, in, Page{})
	assert.Contains(t, buf.String(), "Please give an entry name to every page")
	assert.Equal(t, `<script src="a.js"></script>`, attr(t, scripts, 2))
	assert.Equal(t, `<script src="b.js"></script>`, attr(t, scripts, 3))

	buf.Reset()
	renderTags(t, in, Page{Entry: "c"})
	assert.Contains(t, buf.String(), "The page entry is c, but cannot find it in the build entries")

	buf.Reset()
	scripts, _ = renderTags(t, in, Page{Entry: "b"})
	assert.Empty(t, buf.String())
	assert.Equal(t, `<script src="b.js"></script>`, scripts[len(scripts)-1])
}

func TestWritePagesCopiesAssets(t *testing.T) {
	s, _ := testSession(t, externals.Options{
		ScriptsPrepend: []*externals.Descriptor{{Path: "vendor/legacy.js", SourcePath: "legacy/legacy.js"}},
		Metas:          []*externals.Descriptor{{Path: "favicon.ico", SourcePath: "public/favicon.ico", Attributes: map[string]any{"name": "icon"}}},
	})
	in := testInjector(t, s, map[string][]string{"main": {"main.js"}})
	require.NoError(t, os.MkdirAll(filepath.Join(in.RootDir, "legacy"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(in.RootDir, "legacy", "legacy.js"), []byte("window.legacy = 1;"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(in.RootDir, "public"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(in.RootDir, "public", "favicon.ico"), []byte("ico"), 0644))

	require.NoError(t, in.WritePages(DefaultPages(map[string][]string{"main": {"./src/index.js"}})))

	data, err := os.ReadFile(filepath.Join(in.OutDir, "vendor", "legacy.js"))
	require.NoError(t, err)
	assert.Equal(t, "window.legacy = 1;", string(data))
	assert.FileExists(t, filepath.Join(in.OutDir, "favicon.ico"))

	page, err := os.ReadFile(filepath.Join(in.OutDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<script src="vendor/legacy.js"></script>`)
}

func TestWritePagesMissingAsset(t *testing.T) {
	s, _ := testSession(t, externals.Options{
		LinksAppend: []*externals.Descriptor{{Path: "theme.css", SourcePath: "missing.css"}},
	})
	in := testInjector(t, s, nil)

	err := in.WritePages([]Page{{Filename: "index.html"}})
	assert.ErrorContains(t, err, "index.html: cannot add asset")
	assert.NoFileExists(t, filepath.Join(in.OutDir, "index.html"))
}

func TestDefaultPages(t *testing.T) {
	assert.Equal(t, []Page{{Filename: "index.html"}}, DefaultPages(nil))
	assert.Equal(t, []Page{{Filename: "index.html", Entry: "main"}}, DefaultPages(map[string][]string{"main": nil}))
	assert.Equal(t, []Page{
		{Filename: "admin.html", Entry: "admin"},
		{Filename: "home.html", Entry: "home"},
	}, DefaultPages(map[string][]string{"home": nil, "admin": nil}))
}
