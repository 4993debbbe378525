package externals

import (
	"regexp"
	"strings"
)

var productionTemplates = map[string]string{
	"core-js":          "core-js/{version}/core-js.min.js",
	"@babel/polyfill":  "babel-polyfill/{version}/polyfill.min.js",
	"react":            "react/{version}/umd/react.production.min.js",
	"react-dom":        "react-dom/{version}/umd/react-dom.production.min.js",
	"react-router":     "react-router/{version}/react-router.min.js",
	"react-router-dom": "react-router-dom/{version}/react-router-dom.min.js",
	"i18next":          "i18next/{version}/i18next.min.js",
	"mobx":             "mobx/{version}/mobx.umd.min.js",
	"mobx-react":       "mobx-react/{version}/index.min.js",
	"jquery":           "jquery/{version}/jquery.min.js",
	"lodash":           "lodash.js/{version}/lodash.min.js",
}

var developmentTemplates = map[string]string{
	"core-js":          "core-js/{version}/core-js.js",
	"@babel/polyfill":  "babel-polyfill/{version}/polyfill.js",
	"react":            "react/{version}/umd/react.development.js",
	"react-dom":        "react-dom/{version}/umd/react-dom.development.js",
	"react-router":     "react-router/{version}/react-router.js",
	"react-router-dom": "react-router-dom/{version}/react-router-dom.js",
	"i18next":          "i18next/{version}/i18next.js",
	"mobx":             "mobx/{version}/mobx.umd.js",
	"mobx-react":       "mobx-react/{version}/index.js",
	"jquery":           "jquery/{version}/jquery.js",
	"lodash":           "lodash.js/{version}/lodash.js",
}

var absoluteURL = regexp.MustCompile(`^https?://`)

// TemplatePath returns the resource URL of a library file with the
// {version} placeholder left in place.
func (s *Session) TemplatePath(name, fileBase, fileExt string) string {
	prefix := s.opts.PrefixURL

	if override := s.opts.ExternalsPath[name]; override != "" {
		if absoluteURL.MatchString(override) {
			return override
		}
		return prefix + override
	}

	var tmpl string
	if s.opts.Debug {
		tmpl = firstNonEmpty(s.project.PathConfig[name], developmentTemplates[name])
	}
	if tmpl == "" {
		tmpl = firstNonEmpty(s.project.PathConfig[name], productionTemplates[name])
	}
	if tmpl == "" {
		minSuffix := ".min"
		if s.opts.Debug && name != s.mainGlobal() {
			minSuffix = ""
		}
		tmpl = name + "/" + versionPlaceholder + "/" + fileBase + s.themeSuffix(name) + minSuffix + fileExt
	}
	return prefix + tmpl
}

// ResolvePath substitutes the version into the template path. An empty
// version is resolved with Version; "" is returned when none is found.
func (s *Session) ResolvePath(name, version, fileBase, fileExt string) string {
	tmpl := s.TemplatePath(name, fileBase, fileExt)
	if !strings.Contains(tmpl, versionPlaceholder) {
		return tmpl
	}
	if version == "" {
		version = s.Version(name)
	}
	if version == "" {
		return ""
	}
	return strings.Replace(tmpl, versionPlaceholder, version, 1)
}

func (s *Session) themeSuffix(name string) string {
	if name == s.mainGlobal() && s.opts.Theme != "" && s.opts.Theme != DefaultTheme {
		return "." + s.opts.Theme
	}
	return ""
}

// ExternalScript resolves the script of a library other than the main one.
func (s *Session) ExternalScript(name string) *Descriptor {
	return s.scriptDescriptor(s.ResolvePath(name, "", name, ".js"), name, name)
}

// MainScript resolves the script of a main library chunk.
func (s *Session) MainScript(chunk string) *Descriptor {
	main := s.mainGlobal()
	return s.scriptDescriptor(s.ResolvePath(main, s.mainVersion, chunk, ".js"), main, chunk)
}

// MainStylesheet resolves a main library stylesheet.
func (s *Session) MainStylesheet(name string) *Descriptor {
	main := s.mainGlobal()
	return s.cssDescriptor(s.ResolvePath(main, s.mainVersion, name, ".css"), name)
}

func (s *Session) scriptDescriptor(path, name, fileBase string) *Descriptor {
	if path == "" {
		return nil
	}
	d := newDescriptor(path)

	key := fileBase + s.themeSuffix(name)
	if name == s.mainGlobal() {
		key += ".min.js"
	}
	if strings.HasSuffix(path, ".js") {
		if hash := s.integrity[key]; hash != "" {
			d.Attributes["integrity"] = hash
		}
	}

	d = s.process(d)
	if d != nil {
		s.scripts[d.Path] = d
	}
	return d
}

func (s *Session) cssDescriptor(path, name string) *Descriptor {
	if path == "" {
		return nil
	}
	d := newDescriptor(path)

	if hash := s.integrity[name+s.themeSuffix(name)+".min.css"]; hash != "" {
		d.Attributes["integrity"] = hash
	}

	d = s.process(d)
	if d != nil {
		s.styles[d.Path] = d
	}
	return d
}

func (s *Session) process(d *Descriptor) *Descriptor {
	if s.opts.ProcessExternals == nil {
		return d
	}
	return s.opts.ProcessExternals(d)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
