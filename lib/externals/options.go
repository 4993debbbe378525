// Package externals decides which libraries left out of a bundle have to be
// loaded from the asset host for a build entry, at which version and URL, and
// which optional chunks of the main library the entry actually uses.
package externals

import (
	"fmt"
	"log/slog"
	"slices"
)

const (
	// DefaultMainGlobal is the global binding of the main library.
	DefaultMainGlobal = "pandora"
	DefaultPrefixURL  = "https://assets.gaiaworkforce.com/libs/"
	DefaultTheme      = "default"

	versionPlaceholder = "{version}"
)

// Mode selects how the main library is loaded.
type Mode string

const (
	// ModeChunk loads the shared chunks plus the chunks an entry uses.
	ModeChunk Mode = "chunk"
	// ModeOne loads the main library as a single bundle.
	ModeOne Mode = "one"
)

// ModuleFormat tells the chunk scanner which import form module sources use.
type ModuleFormat string

const (
	// ModuleFormatAuto inspects the project's babel configuration.
	ModuleFormatAuto     ModuleFormat = "auto"
	ModuleFormatCommonJS ModuleFormat = "commonjs"
	ModuleFormatESM      ModuleFormat = "esm"
)

type Options struct {
	// Debug loads development builds and skips integrity hashes.
	Debug bool         `json:"debug" toml:"debug"`
	Mode  Mode         `json:"mode" toml:"mode"`
	Theme string       `json:"theme" toml:"theme"`
	// PrefixURL is prepended to every relative resource path.
	PrefixURL string `json:"prefixUrl" toml:"prefixUrl"`
	// MainGlobal is the global binding that identifies the main library in
	// the externals map.
	MainGlobal   string       `json:"mainGlobal" toml:"mainGlobal"`
	ModuleFormat ModuleFormat `json:"moduleFormat" toml:"moduleFormat"`

	// ExternalsPath overrides the resource path of a library by name. Values
	// starting with http:// or https:// are used verbatim.
	ExternalsPath map[string]string `json:"externalsPath" toml:"externalsPath"`

	SkipFindEntry  bool `json:"skipFindEntry" toml:"skipFindEntry"`
	DebugFindEntry bool `json:"debugFindEntry" toml:"debugFindEntry"`
	// SkipCircularReference stops the entry search at modules already visited
	// during the same search. Defaults to true.
	SkipCircularReference *bool `json:"skipCircularReference" toml:"skipCircularReference"`

	ScriptsPrepend []*Descriptor `json:"scriptsPrepend" toml:"scriptsPrepend"`
	ScriptsAppend  []*Descriptor `json:"scriptsAppend" toml:"scriptsAppend"`
	LinksPrepend   []*Descriptor `json:"linksPrepend" toml:"linksPrepend"`
	LinksAppend    []*Descriptor `json:"linksAppend" toml:"linksAppend"`
	Metas          []*Descriptor `json:"metas" toml:"metas"`
	// Exclude lists glob patterns of HTML file names left untouched.
	Exclude []string `json:"exclude" toml:"exclude"`

	// ProcessExternals may rewrite every resolved descriptor. Returning nil
	// drops the descriptor.
	ProcessExternals func(d *Descriptor) *Descriptor `json:"-" toml:"-"`
}

// Normalize fills defaults and warns about values it had to replace.
func (o *Options) Normalize(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	switch o.Mode {
	case "":
		o.Mode = ModeChunk
	case ModeChunk, ModeOne:
	default:
		log.Warn(fmt.Sprintf("options.mode expected to be '%s' or '%s', got %q", ModeOne, ModeChunk, o.Mode))
		o.Mode = ModeChunk
	}
	switch o.ModuleFormat {
	case "":
		o.ModuleFormat = ModuleFormatAuto
	case ModuleFormatAuto, ModuleFormatCommonJS, ModuleFormatESM:
	default:
		log.Warn(fmt.Sprintf("options.moduleFormat expected to be one of auto, commonjs, esm, got %q", o.ModuleFormat))
		o.ModuleFormat = ModuleFormatAuto
	}
	if o.PrefixURL == "" {
		o.PrefixURL = DefaultPrefixURL
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.MainGlobal == "" {
		o.MainGlobal = DefaultMainGlobal
	}
	if o.ExternalsPath == nil {
		o.ExternalsPath = map[string]string{}
	}
	if o.SkipCircularReference == nil {
		skip := true
		o.SkipCircularReference = &skip
	}
	for _, list := range [][]*Descriptor{o.ScriptsPrepend, o.ScriptsAppend, o.LinksPrepend, o.LinksAppend, o.Metas} {
		if slices.Contains(list, nil) {
			log.Warn("options contain an empty tag entry, it will be ignored")
			break
		}
	}
	o.ScriptsPrepend = slices.DeleteFunc(o.ScriptsPrepend, isNilDescriptor)
	o.ScriptsAppend = slices.DeleteFunc(o.ScriptsAppend, isNilDescriptor)
	o.LinksPrepend = slices.DeleteFunc(o.LinksPrepend, isNilDescriptor)
	o.LinksAppend = slices.DeleteFunc(o.LinksAppend, isNilDescriptor)
	o.Metas = slices.DeleteFunc(o.Metas, isNilDescriptor)
}

func (o *Options) skipCircularReference() bool {
	return o.SkipCircularReference == nil || *o.SkipCircularReference
}

func isNilDescriptor(d *Descriptor) bool { return d == nil }
