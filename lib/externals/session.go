package externals

import (
	"fmt"
	"log/slog"
	"regexp"

	"golang.org/x/mod/semver"
)

// minExternalVersion is the first main library release hosted with support for
// externalized chunk references.
const minExternalVersion = "v13.0.0"

var pinnedVersion = regexp.MustCompile(`^[0-9.]+$`)

// Session is the state of one build: the loaded project, the integrity hash
// table and the descriptors resolved so far. A Session is used from a single
// goroutine.
type Session struct {
	opts    Options
	log     *slog.Logger
	project *Project

	mainVersion string
	// disabled is set when the installed main library predates external
	// chunk support.
	disabled bool
	chunks   *ChunkConfig
	scanner  Scanner

	integrity map[string]string
	scripts   map[string]*Descriptor
	styles    map[string]*Descriptor
}

func NewSession(p *Project, opts Options, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	opts.Normalize(log)
	if p == nil {
		p = &Project{}
	}

	s := &Session{
		opts:      opts,
		log:       log,
		project:   p,
		integrity: map[string]string{},
		scripts:   map[string]*Descriptor{},
		styles:    map[string]*Descriptor{},
	}
	if p.MainName == "" {
		return s
	}

	if p.MainPackage != nil {
		s.mainVersion = p.MainPackage.Version
	}
	if pinned := p.Package.DependencyVersion(p.MainName, true); pinnedVersion.MatchString(pinned) && pinned != s.mainVersion {
		log.Warn(fmt.Sprintf("%s version in package.json (%s) is not same as installed in node_modules (%s)", p.MainName, pinned, s.mainVersion))
	}

	if s.mainVersion != "" {
		if v := "v" + s.mainVersion; semver.IsValid(v) && semver.Compare(v, minExternalVersion) < 0 {
			log.Warn(fmt.Sprintf("%s before 13.0.0 does not support external references!", p.MainName))
			s.disabled = true
		}
	}

	if !s.disabled && opts.Mode != ModeOne {
		s.chunks = p.Chunks
		if s.chunks == nil {
			log.Warn(fmt.Sprintf("%s is not exist in %s, are you sure? Loading it as a single bundle.", ChunkConfigName, p.MainName))
		}
	}
	s.scanner = NewScanner(p.MainName, p.CommonJS)
	return s
}

// Logger is the logger build warnings are reported to.
func (s *Session) Logger() *slog.Logger {
	return s.log
}

func (s *Session) Options() Options {
	return s.opts
}

// MainName is the package name of the main library, empty when it is not
// externalized.
func (s *Session) MainName() string {
	return s.project.MainName
}

// MainVersion is the installed version of the main library.
func (s *Session) MainVersion() string {
	return s.mainVersion
}

// MainEnabled reports whether main library scripts and styles are emitted.
func (s *Session) MainEnabled() bool {
	return s.project.MainName != "" && !s.disabled
}

func (s *Session) mainGlobal() string {
	return s.opts.MainGlobal
}

// ScriptByPath returns the script descriptor resolved for path during this
// build.
func (s *Session) ScriptByPath(path string) (*Descriptor, bool) {
	d, ok := s.scripts[path]
	return d, ok
}

func (s *Session) StylesheetByPath(path string) (*Descriptor, bool) {
	d, ok := s.styles[path]
	return d, ok
}
