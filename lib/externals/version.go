package externals

import (
	"fmt"
	"regexp"

	"micromachine.dev/cdn-externals/lib/utils"
)

var (
	acceptedVersion = regexp.MustCompile(`^\^?([0-9.]+)$`)
	versionLike     = regexp.MustCompile(`\d.*`)
)

// secondaryPackages re-declare libraries a project often does not depend on
// directly.
var secondaryPackages = map[string][]string{
	"core-js":         {"babel-config-pandora", "babel-config-pandora-typescript"},
	"@babel/polyfill": {"babel-config-pandora", "babel-config-pandora-typescript"},
}

// Version returns the version substituted into name's resource path, or ""
// when none can be found.
func (s *Session) Version(name string) string {
	if name == s.mainGlobal() {
		return s.mainVersion
	}

	manifests := []*utils.PackageJSON{s.project.Package, s.project.MainPackage}
	if s.hasPathTemplate(name) {
		// templated libraries are pinned to what the main library was built with
		manifests = []*utils.PackageJSON{s.project.MainPackage, s.project.Package}
	}
	for i, pkg := range manifests {
		if pkg == nil {
			continue
		}
		if m := acceptedVersion.FindStringSubmatch(pkg.DependencyVersion(name, i == 0)); m != nil {
			return m[1]
		}
	}

	if v := s.secondaryVersion(name); v != "" {
		return v
	}
	s.log.Warn(fmt.Sprintf("Cannot find the version of %s!", name))
	return ""
}

func (s *Session) hasPathTemplate(name string) bool {
	return s.opts.ExternalsPath[name] != "" || s.project.PathConfig[name] != "" || productionTemplates[name] != ""
}

func (s *Session) secondaryVersion(name string) string {
	if s.project.Packages == nil {
		return ""
	}
	for _, search := range secondaryPackages[name] {
		pkg := s.project.Packages(search)
		if pkg == nil {
			continue
		}
		if v := versionLike.FindString(pkg.Dependencies[name]); v != "" {
			return v
		}
	}
	return ""
}
