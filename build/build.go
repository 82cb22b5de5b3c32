// Package build reports the version lnbindd was built from. The tag is set
// with -ldflags "-X github.com/breez/lnbind/build.tag=<tag>".
package build

import "runtime/debug"

var (
	tag      string
	revision string
)

func GetRevision() string {
	if revision != "" {
		return revision
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	for _, setting := range buildInfo.Settings {
		if setting.Key == "vcs.revision" {
			revision = setting.Value
			return revision
		}
	}

	return "unknown"
}

func GetTag() string {
	if tag != "" {
		return tag
	}

	return "none"
}

// Version is the tag and revision as shown by lnbindd --version.
func Version() string {
	return GetTag() + " commit=" + GetRevision()
}
