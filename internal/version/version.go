package version

import (
	"runtime/debug"
)

// Version is the semantic version (set by ldflags during build)
var Version = "dev"

// GetVersion returns the version string, falling back to VCS build info when
// no release version was stamped in.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}

	return Version
}
