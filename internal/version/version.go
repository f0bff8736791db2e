// Package version reports the launcher build version and the build mode
// selected at link time.
package version

import "runtime/debug"

// Build-time parameters set via -ldflags, e.g.
//
//	-X github.com/taskrunners/launcher/internal/version.BuildMode=development
var (
	Version = "devel"

	// BuildMode is "secure" or "development". See launcher.SettingsFor.
	BuildMode = "secure"
)

// A user may install the launcher with `go install`, in which case Version
// is taken from the module version.
func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	mainVersion := info.Main.Version
	if mainVersion != "" && mainVersion != "(devel)" && Version == "devel" {
		Version = mainVersion
	}
}
