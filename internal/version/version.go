package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Set at build time with -ldflags.
var (
	BuildDate    = "unknown"
	BuildVersion = "0.0.0"
	Commit       = "unknown"
)

// BaseVersion returns "v<major>.<minor>" of the build, or "unknown" when
// the build version is not semver.
func BaseVersion() string {
	v, err := semver.NewVersion(BuildVersion)
	if err != nil {
		return "unknown"
	}

	return fmt.Sprintf("v%d.%d", v.Major(), v.Minor())
}

// String is the long version printed by the CLI.
func String() string {
	return fmt.Sprintf("folio %s (%s) on %s", BuildVersion, Commit, BuildDate)
}
