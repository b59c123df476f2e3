package dbinit

import (
	"fmt"

	"github.com/maloquacious/semver"
)

var version = semver.Version{
	Major: 0,
	Minor: 1,
	Patch: 0,
	Build: semver.Commit(),
}

// Version returns the library version.
func Version() semver.Version {
	return version
}

// BuildInfo names the library version and the SQLite driver compiled in.
func BuildInfo() string {
	return fmt.Sprintf("dbinit %v (%s, driver %q)", version, driverPackage, driverName)
}
