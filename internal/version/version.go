// Package version provides the build version, set at link time with
// -ldflags "-X github.com/effective-security/xjwt/internal/version.Build=..."
package version

// Set by the linker
var (
	Build  = "0.0.0"
	Commit = "dev"
)

// Info describes the build
type Info struct {
	Build  string `json:"build"`
	Commit string `json:"commit"`
}

// Current returns the build info
func Current() Info {
	return Info{Build: Build, Commit: Commit}
}

// String returns the version as build-commit
func (v Info) String() string {
	return v.Build + "-" + v.Commit
}
