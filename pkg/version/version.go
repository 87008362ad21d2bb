// Package version exposes the CampSight build version.
package version

// Version is the application version, overridden at build time via
// -ldflags "-X github.com/campsight/campsight/pkg/version.Version=v1.2.3".
//
//nolint:gochecknoglobals // Set once by the linker, read-only afterwards.
var Version = "0.4.0-dev"

// GetVersion returns the current application version string.
func GetVersion() string {
	return Version
}
