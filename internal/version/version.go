// Package version exposes the build version injected via ldflags.
package version

// version is set at build time: -X .../internal/version.version=v1.2.3
var version string

// Value returns the build version, or a dev placeholder when the
// binary was built without ldflags.
func Value() string {
	if version == "" {
		return "v0.0.0-dev"
	}
	return version
}
