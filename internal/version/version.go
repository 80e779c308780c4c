package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is set via ldflags at build time:
// -ldflags "-X github.com/Alia5/wit-bindgen-scala/internal/version.Version=x.y.z"
var Version = ""

const devVersion = "0.0.1-dev"

// Get returns the build version without a leading "v".
// Development builds report 0.0.1-dev.
func Get() (string, error) {
	if Version == "" {
		return devVersion, nil
	}
	v, err := semver.NewVersion(strings.TrimPrefix(Version, "v"))
	if err != nil {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z): %w", Version, err)
	}
	return v.String(), nil
}

// String is Get with a fallback for malformed ldflags.
func String() string {
	v, err := Get()
	if err != nil {
		return devVersion + "+" + Version
	}
	return v
}
