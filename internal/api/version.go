package api

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// SupportedMajor is the API major version this client speaks.
const SupportedMajor = "v1"

// CheckCompatibility returns an error when the server version is not a
// valid semver or belongs to a different major line.
func CheckCompatibility(version string) error {
	v := canonical(version)
	if !semver.IsValid(v) {
		return fmt.Errorf("server reported invalid version %q", version)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("server API %s is incompatible with client API %s", major, SupportedMajor)
	}
	return nil
}

func canonical(version string) string {
	version = strings.TrimSpace(version)
	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}
