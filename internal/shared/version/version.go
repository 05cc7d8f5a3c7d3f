// Package version validates the plugin version reported to the payment service.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Normalize ensures version string has "v" prefix for semver compatibility.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// Valid reports whether v parses as a semantic version, with or without the "v" prefix.
func Valid(v string) bool {
	return semver.IsValid(Normalize(v))
}

// Wire returns the canonical version without the "v" prefix, e.g. "1.2.0".
func Wire(v string) string {
	return strings.TrimPrefix(semver.Canonical(Normalize(v)), "v")
}
