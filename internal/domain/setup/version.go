package setup

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

var versionPattern = regexp.MustCompile(`v?(\d+)\.(\d+)(?:\.(\d+))?`)

// canonicalVersion normalises "1.2", "v1.2.3" and "go1.24" style strings to
// semver's "vMAJOR.MINOR.PATCH". It returns "" when s holds no version.
func canonicalVersion(s string) string {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	v := "v" + m[1] + "." + m[2] + "." + patch
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

func validVersion(s string) bool {
	return canonicalVersion(strings.TrimSpace(s)) != ""
}

// versionAtLeast reports whether the first version found in output is >= min.
func versionAtLeast(output, min string) bool {
	got := canonicalVersion(output)
	want := canonicalVersion(min)
	if got == "" || want == "" {
		return false
	}
	return semver.Compare(got, want) >= 0
}
