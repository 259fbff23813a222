package api

import (
	"fmt"
	"regexp"
	"strconv"
)

// Supported server version window. Outside of it Login fails unless the
// check is skipped explicitly.
var (
	minSupported = Version{Major: 5, Minor: 0}
	maxSupported = Version{Major: 7, Minor: 0}
)

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// Version is a Zabbix server version as reported by apiinfo.version.
// The zero value means the version is not known yet.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a version string in strict "major.minor.patch" form.
// Truncated ("6.0") and suffixed ("7.0.0alpha1") forms are rejected.
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("api: cannot parse version %q, expected the \"major.minor.patch\" format", s)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

// IsZero reports whether v is the unknown version.
func (v Version) IsZero() bool {
	return v == Version{}
}

// IsLTS reports whether v is a long-term support release. LTS releases
// have a zero minor version (5.0, 6.0, 7.0).
func (v Version) IsLTS() bool {
	return v.Minor == 0
}

// Compare returns -1 when v is older than other, 0 when equal and 1 when
// newer.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return sign(v.Major - other.Major)
	case v.Minor != other.Minor:
		return sign(v.Minor - other.Minor)
	default:
		return sign(v.Patch - other.Patch)
	}
}

// AtLeast reports whether v is major.minor or newer. The patch level is
// ignored, matching how server capabilities are gated per release line.
func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
