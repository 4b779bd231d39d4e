package bump

import (
	"fmt"
	"strings"
)

// Bump represents which part of a four-part version tuple is incremented.
type Bump string

const (
	BumpMajor    Bump = "major"
	BumpMinor    Bump = "minor"
	BumpBuild    Bump = "build"
	BumpRevision Bump = "revision"
)

// Default returns the default bump intent (revision).
func Default() Bump {
	return BumpRevision
}

// Parse converts a string into a Bump value. "patch" is accepted as an alias for build.
func Parse(value string) (Bump, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "patch" {
		return BumpBuild, nil
	}
	switch Bump(normalized) {
	case BumpMajor, BumpMinor, BumpBuild, BumpRevision:
		return Bump(normalized), nil
	default:
		return "", fmt.Errorf("invalid bump %q", value)
	}
}

// HigherImpactThan reports whether the bump is higher impact (larger) than another.
func (b Bump) HigherImpactThan(other Bump) bool {
	return weight(b) > weight(other)
}

// Max returns the highest-impact bump in the slice. Defaults to revision when empty.
func Max(values ...Bump) Bump {
	max := Default()
	for _, v := range values {
		if v.HigherImpactThan(max) {
			max = v
		}
	}
	return max
}

// String returns the textual representation. Defaults to "revision" for unknown values.
func (b Bump) String() string {
	switch b {
	case BumpMajor, BumpMinor, BumpBuild, BumpRevision:
		return string(b)
	default:
		return string(BumpRevision)
	}
}

func weight(b Bump) int {
	switch b {
	case BumpMajor:
		return 4
	case BumpMinor:
		return 3
	case BumpBuild:
		return 2
	case BumpRevision:
		return 1
	default:
		return 0
	}
}
