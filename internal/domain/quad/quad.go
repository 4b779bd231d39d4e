// Package quad models the four-part (major.minor.build.revision) version
// tuple stamped into Windows binaries.
package quad

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	semver "github.com/blang/semver/v4"

	"github.com/nwlogic/expresso-buildmeta/internal/domain/bump"
)

// MaxPart is the largest value a single part may hold. VERSIONINFO stores
// each part in 16 bits.
const MaxPart = 0xFFFF

const revisionTag = "rev"

var (
	ErrInvalidTuple = errors.New("invalid version tuple")
	ErrOverflow     = errors.New("version part overflow")
)

// Tuple is an ordered (major, minor, build, revision) quadruple.
type Tuple struct {
	Major    uint16
	Minor    uint16
	Build    uint16
	Revision uint16
}

// New builds a Tuple from its parts.
func New(major, minor, build, revision uint16) Tuple {
	return Tuple{Major: major, Minor: minor, Build: build, Revision: revision}
}

// Parse reads a strict "M.m.b.r" string. Every part must be present and
// consist of decimal digits only.
func Parse(input string) (Tuple, error) {
	parts := strings.Split(input, ".")
	if len(parts) != 4 {
		return Tuple{}, fmt.Errorf("%w %q: want 4 parts, got %d", ErrInvalidTuple, input, len(parts))
	}

	var values [4]uint16
	for i, part := range parts {
		value, err := parsePart(part)
		if err != nil {
			return Tuple{}, fmt.Errorf("%w %q: part %d: %w", ErrInvalidTuple, input, i+1, err)
		}
		values[i] = value
	}

	return Tuple{Major: values[0], Minor: values[1], Build: values[2], Revision: values[3]}, nil
}

// MustParse is like Parse but panics on error. Intended for compiled-in constants.
func MustParse(input string) Tuple {
	t, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseLoose accepts either a four-part tuple or a semver string such as
// "v4.7.4" or "4.7.4+rev.2". Input with four dot-separated parts and no
// pre-release or build suffix is held to the strict tuple rules.
func ParseLoose(input string) (Tuple, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.ContainsAny(trimmed, "+-") && strings.Count(trimmed, ".") == 3 {
		return Parse(trimmed)
	}

	version, err := semver.ParseTolerant(trimmed)
	if err != nil {
		return Tuple{}, fmt.Errorf("%w %q: %w", ErrInvalidTuple, input, err)
	}
	return FromSemver(version)
}

func parsePart(part string) (uint16, error) {
	if part == "" {
		return 0, errors.New("empty")
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	value, err := strconv.ParseUint(part, 10, 64)
	if err != nil || value > MaxPart {
		return 0, fmt.Errorf("%w: %s exceeds %d", ErrOverflow, part, MaxPart)
	}
	return uint16(value), nil
}

// String renders the tuple as "M.m.b.r".
func (t Tuple) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", t.Major, t.Minor, t.Build, t.Revision)
}

// Parts returns the tuple as an ordered array.
func (t Tuple) Parts() [4]int {
	return [4]int{int(t.Major), int(t.Minor), int(t.Build), int(t.Revision)}
}

// Compare returns -1, 0 or +1 ordering t against other part by part.
func (t Tuple) Compare(other Tuple) int {
	left, right := t.Parts(), other.Parts()
	for i := range left {
		switch {
		case left[i] < right[i]:
			return -1
		case left[i] > right[i]:
			return 1
		}
	}
	return 0
}

// Less reports whether t sorts before other.
func (t Tuple) Less(other Tuple) bool {
	return t.Compare(other) < 0
}

// Semver maps the tuple onto semver: build becomes patch and a non-zero
// revision is carried as "+rev.N" build metadata.
func (t Tuple) Semver() semver.Version {
	v := semver.Version{
		Major: uint64(t.Major),
		Minor: uint64(t.Minor),
		Patch: uint64(t.Build),
	}
	if t.Revision != 0 {
		v.Build = []string{revisionTag, strconv.Itoa(int(t.Revision))}
	}
	return v
}

// FromSemver is the inverse of Semver. Pre-release identifiers and build
// metadata other than "rev.N" are rejected.
func FromSemver(v semver.Version) (Tuple, error) {
	if len(v.Pre) > 0 {
		return Tuple{}, fmt.Errorf("%w: pre-release %s has no tuple form", ErrInvalidTuple, v)
	}
	if v.Major > MaxPart || v.Minor > MaxPart || v.Patch > MaxPart {
		return Tuple{}, fmt.Errorf("%w: %s", ErrOverflow, v)
	}

	t := Tuple{Major: uint16(v.Major), Minor: uint16(v.Minor), Build: uint16(v.Patch)}
	switch {
	case len(v.Build) == 0:
	case len(v.Build) == 2 && v.Build[0] == revisionTag:
		rev, err := parsePart(v.Build[1])
		if err != nil {
			return Tuple{}, fmt.Errorf("%w: revision %q: %w", ErrInvalidTuple, v.Build[1], err)
		}
		t.Revision = rev
	default:
		return Tuple{}, fmt.Errorf("%w: build metadata %q is not %s.N", ErrInvalidTuple, strings.Join(v.Build, "."), revisionTag)
	}
	return t, nil
}

// Bump returns the tuple that follows t for the given intent. Lower-order
// parts reset to zero.
func (t Tuple) Bump(intent bump.Bump) (Tuple, error) {
	next := t
	switch intent {
	case bump.BumpMajor:
		if t.Major == MaxPart {
			return Tuple{}, fmt.Errorf("%w: major", ErrOverflow)
		}
		next = Tuple{Major: t.Major + 1}
	case bump.BumpMinor:
		if t.Minor == MaxPart {
			return Tuple{}, fmt.Errorf("%w: minor", ErrOverflow)
		}
		next = Tuple{Major: t.Major, Minor: t.Minor + 1}
	case bump.BumpBuild:
		if t.Build == MaxPart {
			return Tuple{}, fmt.Errorf("%w: build", ErrOverflow)
		}
		next = Tuple{Major: t.Major, Minor: t.Minor, Build: t.Build + 1}
	case bump.BumpRevision:
		if t.Revision == MaxPart {
			return Tuple{}, fmt.Errorf("%w: revision", ErrOverflow)
		}
		next.Revision++
	default:
		return Tuple{}, fmt.Errorf("invalid bump %q", string(intent))
	}
	return next, nil
}
