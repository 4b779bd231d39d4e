package quad

import (
	"errors"
	"strings"
	"testing"

	semver "github.com/blang/semver/v4"

	"github.com/nwlogic/expresso-buildmeta/internal/domain/bump"
)

func TestParseSplitsIntoFourParts(t *testing.T) {
	t.Parallel()

	tuple, err := Parse("4.7.4.0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tuple.Parts() != [4]int{4, 7, 4, 0} {
		t.Fatalf("unexpected parts %v", tuple.Parts())
	}
	if tuple.String() != "4.7.4.0" {
		t.Fatalf("round trip: got %s", tuple.String())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		overflow bool
	}{
		{name: "three parts", input: "4.7.4"},
		{name: "five parts", input: "4.7.4.0.1"},
		{name: "wildcard", input: "4.7.*"},
		{name: "wildcard revision", input: "4.7.4.*"},
		{name: "negative", input: "4.7.4.-1"},
		{name: "plus sign", input: "4.7.+4.0"},
		{name: "empty part", input: "4..4.0"},
		{name: "whitespace", input: " 4.7.4.0"},
		{name: "empty", input: ""},
		{name: "too large", input: "4.7.4.70000", overflow: true},
	}

	for _, testCase := range tests {
		tc := testCase
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tc.input)
			if !errors.Is(err, ErrInvalidTuple) {
				t.Fatalf("expected ErrInvalidTuple for %q, got %v", tc.input, err)
			}
			if tc.overflow && !errors.Is(err, ErrOverflow) {
				t.Fatalf("expected ErrOverflow for %q, got %v", tc.input, err)
			}
		})
	}
}

func TestParseLoose(t *testing.T) {
	t.Parallel()

	tests := map[string]Tuple{
		"4.7.4.0":     New(4, 7, 4, 0),
		"v4.7.4":      New(4, 7, 4, 0),
		"4.8":         New(4, 8, 0, 0),
		"4.7.4+rev.3": New(4, 7, 4, 3),
		" 4.7.5.1 ":   New(4, 7, 5, 1),
	}

	for input, want := range tests {
		got, err := ParseLoose(input)
		if err != nil {
			t.Fatalf("parse loose %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse loose %q: want %s got %s", input, want, got)
		}
	}

	if _, err := ParseLoose("4.7.5-rc.1"); !errors.Is(err, ErrInvalidTuple) {
		t.Fatalf("expected pre-release to be rejected, got %v", err)
	}
}

func TestParseLooseKeepsStrictErrorsForFourParts(t *testing.T) {
	t.Parallel()

	_, err := ParseLoose("4.7.4.70000")
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if !strings.Contains(err.Error(), "part 4") {
		t.Fatalf("expected the failing part to be named, got %v", err)
	}

	if _, err := ParseLoose("4.7.x.0"); !errors.Is(err, ErrInvalidTuple) {
		t.Fatalf("expected ErrInvalidTuple, got %v", err)
	}
}

func TestFromSemverRejectsForeignBuildMetadata(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"4.7.4+build.9", "4.7.4+rev", "4.7.4+rev.1.2", "4.7.4+sha.abc"} {
		v, err := semver.Parse(input)
		if err != nil {
			t.Fatalf("semver parse %q: %v", input, err)
		}
		if _, err := FromSemver(v); !errors.Is(err, ErrInvalidTuple) {
			t.Fatalf("expected %q to be rejected, got %v", input, err)
		}
		if _, err := ParseLoose(input); !errors.Is(err, ErrInvalidTuple) {
			t.Fatalf("expected loose parse of %q to be rejected, got %v", input, err)
		}
	}
}

func TestSemverMapping(t *testing.T) {
	t.Parallel()

	if got := New(4, 7, 4, 0).Semver().String(); got != "4.7.4" {
		t.Fatalf("semver: want 4.7.4 got %s", got)
	}

	withRev := New(4, 7, 4, 2).Semver()
	if withRev.String() != "4.7.4+rev.2" {
		t.Fatalf("semver: want 4.7.4+rev.2 got %s", withRev.String())
	}

	back, err := FromSemver(withRev)
	if err != nil {
		t.Fatalf("from semver: %v", err)
	}
	if back != New(4, 7, 4, 2) {
		t.Fatalf("from semver: got %s", back)
	}

	if _, err := FromSemver(semver.Version{Major: 70000}); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	base := New(4, 7, 4, 0)
	if base.Compare(base) != 0 {
		t.Fatalf("expected equal")
	}
	if !base.Less(New(4, 7, 4, 1)) {
		t.Fatalf("expected revision to order")
	}
	if !New(4, 7, 10, 0).Less(New(4, 8, 0, 0)) {
		t.Fatalf("expected minor to dominate build")
	}
	if New(5, 0, 0, 0).Compare(base) != 1 {
		t.Fatalf("expected major to dominate")
	}
}

func TestBump(t *testing.T) {
	t.Parallel()

	base := New(4, 7, 4, 2)
	tests := []struct {
		intent bump.Bump
		want   string
	}{
		{intent: bump.BumpMajor, want: "5.0.0.0"},
		{intent: bump.BumpMinor, want: "4.8.0.0"},
		{intent: bump.BumpBuild, want: "4.7.5.0"},
		{intent: bump.BumpRevision, want: "4.7.4.3"},
	}

	for _, tc := range tests {
		got, err := base.Bump(tc.intent)
		if err != nil {
			t.Fatalf("bump %s: %v", tc.intent, err)
		}
		if got.String() != tc.want {
			t.Fatalf("bump %s: want %s got %s", tc.intent, tc.want, got)
		}
	}

	if _, err := New(4, 7, 4, MaxPart).Bump(bump.BumpRevision); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := base.Bump(bump.Bump("sideways")); err == nil {
		t.Fatalf("expected invalid bump error")
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustParse("4.7")
}
