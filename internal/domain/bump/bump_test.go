package bump

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Bump
		wantErr bool
	}{
		{input: "major", want: BumpMajor},
		{input: " Minor ", want: BumpMinor},
		{input: "build", want: BumpBuild},
		{input: "patch", want: BumpBuild},
		{input: "revision", want: BumpRevision},
		{input: "huge", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, testCase := range tests {
		tc := testCase
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("parse %q: want %s got %s", tc.input, tc.want, got)
			}
		})
	}
}

func TestMaxPicksHighestImpact(t *testing.T) {
	t.Parallel()

	if got := Max(BumpRevision, BumpMinor, BumpBuild); got != BumpMinor {
		t.Fatalf("expected minor, got %s", got)
	}
	if got := Max(); got != BumpRevision {
		t.Fatalf("expected default revision, got %s", got)
	}
}

func TestStringFallsBackToRevision(t *testing.T) {
	t.Parallel()

	if got := Bump("bogus").String(); got != "revision" {
		t.Fatalf("expected revision fallback, got %s", got)
	}
}
