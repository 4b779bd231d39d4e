package branchmap

import (
	"strings"

	"github.com/nwlogic/expresso-buildmeta/internal/domain/bump"
)

// Mapping lists, per tuple part, the branch prefixes that imply bumping it.
type Mapping struct {
	MajorPrefixes    []string
	MinorPrefixes    []string
	BuildPrefixes    []string
	RevisionPrefixes []string
}

var defaultMapping = Mapping{
	MajorPrefixes:    []string{"breaking/", "major/"},
	MinorPrefixes:    []string{"feature/", "minor/"},
	BuildPrefixes:    []string{"bugfix/", "fix/", "hotfix/", "build/"},
	RevisionPrefixes: []string{"chore/", "docs/", "ci/", "revision/"},
}

// Resolver maps branch names to bump intents. Higher-impact parts win when
// prefixes overlap.
type Resolver struct {
	rules []rule
}

type rule struct {
	intent   bump.Bump
	prefixes []string
}

// NewResolver creates a Resolver using the provided mapping or the defaults when empty.
func NewResolver(mapping Mapping) Resolver {
	m := sanitize(mapping)
	if len(m.MajorPrefixes)+len(m.MinorPrefixes)+len(m.BuildPrefixes)+len(m.RevisionPrefixes) == 0 {
		m = DefaultMapping()
	}
	return Resolver{rules: []rule{
		{intent: bump.BumpMajor, prefixes: m.MajorPrefixes},
		{intent: bump.BumpMinor, prefixes: m.MinorPrefixes},
		{intent: bump.BumpBuild, prefixes: m.BuildPrefixes},
		{intent: bump.BumpRevision, prefixes: m.RevisionPrefixes},
	}}
}

// DefaultMapping returns a copy of the built-in mapping.
func DefaultMapping() Mapping {
	return sanitize(defaultMapping)
}

// Resolve determines the bump intent for branch. It returns the bump, the
// matched prefix and whether any prefix matched; unmatched branches bump the revision.
func (r Resolver) Resolve(branch string) (bump.Bump, string, bool) {
	name := strings.TrimPrefix(strings.TrimSpace(branch), "refs/heads/")
	for _, rl := range r.rules {
		for _, prefix := range rl.prefixes {
			if strings.HasPrefix(name, prefix) {
				return rl.intent, prefix, true
			}
		}
	}
	return bump.Default(), "", false
}

func sanitize(m Mapping) Mapping {
	return Mapping{
		MajorPrefixes:    trimAll(m.MajorPrefixes),
		MinorPrefixes:    trimAll(m.MinorPrefixes),
		BuildPrefixes:    trimAll(m.BuildPrefixes),
		RevisionPrefixes: trimAll(m.RevisionPrefixes),
	}
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
