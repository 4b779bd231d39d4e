// Package stamp builds the linker flags that stamp build metadata into the
// version package at link time.
package stamp

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultPackage is the import path whose variables the flags target.
const DefaultPackage = "github.com/nwlogic/expresso-buildmeta/internal/version"

// ErrUnquotable is returned for values the go command's -ldflags splitter
// cannot carry: it has no escapes, so a value may hold ' or " but not both.
var ErrUnquotable = errors.New("value cannot be quoted for -ldflags")

// Options selects what the flags stamp.
type Options struct {
	Package   string
	BuildDate string
	Commit    string
	Strip     bool
	Now       func() time.Time
}

// Flags returns the individual -ldflags arguments. An empty BuildDate is
// filled from Now; an empty Commit is skipped.
func Flags(opts Options) ([]string, error) {
	pkg := strings.TrimSpace(opts.Package)
	if pkg == "" {
		pkg = DefaultPackage
	}

	date := strings.TrimSpace(opts.BuildDate)
	if date == "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		date = now().UTC().Format(time.RFC3339)
	}

	var flags []string
	if opts.Strip {
		flags = append(flags, "-s", "-w")
	}
	buildDate, err := define(pkg, "BuildDate", date)
	if err != nil {
		return nil, err
	}
	flags = append(flags, buildDate)
	if commit := strings.TrimSpace(opts.Commit); commit != "" {
		commitFlag, err := define(pkg, "Commit", commit)
		if err != nil {
			return nil, err
		}
		flags = append(flags, commitFlag)
	}
	return flags, nil
}

// String joins Flags into one value for go build -ldflags.
func String(opts Options) (string, error) {
	flags, err := Flags(opts)
	if err != nil {
		return "", err
	}
	return strings.Join(flags, " "), nil
}

// define quotes the assignment the way cmd/go splits -ldflags: a field
// wrapped in ' or " is taken literally up to the matching quote.
func define(pkg, name, value string) (string, error) {
	assignment := pkg + "." + name + "=" + value
	switch {
	case strings.Contains(assignment, "'") && strings.Contains(assignment, `"`):
		return "", fmt.Errorf("%w: %s", ErrUnquotable, assignment)
	case strings.Contains(assignment, "'"):
		return `-X "` + assignment + `"`, nil
	case strings.ContainsAny(assignment, " \t\n\r\""):
		return "-X '" + assignment + "'", nil
	default:
		return "-X " + assignment, nil
	}
}
