package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// EnvPrefix namespaces every environment variable the CLI reads.
const EnvPrefix = "EXPRESSO_"

// EnvKey derives the environment variable for a setting, e.g.
// "output-dir" becomes EXPRESSO_OUTPUT_DIR.
func EnvKey(setting string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(setting, "-", "_"))
}

// Resolver applies env > CLI > default precedence and logs conflicts.
type Resolver struct {
	logger *zap.Logger
	lookup func(string) (string, bool)
}

// NewResolver creates a Resolver reading the process environment.
func NewResolver(logger *zap.Logger) Resolver {
	return Resolver{logger: logger, lookup: os.LookupEnv}
}

// WithLookup returns a copy of r that reads variables from lookup instead of the environment.
func (r Resolver) WithLookup(lookup func(string) (string, bool)) Resolver {
	r.lookup = lookup
	return r
}

func (r Resolver) env(setting string) (string, bool) {
	lookup := r.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return lookup(EnvKey(setting))
}

func (r Resolver) logConflict(setting, envVal, cliVal string) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(
		"config: conflict for "+setting,
		zap.String("env", envVal),
		zap.String("cli", cliVal),
		zap.String("decision", "using env value"),
	)
}

// String resolves a string setting.
func (r Resolver) String(setting, cliVal string, cliSet bool, defaultVal string) string {
	envVal, envSet := r.env(setting)
	envVal = strings.TrimSpace(envVal)
	cliVal = strings.TrimSpace(cliVal)

	if envSet && cliSet && envVal != cliVal {
		r.logConflict(setting, envVal, cliVal)
	}
	if envSet {
		return envVal
	}
	if cliSet {
		return cliVal
	}
	return defaultVal
}

// Bool resolves a boolean setting.
func (r Resolver) Bool(setting string, cliVal bool, cliSet bool, defaultVal bool) (bool, error) {
	envVal, envSet := r.env(setting)
	if !envSet {
		if cliSet {
			return cliVal, nil
		}
		return defaultVal, nil
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(envVal))
	if err != nil {
		return false, fmt.Errorf("config %s: invalid boolean %q: %w", setting, envVal, err)
	}

	if cliSet && parsed != cliVal {
		r.logConflict(setting, envVal, strconv.FormatBool(cliVal))
	}

	return parsed, nil
}

// StringSlice resolves a slice of strings. Env values are comma-separated.
func (r Resolver) StringSlice(setting string, cliVal []string, cliSet bool, defaultVal []string) []string {
	envVal, envSet := r.env(setting)
	if envSet {
		parts := sanitizeStrings(strings.Split(envVal, ","))
		if cliSet && !equalSlices(parts, sanitizeStrings(cliVal)) {
			r.logConflict(setting, envVal, strings.Join(cliVal, ","))
		}
		return parts
	}

	if cliSet {
		return sanitizeStrings(cliVal)
	}

	return sanitizeStrings(defaultVal)
}

func sanitizeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	clean := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		clean = append(clean, trimmed)
	}
	if len(clean) == 0 {
		return nil
	}
	return clean
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
