package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/nwlogic/expresso-buildmeta/internal/config"
)

type flagBase struct {
	fs   *pflag.FlagSet
	name string
}

func (b flagBase) changed() bool {
	if b.fs == nil || b.name == "" {
		return false
	}
	return b.fs.Changed(b.name)
}

func describeUsage(usage, name string) string {
	trimmed := strings.TrimSpace(usage)
	envKey := config.EnvKey(name)
	if trimmed == "" {
		return fmt.Sprintf("env: %s", envKey)
	}
	return fmt.Sprintf("%s (env: %s)", trimmed, envKey)
}

type stringFlag struct {
	base       flagBase
	defaultVal string
	value      string
}

func bindStringFlag(fs *pflag.FlagSet, name, short, defaultVal, usage string) *stringFlag {
	f := &stringFlag{
		base:       flagBase{fs: fs, name: name},
		defaultVal: defaultVal,
		value:      defaultVal,
	}
	if fs == nil {
		return f
	}
	if short != "" {
		fs.StringVarP(&f.value, name, short, defaultVal, describeUsage(usage, name))
	} else {
		fs.StringVar(&f.value, name, defaultVal, describeUsage(usage, name))
	}
	return f
}

func (f *stringFlag) Value(resolver config.Resolver) string {
	return resolver.String(f.base.name, f.value, f.base.changed(), f.defaultVal)
}

type boolFlag struct {
	base       flagBase
	defaultVal bool
	value      bool
}

func bindBoolFlag(fs *pflag.FlagSet, name, short string, defaultVal bool, usage string) *boolFlag {
	f := &boolFlag{
		base:       flagBase{fs: fs, name: name},
		defaultVal: defaultVal,
		value:      defaultVal,
	}
	if fs == nil {
		return f
	}
	if short != "" {
		fs.BoolVarP(&f.value, name, short, defaultVal, describeUsage(usage, name))
	} else {
		fs.BoolVar(&f.value, name, defaultVal, describeUsage(usage, name))
	}
	return f
}

func (f *boolFlag) Value(resolver config.Resolver) (bool, error) {
	return resolver.Bool(f.base.name, f.value, f.base.changed(), f.defaultVal)
}

type stringSliceFlag struct {
	base       flagBase
	defaultVal []string
	value      []string
}

func bindStringSliceFlag(fs *pflag.FlagSet, name, short string, defaultVal []string, usage string) *stringSliceFlag {
	f := &stringSliceFlag{
		base:       flagBase{fs: fs, name: name},
		defaultVal: append([]string(nil), defaultVal...),
		value:      append([]string(nil), defaultVal...),
	}
	if fs == nil {
		return f
	}
	if short != "" {
		fs.StringSliceVarP(&f.value, name, short, defaultVal, describeUsage(usage, name))
	} else {
		fs.StringSliceVar(&f.value, name, defaultVal, describeUsage(usage, name))
	}
	return f
}

func (f *stringSliceFlag) Value(resolver config.Resolver) []string {
	return resolver.StringSlice(f.base.name, f.value, f.base.changed(), f.defaultVal)
}
