package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nwlogic/expresso-buildmeta/internal/config"
	"github.com/nwlogic/expresso-buildmeta/internal/domain/branchmap"
	"github.com/nwlogic/expresso-buildmeta/internal/domain/bump"
	"github.com/nwlogic/expresso-buildmeta/internal/domain/quad"
	"github.com/nwlogic/expresso-buildmeta/internal/logging"
	"github.com/nwlogic/expresso-buildmeta/internal/metadata"
	"github.com/nwlogic/expresso-buildmeta/internal/render"
	"github.com/nwlogic/expresso-buildmeta/internal/resource"
	"github.com/nwlogic/expresso-buildmeta/internal/services/stamping"
	"github.com/nwlogic/expresso-buildmeta/internal/stamp"
	"github.com/nwlogic/expresso-buildmeta/internal/version"
)

const binaryName = "expresso-buildmeta"

const (
	flagLogLevel         = "log-level"
	flagFormat           = "format"
	flagFile             = "file"
	flagExpectVersion    = "expect-version"
	flagExpectFileVer    = "expect-file-version"
	flagExpectCompany    = "expect-company"
	flagExpectCopyright  = "expect-copyright"
	flagExpectProduct    = "expect-product"
	flagOutputDir        = "output-dir"
	flagArch             = "arch"
	flagArtifacts        = "artifacts"
	flagDescription      = "description"
	flagOriginalFilename = "original-filename"
	flagInternalName     = "internal-name"
	flagPackage          = "package"
	flagCommit           = "commit"
	flagBuildDate        = "build-date"
	flagStrip            = "strip"
	flagBump             = "bump"
	flagFrom             = "from"
	flagSemver           = "semver"
	flagBranch           = "branch"
	flagBranchMajor      = "branch-major-prefixes"
	flagBranchMinor      = "branch-minor-prefixes"
	flagBranchBuild      = "branch-build-prefixes"
	flagBranchRevision   = "branch-revision-prefixes"
)

// ErrVerificationFailed is returned when the metadata block differs from expectations.
var ErrVerificationFailed = errors.New("metadata verification failed")

// Execute runs the CLI root command with the provided context.
func Execute(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return newRootCommand(os.LookupEnv).ExecuteContext(ctx)
}

type rootFlagSet struct {
	logLevel *stringFlag
	lookup   func(string) (string, bool)
}

type runtimeConfig struct {
	resolver config.Resolver
	logger   *zap.Logger
}

func newRootCommand(lookup func(string) (string, bool)) *cobra.Command {
	cmd := &cobra.Command{
		Use:           binaryName,
		Short:         "Expresso PciExpress build metadata",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version.VersionString
	cmd.SetVersionTemplate(binaryName + " {{.Version}}\n")

	flags := &rootFlagSet{
		logLevel: bindStringFlag(cmd.PersistentFlags(), flagLogLevel, "", logging.LevelTerse, "Log verbosity (quiet, terse or verbose)"),
		lookup:   lookup,
	}

	cmd.AddCommand(
		newShowCommand(flags),
		newVerifyCommand(flags),
		newGenerateCommand(flags),
		newLdflagsCommand(flags),
		newNextCommand(flags),
		newVersionCommand(),
	)

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build metadata of this tool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\nbuild date: %s\ncommit: %s\n",
				binaryName, version.VersionString, version.BuildDate, version.Commit); err != nil {
				return fmt.Errorf("writing version info: %w", err)
			}
			return nil
		},
	}
}

func newShowCommand(rootFlags *rootFlagSet) *cobra.Command {
	var formatFlag *stringFlag

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the metadata block embedded into Expresso binaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := buildRuntime(cmd, rootFlags)
			if err != nil {
				return err
			}
			defer cleanup()

			format, err := render.ParseFormat(formatFlag.Value(rt.resolver))
			if err != nil {
				return err
			}

			md := metadata.Default()
			rt.logger.Debug("rendering metadata", zap.String("format", string(format)), zap.String("version", md.Version.String()))
			return render.Block(cmd.OutOrStdout(), format, md.Block())
		},
	}

	formatFlag = bindStringFlag(cmd.Flags(), flagFormat, "o", string(render.FormatText), "Output format ("+formatNames()+")")
	return cmd
}

func formatNames() string {
	names := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

type verifyFlagSet struct {
	file        *stringFlag
	version     *stringFlag
	fileVersion *stringFlag
	company     *stringFlag
	copyright   *stringFlag
	product     *stringFlag
}

func newVerifyCommand(rootFlags *rootFlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the metadata block against expected values",
	}

	fs := cmd.Flags()
	vf := &verifyFlagSet{
		file:        bindStringFlag(fs, flagFile, "f", "", "Verify a versioninfo.json file instead of the compiled-in descriptor"),
		version:     bindStringFlag(fs, flagExpectVersion, "", "", "Expected product version"),
		fileVersion: bindStringFlag(fs, flagExpectFileVer, "", "", "Expected file version"),
		company:     bindStringFlag(fs, flagExpectCompany, "", "", "Expected company name"),
		copyright:   bindStringFlag(fs, flagExpectCopyright, "", "", "Expected copyright notice"),
		product:     bindStringFlag(fs, flagExpectProduct, "", "", "Expected product name"),
	}

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		rt, cleanup, err := buildRuntime(cmd, rootFlags)
		if err != nil {
			return err
		}
		defer cleanup()

		expected := metadata.Block{
			Version:     vf.version.Value(rt.resolver),
			FileVersion: vf.fileVersion.Value(rt.resolver),
			Company:     vf.company.Value(rt.resolver),
			Copyright:   vf.copyright.Value(rt.resolver),
			Product:     vf.product.Value(rt.resolver),
		}

		var block metadata.Block
		source := "descriptor"
		if file := vf.file.Value(rt.resolver); file != "" {
			source = file
			block, err = blockFromFile(file)
			if err != nil {
				return err
			}
			expected = fillExpected(expected, metadata.Default().Block())
		} else {
			block, err = blockFromDescriptor()
			if err != nil {
				return err
			}
		}

		log := rt.logger.With(zap.String("source", source))
		mismatches := block.Diff(expected)
		for _, m := range mismatches {
			log.Error("metadata mismatch", zap.String("field", m.Field), zap.String("expected", m.Expected), zap.String("actual", m.Actual))
		}
		if len(mismatches) > 0 {
			return fmt.Errorf("%w: %d field(s) differ", ErrVerificationFailed, len(mismatches))
		}

		log.Info("metadata verified", zap.String("version", block.Version), zap.String("product", block.Product))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "verified %s %s\n", block.Product, block.Version); err != nil {
			return fmt.Errorf("writing verification result: %w", err)
		}
		return nil
	}

	return cmd
}

// blockFromDescriptor reads the descriptor twice; both reads must agree.
func blockFromDescriptor() (metadata.Block, error) {
	first := metadata.Default()
	if err := first.Validate(); err != nil {
		return metadata.Block{}, err
	}
	block := first.Block()
	if drift := block.Diff(metadata.Default().Block()); len(drift) > 0 {
		return metadata.Block{}, fmt.Errorf("%w: descriptor changed between reads (%s)", ErrVerificationFailed, drift[0])
	}
	return block, checkTuples(block)
}

func blockFromFile(path string) (metadata.Block, error) {
	vi, err := resource.ReadJSON(path)
	if err != nil {
		return metadata.Block{}, err
	}
	block, err := resource.BlockFromVersionInfo(vi)
	if err != nil {
		return metadata.Block{}, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	return block, checkTuples(block)
}

func checkTuples(block metadata.Block) error {
	for _, v := range []string{block.Version, block.FileVersion} {
		if _, err := quad.Parse(v); err != nil {
			return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
		}
	}
	return nil
}

func fillExpected(expected, fallback metadata.Block) metadata.Block {
	pick := func(value, def string) string {
		if value != "" {
			return value
		}
		return def
	}
	return metadata.Block{
		Version:     pick(expected.Version, fallback.Version),
		FileVersion: pick(expected.FileVersion, fallback.FileVersion),
		Company:     pick(expected.Company, fallback.Company),
		Copyright:   pick(expected.Copyright, fallback.Copyright),
		Product:     pick(expected.Product, fallback.Product),
	}
}

type generateFlagSet struct {
	outputDir        *stringFlag
	arch             *stringFlag
	artifacts        *stringSliceFlag
	description      *stringFlag
	originalFilename *stringFlag
	internalName     *stringFlag
}

func newGenerateCommand(rootFlags *rootFlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the Windows version resource (.syso) and/or versioninfo.json",
	}

	fs := cmd.Flags()
	gf := &generateFlagSet{
		outputDir:        bindStringFlag(fs, flagOutputDir, "d", ".", "Directory that receives the artifacts"),
		arch:             bindStringFlag(fs, flagArch, "", runtime.GOARCH, "Target architecture of the .syso (386, amd64, arm, arm64)"),
		artifacts:        bindStringSliceFlag(fs, flagArtifacts, "a", []string{string(stamping.ArtifactSyso)}, "Artifacts to write (syso, json)"),
		description:      bindStringFlag(fs, flagDescription, "", "", "FileDescription string"),
		originalFilename: bindStringFlag(fs, flagOriginalFilename, "", "", "OriginalFilename string"),
		internalName:     bindStringFlag(fs, flagInternalName, "", "", "InternalName string"),
	}

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		rt, cleanup, err := buildRuntime(cmd, rootFlags)
		if err != nil {
			return err
		}
		defer cleanup()

		artifacts, err := stamping.ParseArtifacts(gf.artifacts.Value(rt.resolver))
		if err != nil {
			return err
		}

		cfg := stamping.Config{
			OutputDir: gf.outputDir.Value(rt.resolver),
			Arch:      gf.arch.Value(rt.resolver),
			Artifacts: artifacts,
			Options: resource.Options{
				FileDescription:  gf.description.Value(rt.resolver),
				OriginalFilename: gf.originalFilename.Value(rt.resolver),
				InternalName:     gf.internalName.Value(rt.resolver),
			},
		}

		service := stamping.NewService(resource.FileWriter{}, metadata.Default())
		result, err := service.Generate(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		log := rt.logger.With(zap.String("version", result.Block.Version), zap.String("arch", cfg.Arch))
		for _, w := range result.Written {
			log.Info("artifact written", zap.String("artifact", string(w.Artifact)), zap.String("path", w.Path))
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), w.Path); err != nil {
				return fmt.Errorf("writing generate result: %w", err)
			}
		}
		return nil
	}

	return cmd
}

func newLdflagsCommand(rootFlags *rootFlagSet) *cobra.Command {
	var pkgFlag, commitFlag, dateFlag *stringFlag
	var stripFlag *boolFlag

	cmd := &cobra.Command{
		Use:   "ldflags",
		Short: "Print linker flags that stamp build date and commit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := buildRuntime(cmd, rootFlags)
			if err != nil {
				return err
			}
			defer cleanup()

			strip, err := stripFlag.Value(rt.resolver)
			if err != nil {
				return err
			}

			flags, err := stamp.String(stamp.Options{
				Package:   pkgFlag.Value(rt.resolver),
				BuildDate: dateFlag.Value(rt.resolver),
				Commit:    commitFlag.Value(rt.resolver),
				Strip:     strip,
			})
			if err != nil {
				return err
			}
			rt.logger.Debug("linker flags computed", zap.String("ldflags", flags))

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), flags); err != nil {
				return fmt.Errorf("writing ldflags: %w", err)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	pkgFlag = bindStringFlag(fs, flagPackage, "", stamp.DefaultPackage, "Import path of the package holding BuildDate and Commit")
	commitFlag = bindStringFlag(fs, flagCommit, "", "", "Commit SHA to stamp")
	dateFlag = bindStringFlag(fs, flagBuildDate, "", "", "Build date to stamp (default: now, RFC 3339 UTC)")
	stripFlag = bindBoolFlag(fs, flagStrip, "", false, "Add -s -w to strip symbol tables")

	return cmd
}

type nextFlagSet struct {
	bump     *stringFlag
	from     *stringFlag
	semver   *boolFlag
	branches *stringSliceFlag
	major    *stringSliceFlag
	minor    *stringSliceFlag
	build    *stringSliceFlag
	revision *stringSliceFlag
}

// resolveBump prefers an explicit --bump, then the highest-impact intent
// among the given branches, then the default.
func (f *nextFlagSet) resolveBump(resolver config.Resolver, logger *zap.Logger) (bump.Bump, error) {
	if value := f.bump.Value(resolver); value != "" {
		return bump.Parse(value)
	}

	branches := f.branches.Value(resolver)
	if len(branches) == 0 {
		return bump.Default(), nil
	}

	mapping := branchmap.NewResolver(branchmap.Mapping{
		MajorPrefixes:    f.major.Value(resolver),
		MinorPrefixes:    f.minor.Value(resolver),
		BuildPrefixes:    f.build.Value(resolver),
		RevisionPrefixes: f.revision.Value(resolver),
	})
	intents := make([]bump.Bump, 0, len(branches))
	for _, branch := range branches {
		intent, prefix, matched := mapping.Resolve(branch)
		logger.Debug("bump inferred from branch",
			zap.String("branch", branch),
			zap.String("bump", intent.String()),
			zap.Bool("branchMatched", matched),
			zap.String("matchedPrefix", prefix),
		)
		intents = append(intents, intent)
	}
	return bump.Max(intents...), nil
}

func newNextCommand(rootFlags *rootFlagSet) *cobra.Command {
	var nf *nextFlagSet

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the version tuple that follows the current one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := buildRuntime(cmd, rootFlags)
			if err != nil {
				return err
			}
			defer cleanup()

			intent, err := nf.resolveBump(rt.resolver, rt.logger)
			if err != nil {
				return err
			}

			base := metadata.Default().Version
			if from := nf.from.Value(rt.resolver); from != "" {
				base, err = quad.ParseLoose(from)
				if err != nil {
					return err
				}
			}

			next, err := base.Bump(intent)
			if err != nil {
				return err
			}

			asSemver, err := nf.semver.Value(rt.resolver)
			if err != nil {
				return err
			}

			rt.logger.Debug("next version computed", zap.String("base", base.String()), zap.String("bump", intent.String()), zap.String("next", next.String()))

			out := next.String()
			if asSemver {
				out = next.Semver().String()
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
				return fmt.Errorf("writing next version: %w", err)
			}
			return nil
		},
	}

	defaults := branchmap.DefaultMapping()
	fs := cmd.Flags()
	nf = &nextFlagSet{
		bump:     bindStringFlag(fs, flagBump, "b", "", "Part to increment (major, minor, build, revision); default inferred from --branch, else revision"),
		from:     bindStringFlag(fs, flagFrom, "", "", "Base version (default: the compiled-in version)"),
		semver:   bindBoolFlag(fs, flagSemver, "", false, "Print the result as semver"),
		branches: bindStringSliceFlag(fs, flagBranch, "", nil, "Branch names used to infer the bump; repeatable, the highest-impact intent wins"),
		major:    bindStringSliceFlag(fs, flagBranchMajor, "", defaults.MajorPrefixes, "Branch prefixes that imply a major bump"),
		minor:    bindStringSliceFlag(fs, flagBranchMinor, "", defaults.MinorPrefixes, "Branch prefixes that imply a minor bump"),
		build:    bindStringSliceFlag(fs, flagBranchBuild, "", defaults.BuildPrefixes, "Branch prefixes that imply a build bump"),
		revision: bindStringSliceFlag(fs, flagBranchRevision, "", defaults.RevisionPrefixes, "Branch prefixes that imply a revision bump"),
	}

	return cmd
}

func buildRuntime(cmd *cobra.Command, flags *rootFlagSet) (runtimeConfig, func(), error) {
	lookup := flags.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	nopResolver := config.NewResolver(zap.NewNop()).WithLookup(lookup)
	logLevel := flags.logLevel.Value(nopResolver)

	logger, err := logging.NewWithWriter(logLevel, cmd.ErrOrStderr())
	if err != nil {
		return runtimeConfig{}, nil, fmt.Errorf("configuring logger: %w", err)
	}

	resolver := config.NewResolver(logger).WithLookup(lookup)
	_ = flags.logLevel.Value(resolver)

	cleanup := func() {
		_ = logger.Sync()
	}

	return runtimeConfig{resolver: resolver, logger: logger}, cleanup, nil
}
