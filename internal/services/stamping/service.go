package stamping

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/josephspurrier/goversioninfo"

	"github.com/nwlogic/expresso-buildmeta/internal/metadata"
	"github.com/nwlogic/expresso-buildmeta/internal/resource"
)

// Artifact names a file the service can produce.
type Artifact string

const (
	ArtifactSyso Artifact = "syso"
	ArtifactJSON Artifact = "json"
)

// JSONFileName is the name goversioninfo looks for by default.
const JSONFileName = "versioninfo.json"

var (
	ErrNilWriter       = errors.New("stamping service: nil artifact writer")
	ErrEmptyOutputDir  = errors.New("stamping service: output directory is empty")
	ErrUnknownArtifact = errors.New("stamping service: unknown artifact")
)

// ArtifactWriter persists resource artifacts.
type ArtifactWriter interface {
	WriteSyso(vi *goversioninfo.VersionInfo, path, arch string) error
	WriteJSON(vi *goversioninfo.VersionInfo, path string) error
}

// Config captures the inputs of one packaging run.
type Config struct {
	OutputDir string
	Arch      string
	Artifacts []Artifact
	Options   resource.Options
}

// Written describes one produced artifact.
type Written struct {
	Artifact Artifact
	Path     string
}

// Result captures the outcome of Generate.
type Result struct {
	Block   metadata.Block
	Written []Written
}

// Service validates the metadata and hands resource artifacts to the writer.
type Service struct {
	writer   ArtifactWriter
	metadata metadata.Metadata
}

// NewService constructs a Service instance.
func NewService(writer ArtifactWriter, md metadata.Metadata) Service {
	return Service{writer: writer, metadata: md}
}

// ParseArtifacts converts names into artifacts. An empty list defaults to syso.
func ParseArtifacts(values []string) ([]Artifact, error) {
	if len(values) == 0 {
		return []Artifact{ArtifactSyso}, nil
	}
	artifacts := make([]Artifact, 0, len(values))
	seen := make(map[Artifact]bool, len(values))
	for _, v := range values {
		a := Artifact(strings.ToLower(strings.TrimSpace(v)))
		switch a {
		case ArtifactSyso, ArtifactJSON:
		default:
			return nil, fmt.Errorf("%w %q", ErrUnknownArtifact, v)
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// Generate writes every requested artifact into cfg.OutputDir.
func (s Service) Generate(ctx context.Context, cfg Config) (Result, error) {
	if s.writer == nil {
		return Result{}, ErrNilWriter
	}

	dir := strings.TrimSpace(cfg.OutputDir)
	if dir == "" {
		return Result{}, ErrEmptyOutputDir
	}

	if err := s.metadata.Validate(); err != nil {
		return Result{}, err
	}

	artifacts := cfg.Artifacts
	if len(artifacts) == 0 {
		artifacts = []Artifact{ArtifactSyso}
	}

	for _, a := range artifacts {
		if a == ArtifactSyso {
			if err := resource.ValidateArch(cfg.Arch); err != nil {
				return Result{}, err
			}
		}
	}

	vi := resource.Build(s.metadata, cfg.Options)
	result := Result{Block: s.metadata.Block()}

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("generating %s: %w", a, err)
		}

		var path string
		var err error
		switch a {
		case ArtifactSyso:
			path = filepath.Join(dir, resource.SysoName(cfg.Arch))
			err = s.writer.WriteSyso(vi, path, cfg.Arch)
		case ArtifactJSON:
			path = filepath.Join(dir, JSONFileName)
			err = s.writer.WriteJSON(vi, path)
		default:
			return result, fmt.Errorf("%w %q", ErrUnknownArtifact, string(a))
		}
		if err != nil {
			return result, fmt.Errorf("writing %s artifact: %w", a, err)
		}

		result.Written = append(result.Written, Written{Artifact: a, Path: path})
	}

	return result, nil
}
