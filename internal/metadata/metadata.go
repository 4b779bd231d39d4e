// Package metadata defines the version metadata entity and the rendered
// block that ends up in a binary's descriptive headers.
package metadata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nwlogic/expresso-buildmeta/internal/domain/quad"
	"github.com/nwlogic/expresso-buildmeta/internal/version"
)

var ErrInvalidMetadata = errors.New("invalid metadata")

// Field names as shown in a file-properties viewer.
const (
	FieldVersion     = "Version"
	FieldFileVersion = "File Version"
	FieldCompany     = "Company"
	FieldCopyright   = "Copyright"
	FieldProduct     = "Product"
)

// Metadata is the typed form of the build metadata descriptor.
type Metadata struct {
	Version        quad.Tuple
	FileVersion    quad.Tuple
	Company        string
	CopyrightRange string
	Product        string
}

// Default returns the metadata compiled into this build.
func Default() Metadata {
	tuple := quad.MustParse(version.VersionString)
	return Metadata{
		Version:        tuple,
		FileVersion:    tuple,
		Company:        version.Company,
		CopyrightRange: version.CopyrightRange,
		Product:        version.Product,
	}
}

// Copyright joins the year range and company the way the notice is displayed.
func (m Metadata) Copyright() string {
	return strings.TrimSpace(m.CopyrightRange + " " + m.Company)
}

// Validate reports every string field that cannot be embedded. Any tuple,
// 0.0.0.0 included, is a valid VERSIONINFO version.
func (m Metadata) Validate() error {
	var errs []error
	if strings.TrimSpace(m.Company) == "" {
		errs = append(errs, fmt.Errorf("%s: empty", FieldCompany))
	}
	if strings.TrimSpace(m.CopyrightRange) == "" {
		errs = append(errs, fmt.Errorf("%s: empty year range", FieldCopyright))
	}
	if strings.TrimSpace(m.Product) == "" {
		errs = append(errs, fmt.Errorf("%s: empty", FieldProduct))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidMetadata, errors.Join(errs...))
}

// Block renders the metadata into display strings.
func (m Metadata) Block() Block {
	return Block{
		Version:     m.Version.String(),
		FileVersion: m.FileVersion.String(),
		Company:     m.Company,
		Copyright:   m.Copyright(),
		Product:     m.Product,
	}
}

// Block is the rendered metadata as it appears in a binary's header.
type Block struct {
	Version     string `json:"version" yaml:"version"`
	FileVersion string `json:"fileVersion" yaml:"fileVersion"`
	Company     string `json:"company" yaml:"company"`
	Copyright   string `json:"copyright" yaml:"copyright"`
	Product     string `json:"product" yaml:"product"`
}

// Field is a single named entry of a Block.
type Field struct {
	Name  string
	Value string
}

// Fields lists the block entries in display order.
func (b Block) Fields() []Field {
	return []Field{
		{Name: FieldVersion, Value: b.Version},
		{Name: FieldFileVersion, Value: b.FileVersion},
		{Name: FieldCompany, Value: b.Company},
		{Name: FieldCopyright, Value: b.Copyright},
		{Name: FieldProduct, Value: b.Product},
	}
}

// Mismatch describes one field that differs from the expected value.
type Mismatch struct {
	Field    string
	Expected string
	Actual   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %q, got %q", m.Field, m.Expected, m.Actual)
}

// Diff compares b against expected. Empty expected fields are skipped.
func (b Block) Diff(expected Block) []Mismatch {
	actual := b.Fields()
	var mismatches []Mismatch
	for i, want := range expected.Fields() {
		if want.Value == "" {
			continue
		}
		if actual[i].Value != want.Value {
			mismatches = append(mismatches, Mismatch{Field: want.Name, Expected: want.Value, Actual: actual[i].Value})
		}
	}
	return mismatches
}
