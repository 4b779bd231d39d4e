// Package render writes a metadata block in the formats the CLI offers.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/nwlogic/expresso-buildmeta/internal/metadata"
)

// Format selects an output representation.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatEnv   Format = "env"
)

// EnvPrefix is prepended to variable names in env output.
const EnvPrefix = "EXPRESSO_"

var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported formats in help order.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML, FormatTable, FormatEnv}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return FormatText, nil
	}
	for _, f := range Formats() {
		if f == normalized {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, value)
}

// Block writes b to w in the requested format.
func Block(w io.Writer, format Format, b metadata.Block) error {
	switch format {
	case FormatText, "":
		return writeText(w, b)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			_ = enc.Close()
			return fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flushing yaml: %w", err)
		}
		return nil
	case FormatTable:
		writeTable(w, b)
		return nil
	case FormatEnv:
		return writeEnv(w, b)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, string(format))
	}
}

func writeText(w io.Writer, b metadata.Block) error {
	fields := b.Fields()
	width := 0
	for _, f := range fields {
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width+1, f.Name+":", f.Value); err != nil {
			return fmt.Errorf("writing text: %w", err)
		}
	}
	return nil
}

func writeTable(w io.Writer, b metadata.Block) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Field", "Value"})
	for _, f := range b.Fields() {
		tw.AppendRow(table.Row{f.Name, f.Value})
	}
	tw.SetStyle(table.StyleRounded)
	tw.Render()
}

func writeEnv(w io.Writer, b metadata.Block) error {
	for _, f := range b.Fields() {
		if _, err := fmt.Fprintf(w, "%s=%s\n", EnvName(f.Name), shellQuote(f.Value)); err != nil {
			return fmt.Errorf("writing env: %w", err)
		}
	}
	return nil
}

// EnvName maps a field display name to its environment variable name.
func EnvName(field string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(field, " ", "_"))
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
