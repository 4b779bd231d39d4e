package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/nwlogic/expresso-buildmeta/internal/metadata"
)

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: " YAML ", want: FormatYAML},
		{input: "", want: FormatText},
		{input: "table", want: FormatTable},
		{input: "xml", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseFormat(tc.input)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Fatalf("parse %q: expected ErrUnknownFormat, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parse %q: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: want %s got %s", tc.input, tc.want, got)
		}
	}
}

func TestTextAlignsValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Block(&buf, FormatText, metadata.Default().Block()); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"Version:       4.7.4.0",
		"File Version:  4.7.4.0",
		"Company:       Northwest Logic, Inc.",
		"Copyright:     2005-2017 Northwest Logic, Inc.",
		"Product:       Expresso PciExpress",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("text:\nwant %q\ngot  %q", want, buf.String())
	}
}

func TestJSONAndYAMLDecodeToBlock(t *testing.T) {
	t.Parallel()

	block := metadata.Default().Block()

	var jsonBuf bytes.Buffer
	if err := Block(&jsonBuf, FormatJSON, block); err != nil {
		t.Fatalf("render json: %v", err)
	}
	var fromJSON metadata.Block
	if err := json.Unmarshal(jsonBuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if fromJSON != block {
		t.Fatalf("json: want %+v got %+v", block, fromJSON)
	}
	if !strings.Contains(jsonBuf.String(), `"fileVersion": "4.7.4.0"`) {
		t.Fatalf("expected camelCase key in %s", jsonBuf.String())
	}

	var yamlBuf bytes.Buffer
	if err := Block(&yamlBuf, FormatYAML, block); err != nil {
		t.Fatalf("render yaml: %v", err)
	}
	var fromYAML metadata.Block
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if fromYAML != block {
		t.Fatalf("yaml: want %+v got %+v", block, fromYAML)
	}
}

func TestTableContainsRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Block(&buf, FormatTable, metadata.Default().Block()); err != nil {
		t.Fatalf("render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"FIELD", "File Version", "2005-2017 Northwest Logic, Inc."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
}

func TestEnvQuotesValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	block := metadata.Default().Block()
	block.Product = "Bob's Tool"
	if err := Block(&buf, FormatEnv, block); err != nil {
		t.Fatalf("render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"EXPRESSO_VERSION='4.7.4.0'\n",
		"EXPRESSO_FILE_VERSION='4.7.4.0'\n",
		"EXPRESSO_COMPANY='Northwest Logic, Inc.'\n",
		`EXPRESSO_PRODUCT='Bob'\''s Tool'`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in env output:\n%s", want, out)
		}
	}
}

func TestWriterErrorsSurface(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatText, FormatJSON, FormatYAML, FormatEnv} {
		if err := Block(failingWriter{}, format, metadata.Default().Block()); err == nil {
			t.Fatalf("%s: expected write error", format)
		}
	}
}

func TestUnknownFormat(t *testing.T) {
	t.Parallel()

	err := Block(&bytes.Buffer{}, Format("xml"), metadata.Block{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
