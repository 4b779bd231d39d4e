// Package resource turns version metadata into a Windows VERSIONINFO
// resource that the Go linker embeds when a .syso file sits next to main.
package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/josephspurrier/goversioninfo"

	"github.com/nwlogic/expresso-buildmeta/internal/domain/quad"
	"github.com/nwlogic/expresso-buildmeta/internal/metadata"
)

var ErrUnsupportedArch = errors.New("unsupported architecture")

var supportedArchs = map[string]struct{}{
	"386":   {},
	"amd64": {},
	"arm":   {},
	"arm64": {},
}

const (
	fileFlagsMask = "3f"
	fileFlags     = "00"
	fileOSNTWin32 = "040004"
	fileTypeApp   = "01"
	fileSubType   = "00"

	langUSEnglish  = 0x0409
	charsetUnicode = 0x04B0
)

// Options carries the optional StringFileInfo entries that are not part of
// the descriptor.
type Options struct {
	FileDescription  string
	InternalName     string
	OriginalFilename string
}

// Build assembles the VERSIONINFO structure for md.
func Build(md metadata.Metadata, opts Options) *goversioninfo.VersionInfo {
	block := md.Block()

	vi := &goversioninfo.VersionInfo{}
	vi.FixedFileInfo = goversioninfo.FixedFileInfo{
		FileVersion:    fileVersion(md.FileVersion),
		ProductVersion: fileVersion(md.Version),
		FileFlagsMask:  fileFlagsMask,
		FileFlags:      fileFlags,
		FileOS:         fileOSNTWin32,
		FileType:       fileTypeApp,
		FileSubType:    fileSubType,
	}
	vi.StringFileInfo = goversioninfo.StringFileInfo{
		CompanyName:      block.Company,
		FileDescription:  strings.TrimSpace(opts.FileDescription),
		FileVersion:      block.FileVersion,
		InternalName:     strings.TrimSpace(opts.InternalName),
		LegalCopyright:   block.Copyright,
		OriginalFilename: strings.TrimSpace(opts.OriginalFilename),
		ProductName:      block.Product,
		ProductVersion:   block.Version,
	}
	vi.VarFileInfo = goversioninfo.VarFileInfo{
		Translation: goversioninfo.Translation{
			LangID:    goversioninfo.LangID(langUSEnglish),
			CharsetID: goversioninfo.CharsetID(charsetUnicode),
		},
	}
	return vi
}

func fileVersion(t quad.Tuple) goversioninfo.FileVersion {
	return goversioninfo.FileVersion{
		Major: int(t.Major),
		Minor: int(t.Minor),
		Patch: int(t.Build),
		Build: int(t.Revision),
	}
}

// SysoName is the conventional file name for arch; the _windows suffix keeps
// the linker from picking it up on other platforms.
func SysoName(arch string) string {
	return "rsrc_windows_" + arch + ".syso"
}

// ValidateArch reports whether the syso writer can target arch.
func ValidateArch(arch string) error {
	if _, ok := supportedArchs[arch]; !ok {
		return fmt.Errorf("%w %q", ErrUnsupportedArch, arch)
	}
	return nil
}

// WriteSyso encodes vi as a COFF object at path.
func WriteSyso(vi *goversioninfo.VersionInfo, path, arch string) error {
	if err := ValidateArch(arch); err != nil {
		return err
	}
	vi.Build()
	vi.Walk()
	if err := vi.WriteSyso(path, arch); err != nil {
		return fmt.Errorf("writing syso %s: %w", path, err)
	}
	return nil
}

// document mirrors the versioninfo.json schema read by goversioninfo.
type document struct {
	FixedFileInfo  goversioninfo.FixedFileInfo  `json:"FixedFileInfo"`
	StringFileInfo goversioninfo.StringFileInfo `json:"StringFileInfo"`
	VarFileInfo    varDocument                  `json:"VarFileInfo"`
}

type varDocument struct {
	Translation translationDocument `json:"Translation"`
}

type translationDocument struct {
	LangID    string `json:"LangID"`
	CharsetID string `json:"CharsetID"`
}

// MarshalJSON renders vi in the versioninfo.json schema.
func MarshalJSON(vi *goversioninfo.VersionInfo) ([]byte, error) {
	doc := document{
		FixedFileInfo:  vi.FixedFileInfo,
		StringFileInfo: vi.StringFileInfo,
		VarFileInfo: varDocument{
			Translation: translationDocument{
				LangID:    fmt.Sprintf("%04X", uint16(vi.VarFileInfo.Translation.LangID)),
				CharsetID: fmt.Sprintf("%04X", uint16(vi.VarFileInfo.Translation.CharsetID)),
			},
		},
	}
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encoding versioninfo: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes vi as versioninfo.json at path.
func WriteJSON(vi *goversioninfo.VersionInfo, path string) error {
	data, err := MarshalJSON(vi)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // resource definitions are not secret
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads a versioninfo.json file with goversioninfo's own parser.
func ReadJSON(path string) (*goversioninfo.VersionInfo, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	vi := &goversioninfo.VersionInfo{}
	if err := vi.ParseJSON(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return vi, nil
}

// BlockFromVersionInfo extracts the metadata block a file-properties viewer
// would display. The fixed and string versions must agree.
func BlockFromVersionInfo(vi *goversioninfo.VersionInfo) (metadata.Block, error) {
	strs := vi.StringFileInfo
	block := metadata.Block{
		Version:     strs.ProductVersion,
		FileVersion: strs.FileVersion,
		Company:     strs.CompanyName,
		Copyright:   strs.LegalCopyright,
		Product:     strs.ProductName,
	}

	checks := []struct {
		field string
		fixed goversioninfo.FileVersion
		text  string
	}{
		{field: metadata.FieldVersion, fixed: vi.FixedFileInfo.ProductVersion, text: strs.ProductVersion},
		{field: metadata.FieldFileVersion, fixed: vi.FixedFileInfo.FileVersion, text: strs.FileVersion},
	}
	for _, c := range checks {
		fixed := formatFileVersion(c.fixed)
		if fixed != c.text {
			return block, fmt.Errorf("%s: fixed %s does not match string %q", c.field, fixed, c.text)
		}
	}
	return block, nil
}

func formatFileVersion(v goversioninfo.FileVersion) string {
	parts := []int{v.Major, v.Minor, v.Patch, v.Build}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strconv.Itoa(p)
	}
	return strings.Join(out, ".")
}

// FileWriter writes resource artifacts to the local filesystem.
type FileWriter struct{}

// WriteSyso implements the stamping artifact writer.
func (FileWriter) WriteSyso(vi *goversioninfo.VersionInfo, path, arch string) error {
	return WriteSyso(vi, path, arch)
}

// WriteJSON implements the stamping artifact writer.
func (FileWriter) WriteJSON(vi *goversioninfo.VersionInfo, path string) error {
	return WriteJSON(vi, path)
}
