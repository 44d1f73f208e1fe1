package report

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a report encoding.
type Format string

const (
	// FormatText renders a human-readable listing.
	FormatText Format = "text"

	// FormatJSON encodes the report as indented JSON.
	FormatJSON Format = "json"

	// FormatYAML encodes the report as YAML.
	FormatYAML Format = "yaml"
)

// IsValid returns true if the format is known.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// FileExtension returns the file extension for the format.
func (f Format) FileExtension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	default:
		return ""
	}
}

// MimeType returns the MIME type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatText:
		return "text/plain"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat parses a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		f = FormatYAML
	}
	if !f.IsValid() {
		return "", fmt.Errorf("unsupported report format %q (supported: text, json, yaml)", s)
	}
	return f, nil
}

// FormatFromPath detects the format of a report file by extension.
// Only the machine-readable formats can be read back.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("cannot detect report format of %s (supported: .json, .yaml, .yml)", path)
	}
}
