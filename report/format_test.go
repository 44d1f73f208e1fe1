package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		format Format
		ext    string
		mime   string
	}{
		{FormatText, ".txt", "text/plain"},
		{FormatJSON, ".json", "application/json"},
		{FormatYAML, ".yaml", "application/yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			assert.True(t, tt.format.IsValid())
			assert.Equal(t, tt.ext, tt.format.FileExtension())
			assert.Equal(t, tt.mime, tt.format.MimeType())
		})
	}

	unknown := Format("sarif")
	assert.False(t, unknown.IsValid())
	assert.Empty(t, unknown.FileExtension())
	assert.Equal(t, "application/octet-stream", unknown.MimeType())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"text":  FormatText,
		"JSON":  FormatJSON,
		"yml":   FormatYAML,
		" yaml": FormatYAML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("out/run.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = FormatFromPath("run.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = FormatFromPath("run.txt")
	assert.Error(t, err)
}
