package render

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metastat/internal/format"
	"metastat/internal/inspect"
)

func sampleReport() *inspect.Report {
	mtime := time.Date(2023, time.June, 1, 14, 30, 15, 0, time.Local)
	return &inspect.Report{
		Path:         "docs/report.txt",
		Name:         "report.txt",
		Kind:         inspect.File,
		SizeBytes:    1_500_000,
		Size:         format.Size(1_500_000, format.Long),
		ModTime:      mtime,
		LastModified: format.Timestamp(mtime),
	}
}

func TestTextFullReport(t *testing.T) {
	var buf bytes.Buffer
	err := Text(&buf, sampleReport(), TextOptions{ShowName: true, ShowSymlink: true, Color: ColorNever})
	require.NoError(t, err)

	expected := "Name: report.txt\n" +
		"Type: File\n" +
		"Size: 1.5 megabytes\n" +
		"Last Modified: 2023-06-01 14:30:15\n" +
		"Is a symlink: false\n"
	assert.Equal(t, expected, buf.String())
}

func TestTextMinimalReport(t *testing.T) {
	rep := &inspect.Report{
		Name:         "data",
		Kind:         inspect.Directory,
		Size:         format.Size(0, format.Long),
		LastModified: "2023-06-01 14:30:15",
	}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, rep, TextOptions{Color: ColorNever}))

	expected := "Type: Folder\n" +
		"Size: 0 bytes\n" +
		"Last Modified: 2023-06-01 14:30:15\n"
	assert.Equal(t, expected, buf.String())
}

func TestTextSymlinkAndExtension(t *testing.T) {
	rep := sampleReport()
	rep.IsSymlink = true
	rep.LinkTarget = "../real.txt"
	rep.Extension = &inspect.Extension{
		Platform:   "linux",
		AccessTime: rep.ModTime,
		Links:      2,
		Inode:      42,
		Attributes: []string{"hidden", "archive"},
	}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, rep, TextOptions{ShowSymlink: true, Extended: true, Color: ColorNever}))

	out := buf.String()
	assert.Contains(t, out, "Is a symlink: true\n")
	assert.Contains(t, out, "Link target: ../real.txt\n")
	assert.Contains(t, out, "Accessed: 2023-06-01 14:30:15\n")
	assert.Contains(t, out, "Links: 2\n")
	assert.Contains(t, out, "Inode: 42\n")
	assert.Contains(t, out, "Attributes: hidden, archive\n")
	assert.NotContains(t, out, "Changed:")
	assert.NotContains(t, out, "Name:")
}

func TestTextColorModes(t *testing.T) {
	var plain bytes.Buffer
	require.NoError(t, Text(&plain, sampleReport(), TextOptions{ShowName: true, Color: ColorAuto}))
	assert.NotContains(t, plain.String(), "\x1b[")

	var colored bytes.Buffer
	require.NoError(t, Text(&colored, sampleReport(), TextOptions{ShowName: true, Color: ColorAlways}))
	assert.Contains(t, colored.String(), "\x1b[")
	assert.Contains(t, colored.String(), "report.txt")
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input     string
		expected  ColorMode
		expectErr bool
	}{
		{"auto", ColorAuto, false},
		{"", ColorAuto, false},
		{"ALWAYS", ColorAlways, false},
		{"never", ColorNever, false},
		{"sometimes", ColorNever, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseColorMode(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestJSONDocument(t *testing.T) {
	rep := sampleReport()
	rep.Extension = &inspect.Extension{Platform: "linux", Links: 1}

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, NewDocument(rep)))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "report.txt", decoded["name"])
	assert.Equal(t, "docs/report.txt", decoded["path"])
	assert.Equal(t, "File", decoded["type"])
	assert.Equal(t, float64(1_500_000), decoded["size_bytes"])
	assert.Equal(t, "2023-06-01 14:30:15", decoded["last_modified"])
	assert.Equal(t, false, decoded["is_symlink"])
	assert.NotContains(t, decoded, "link_target")

	size, ok := decoded["size"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1.5, size["value"])
	assert.Equal(t, "megabytes", size["unit"])

	ext, ok := decoded["extension"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "linux", ext["platform"])
	assert.NotContains(t, ext, "accessed")
}
