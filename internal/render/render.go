// Package render writes metadata reports as text blocks or JSON documents.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"metastat/internal/format"
	"metastat/internal/inspect"
)

// ColorMode controls label styling in text output
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a colour mode name
func ParseColorMode(name string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(name))); mode {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return ColorNever, fmt.Errorf("invalid color mode: %s (expected auto, always or never)", name)
	}
}

// TextOptions selects the optional lines of the text report
type TextOptions struct {
	ShowName    bool
	ShowSymlink bool
	Extended    bool
	Color       ColorMode
}

// Text writes the report as "Label: value" lines in a fixed order:
// Name, Type, Size, Last Modified, Is a symlink.
func Text(w io.Writer, rep *inspect.Report, opts TextOptions) error {
	label := labelStyler(w, opts.Color)

	var b strings.Builder
	line := func(name, value string) {
		b.WriteString(label(name + ":"))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	if opts.ShowName {
		line("Name", rep.Name)
	}
	line("Type", rep.Kind.Label())
	line("Size", rep.Size.String())
	line("Last Modified", rep.LastModified)
	if opts.ShowSymlink {
		line("Is a symlink", strconv.FormatBool(rep.IsSymlink))
		if rep.LinkTarget != "" {
			line("Link target", rep.LinkTarget)
		}
	}

	if opts.Extended && rep.Extension != nil {
		ext := rep.Extension
		if !ext.AccessTime.IsZero() {
			line("Accessed", format.Timestamp(ext.AccessTime))
		}
		if !ext.ChangeTime.IsZero() {
			line("Changed", format.Timestamp(ext.ChangeTime))
		}
		if !ext.BirthTime.IsZero() {
			line("Created", format.Timestamp(ext.BirthTime))
		}
		if ext.Links > 0 {
			line("Links", strconv.FormatUint(ext.Links, 10))
		}
		if ext.Inode > 0 {
			line("Inode", strconv.FormatUint(ext.Inode, 10))
		}
		if len(ext.Attributes) > 0 {
			line("Attributes", strings.Join(ext.Attributes, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func labelStyler(w io.Writer, mode ColorMode) func(string) string {
	switch mode {
	case ColorAlways:
		r := lipgloss.NewRenderer(w)
		r.SetColorProfile(termenv.ANSI256)
		return styled(r)
	case ColorAuto:
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return styled(lipgloss.NewRenderer(w))
		}
	}
	return func(s string) string { return s }
}

func styled(r *lipgloss.Renderer) func(string) string {
	style := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ADD8"))
	return func(s string) string { return style.Render(s) }
}

// Document is the JSON form of a report
type Document struct {
	Name         string             `json:"name"`
	Path         string             `json:"path"`
	Type         string             `json:"type"`
	SizeBytes    uint64             `json:"size_bytes"`
	Size         format.Scaled      `json:"size"`
	LastModified string             `json:"last_modified"`
	IsSymlink    bool               `json:"is_symlink"`
	LinkTarget   string             `json:"link_target,omitempty"`
	Followed     bool               `json:"followed"`
	Extension    *ExtensionDocument `json:"extension,omitempty"`
}

// ExtensionDocument is the JSON form of the platform extension record
type ExtensionDocument struct {
	Platform   string   `json:"platform"`
	Accessed   string   `json:"accessed,omitempty"`
	Changed    string   `json:"changed,omitempty"`
	Created    string   `json:"created,omitempty"`
	Links      uint64   `json:"links,omitempty"`
	Inode      uint64   `json:"inode,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

// NewDocument converts a report into its JSON form
func NewDocument(rep *inspect.Report) *Document {
	doc := &Document{
		Name:         rep.Name,
		Path:         rep.Path,
		Type:         rep.Kind.Label(),
		SizeBytes:    rep.SizeBytes,
		Size:         rep.Size,
		LastModified: rep.LastModified,
		IsSymlink:    rep.IsSymlink,
		LinkTarget:   rep.LinkTarget,
		Followed:     rep.Followed,
	}

	if ext := rep.Extension; ext != nil {
		doc.Extension = &ExtensionDocument{
			Platform:   ext.Platform,
			Accessed:   timestamp(ext.AccessTime),
			Changed:    timestamp(ext.ChangeTime),
			Created:    timestamp(ext.BirthTime),
			Links:      ext.Links,
			Inode:      ext.Inode,
			Attributes: ext.Attributes,
		}
	}

	return doc
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return format.Timestamp(t)
}

// JSON writes doc as indented JSON followed by a newline
func JSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
