// Package config handles application configuration and directory mappings.
package config

import (
	"fmt"
	"strings"

	"metastat/internal/format"
	"metastat/internal/render"
)

// Output formats for the report
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds the application configuration
type Config struct {
	// Path is the positional argument; empty in server mode
	Path string `mapstructure:"-"`

	Report ReportConfig `mapstructure:"report"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

// ReportConfig controls how a path is inspected and printed
type ReportConfig struct {
	Follow      bool   `mapstructure:"follow"`
	Units       string `mapstructure:"units"`
	ShowName    bool   `mapstructure:"show_name"`
	ShowSymlink bool   `mapstructure:"show_symlink"`
	Extended    bool   `mapstructure:"extended"`
	Output      string `mapstructure:"output"`
	Color       string `mapstructure:"color"`

	// Resolved by validateConfig
	UnitStyle format.UnitStyle `mapstructure:"-"`
	ColorMode render.ColorMode `mapstructure:"-"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig holds settings for the HTTP inspection API
type ServerConfig struct {
	Listen      string       `mapstructure:"listen"`
	JWTSecret   string       `mapstructure:"jwt_secret"`
	Directories []DirMapping `mapstructure:"directories"`
}

// DirMapping represents a directory mapping configuration
type DirMapping struct {
	Source  string `mapstructure:"source"`
	Virtual string `mapstructure:"virtual"`
}

// Serving reports whether the configuration selects server mode
func (c *Config) Serving() bool {
	return c.Server.Listen != ""
}

// ParseDirMapping parses a directory mapping string
// Formats: "source:virtual" or just "path" (maps to path:/)
func ParseDirMapping(mapping string) (DirMapping, error) {
	parts := strings.SplitN(mapping, ":", 2)

	var source, virtual string

	if len(parts) == 1 {
		// Simple format: just a path, map to root
		source = strings.TrimSpace(parts[0])
		virtual = "/"
	} else {
		source = strings.TrimSpace(parts[0])
		virtual = strings.TrimSpace(parts[1])
	}

	if source == "" {
		return DirMapping{}, fmt.Errorf("source directory cannot be empty")
	}
	if virtual == "" {
		return DirMapping{}, fmt.Errorf("virtual path cannot be empty")
	}

	return DirMapping{
		Source:  source,
		Virtual: virtual,
	}, nil
}
