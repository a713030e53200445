package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"metastat/internal/format"
	"metastat/internal/logging"
	"metastat/internal/render"
)

// ErrUsage is returned when no path was given outside server mode
var ErrUsage = errors.New("a path to inspect is required")

// flagKeys maps configuration keys to the flags that override them
var flagKeys = map[string]string{
	"report.follow":       "follow",
	"report.units":        "units",
	"report.show_name":    "show-name",
	"report.show_symlink": "show-symlink",
	"report.extended":     "extended",
	"report.output":       "output",
	"report.color":        "color",
	"log.level":           "log-level",
	"server.listen":       "listen",
	"server.jwt_secret":   "jwt-secret",
}

// NewFlagSet defines the command line flags. Parse errors are returned
// rather than printed.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringP("config", "c", "", "config file path (TOML)")
	fs.BoolP("follow", "L", false, "resolve size, type and time through symlinks")
	fs.String("units", "long", "size units: long (bytes, megabytes, gigabytes) or short (bytes, KB, MB, GB)")
	fs.Bool("show-name", true, "print the Name line")
	fs.Bool("show-symlink", true, "print the symlink line")
	fs.BoolP("extended", "x", false, "include platform-specific metadata")
	fs.StringP("output", "o", OutputText, "output format: text or json")
	fs.String("color", string(render.ColorAuto), "label colors: auto, always or never")
	fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	fs.String("listen", "", "serve the inspection API on this address instead of inspecting a path")
	fs.StringSlice("dir", []string{}, "directory mappings for the API (format: source:virtual or just path)")
	fs.String("jwt-secret", "", "JWT secret protecting the API")

	return fs
}

// LoadConfig parses args and merges configuration sources with precedence:
// 1. Command line flags (highest)
// 2. Environment variables (METASTAT_REPORT_FOLLOW, ...)
// 3. Config file
// 4. Default values (lowest)
func LoadConfig(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("METASTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}

	// Only load config file if explicitly specified
	configFile, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Command line directories are added after those from the config file
	dirFlags, err := fs.GetStringSlice("dir")
	if err != nil {
		return nil, err
	}
	for _, dir := range dirFlags {
		mapping, err := ParseDirMapping(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid directory mapping '%s': %w", dir, err)
		}
		cfg.Server.Directories = append(cfg.Server.Directories, mapping)
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Path = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected one path argument, got %d", fs.NArg())
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateConfig validates the configuration and resolves typed settings
func validateConfig(cfg *Config) error {
	units, err := format.ParseUnitStyle(cfg.Report.Units)
	if err != nil {
		return err
	}
	cfg.Report.UnitStyle = units

	color, err := render.ParseColorMode(cfg.Report.Color)
	if err != nil {
		return err
	}
	cfg.Report.ColorMode = color

	switch cfg.Report.Output = strings.ToLower(strings.TrimSpace(cfg.Report.Output)); cfg.Report.Output {
	case "":
		cfg.Report.Output = OutputText
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("invalid output format: %s (expected text or json)", cfg.Report.Output)
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}

	if !cfg.Serving() {
		if cfg.Path == "" {
			return ErrUsage
		}
		return nil
	}

	if cfg.Path != "" {
		return fmt.Errorf("cannot inspect %s while --listen is set", cfg.Path)
	}

	return validateServer(&cfg.Server)
}

func validateServer(srv *ServerConfig) error {
	if srv.JWTSecret != "" && len(srv.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters (256 bits) for security")
	}

	if len(srv.Directories) == 0 {
		return fmt.Errorf("at least one directory mapping must be configured when serving (use --dir)")
	}

	// Validate and resolve all directory paths
	virtualPaths := make(map[string]bool)
	for i, dir := range srv.Directories {
		if strings.TrimSpace(dir.Source) == "" {
			return fmt.Errorf("directory mapping has empty 'source' field")
		}
		if strings.TrimSpace(dir.Virtual) == "" {
			return fmt.Errorf("directory mapping has empty 'virtual' field")
		}

		absPath, err := filepath.Abs(dir.Source)
		if err != nil {
			return fmt.Errorf("error resolving directory path %s: %w", dir.Source, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("directory does not exist: %s", absPath)
			}
			return fmt.Errorf("cannot access directory %s: %w", absPath, err)
		}

		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", absPath)
		}

		srv.Directories[i].Source = absPath

		if !strings.HasPrefix(dir.Virtual, "/") {
			return fmt.Errorf("virtual path must start with /: %s", dir.Virtual)
		}

		if virtualPaths[dir.Virtual] {
			return fmt.Errorf("duplicate virtual path: %s", dir.Virtual)
		}
		virtualPaths[dir.Virtual] = true
	}

	return nil
}
