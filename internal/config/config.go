// Package config loads the mapserver configuration.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults (Default)
//  2. a YAML (.yaml, .yml) or JSONC (.json, .jsonc) config file
//  3. a .env file in the working directory
//  4. process environment variables
//  5. command-line flags, applied by the CLI after Load returns
//
// Recognised environment variables are MAPSERVER_MAP, MAPSERVER_LISTEN,
// LOG_LEVEL and LOG_FORMAT.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/mapserver/internal/logger"
	"github.com/mmr-tortoise/mapserver/internal/mapfile"
)

// Environment variable names.
const (
	EnvMap       = "MAPSERVER_MAP"
	EnvListen    = "MAPSERVER_LISTEN"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
)

// DefaultListen is the query server address used when none is configured.
const DefaultListen = ":8080"

// Config is the complete mapserver configuration.
type Config struct {
	// Map is the path of the map file. Relative paths in a config file are
	// resolved against the directory of that file.
	Map string `yaml:"map" json:"map"`

	// Listen is the TCP address of the query server.
	Listen string `yaml:"listen" json:"listen"`

	Log LogConfig `yaml:"log" json:"log"`

	// Grammar overrides the literals of the map file format. Empty fields
	// keep the default literal.
	Grammar GrammarConfig `yaml:"grammar" json:"grammar"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// GrammarConfig holds map format literal overrides as plain strings.
type GrammarConfig struct {
	CommentSign    string `yaml:"commentSign" json:"commentSign"`
	PolygonStart   string `yaml:"polygonStart" json:"polygonStart"`
	PolygonEnd     string `yaml:"polygonEnd" json:"polygonEnd"`
	PolygonInside  string `yaml:"polygonInside" json:"polygonInside"`
	PolygonOutside string `yaml:"polygonOutside" json:"polygonOutside"`
	MarkingStart   string `yaml:"markingStart" json:"markingStart"`
	MarkingEnd     string `yaml:"markingEnd" json:"markingEnd"`
}

// Default returns the built-in configuration. It has no map path.
func Default() Config {
	return Config{
		Listen: DefaultListen,
		Log: LogConfig{
			Level:  "info",
			Format: logger.FormatText,
		},
	}
}

// Load builds a Config from the defaults, the optional config file at path,
// the .env file (or the given env files) and the process environment.
//
// A missing default .env file is not an error; an explicitly named env file
// that does not exist is.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	})

	return cfg, nil
}

// mergeFile decodes the config file at path over cfg. Only keys present in
// the file change cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case ".json", ".jsonc":
		// Strip // and /* */ comments and trailing commas first.
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if c.Map != "" && !filepath.IsAbs(c.Map) {
		c.Map = filepath.Join(filepath.Dir(path), c.Map)
	}
	return nil
}

// readEnvFiles reads KEY=VALUE pairs without touching the process
// environment. With no names it reads ".env" and tolerates its absence.
func readEnvFiles(names []string) (map[string]string, error) {
	if len(names) == 0 {
		vals, err := godotenv.Read()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return map[string]string{}, nil
			}
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
		return vals, nil
	}

	vals, err := godotenv.Read(names...)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return vals, nil
}

func (c *Config) applyEnv(lookup func(string) string) {
	if v := lookup(EnvMap); v != "" {
		c.Map = v
	}
	if v := lookup(EnvListen); v != "" {
		c.Listen = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := lookup(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
}

// MapGrammar converts the literal overrides into a mapfile.Grammar on top
// of the default grammar and validates the result.
func (c Config) MapGrammar() (mapfile.Grammar, error) {
	g := mapfile.DefaultGrammar()
	gc := c.Grammar

	if gc.CommentSign != "" {
		if len(gc.CommentSign) != 1 {
			return mapfile.Grammar{}, fmt.Errorf("grammar.commentSign must be a single ASCII character, got %q", gc.CommentSign)
		}
		g.CommentSign = gc.CommentSign[0]
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&g.PolygonStart, gc.PolygonStart)
	override(&g.PolygonEnd, gc.PolygonEnd)
	override(&g.PolygonInside, gc.PolygonInside)
	override(&g.PolygonOutside, gc.PolygonOutside)
	override(&g.MarkingStart, gc.MarkingStart)
	override(&g.MarkingEnd, gc.MarkingEnd)

	if err := g.Validate(); err != nil {
		return mapfile.Grammar{}, fmt.Errorf("invalid grammar: %w", err)
	}
	return g, nil
}

// Validate checks that the configuration can be used to load a map and
// start logging. The listen address is only checked when serving.
func (c Config) Validate() error {
	if c.Map == "" {
		return fmt.Errorf("map path is required (set map in the config file, %s or --map)", EnvMap)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if err := logger.ValidateFormat(c.Log.Format); err != nil {
		return err
	}
	if _, err := c.MapGrammar(); err != nil {
		return err
	}
	return nil
}

// ValidateServe runs Validate and also checks the listen address.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("listen address is required (set listen in the config file, %s or --listen)", EnvListen)
	}
	return nil
}
