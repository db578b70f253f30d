package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/mapserver/internal/mapfile"
)

// testdataPath returns the absolute path to tests/testdata/config.
func testdataPath(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed to return file info")

	return filepath.Join(filepath.Dir(filename), "..", "..", "tests", "testdata", "config")
}

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvMap, EnvListen, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Empty(t, cfg.Map)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	dir := testdataPath(t)

	cfg, err := Load(filepath.Join(dir, "mapserver.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "..", "maps", "warehouse.db"), cfg.Map, "relative map path resolves against the config file")
	assert.Equal(t, "127.0.0.1:9090", cfg.Listen)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, ";", cfg.Grammar.CommentSign)

	_, err = os.Stat(cfg.Map)
	assert.NoError(t, err)
}

func TestLoad_JSONC(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(testdataPath(t), "mapserver.jsonc"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/maps/floor.db", cfg.Map)
	assert.Equal(t, ":7070", cfg.Listen)
	assert.Equal(t, "info", cfg.Log.Level, "keys absent from the file keep their defaults")
	assert.Equal(t, "ZONE_START", cfg.Grammar.PolygonStart)
	assert.Equal(t, "ZONE_END", cfg.Grammar.PolygonEnd)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)
	dir := testdataPath(t)

	tests := []struct {
		name string
		path string
		msg  string
	}{
		{name: "missing", path: filepath.Join(dir, "nope.yaml"), msg: "config file not found"},
		{name: "malformed yaml", path: filepath.Join(dir, "broken.yaml"), msg: "failed to parse config file"},
		{name: "unsupported extension", path: filepath.Join(dir, "mapserver.toml"), msg: "unsupported config file extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

// TestLoad_Precedence checks file < env file < process environment.
func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("MAPSERVER_MAP=/from/dotenv.db\nMAPSERVER_LISTEN=:1111\nLOG_FORMAT=json\n"), 0o644))

	t.Setenv(EnvListen, ":2222")

	cfg, err := Load(filepath.Join(testdataPath(t), "mapserver.jsonc"), envFile)
	require.NoError(t, err)

	assert.Equal(t, "/from/dotenv.db", cfg.Map, "env file beats config file")
	assert.Equal(t, ":2222", cfg.Listen, "process environment beats env file")
	assert.Equal(t, "json", cfg.Log.Format)

	_, set := os.LookupEnv("MAPSERVER_MAP")
	assert.True(t, set)
	assert.Empty(t, os.Getenv("MAPSERVER_MAP"), "env files must not modify the process environment")
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load("", filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestMapGrammar(t *testing.T) {
	cfg := Default()
	g, err := cfg.MapGrammar()
	require.NoError(t, err)
	assert.Equal(t, mapfile.DefaultGrammar(), g)

	cfg.Grammar = GrammarConfig{CommentSign: ";", MarkingEnd: "END_MARK"}
	g, err = cfg.MapGrammar()
	require.NoError(t, err)
	assert.Equal(t, byte(';'), g.CommentSign)
	assert.Equal(t, "END_MARK", g.MarkingEnd)
	assert.Equal(t, mapfile.DefaultPolygonStart, g.PolygonStart)

	cfg.Grammar = GrammarConfig{CommentSign: "//"}
	_, err = cfg.MapGrammar()
	assert.Error(t, err)

	cfg.Grammar = GrammarConfig{MarkingEnd: mapfile.DefaultPolygonEnd}
	_, err = cfg.MapGrammar()
	assert.Error(t, err, "duplicate literals are rejected")

	cfg.Grammar = GrammarConfig{CommentSign: "P"}
	_, err = cfg.MapGrammar()
	assert.ErrorContains(t, err, "starts with the comment sign")

	cfg.Grammar = GrammarConfig{PolygonInside: "1"}
	_, err = cfg.MapGrammar()
	assert.ErrorContains(t, err, "could match coordinate data")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Map = "floor.db"
		return c
	}

	tests := []struct {
		name     string
		mutate   func(c *Config)
		serve    bool
		hasError bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing map", mutate: func(c *Config) { c.Map = "" }, hasError: true},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "chatty" }, hasError: true},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, hasError: true},
		{name: "bad grammar", mutate: func(c *Config) { c.Grammar.PolygonStart = "A,B" }, hasError: true},
		{name: "empty listen ignored outside serve", mutate: func(c *Config) { c.Listen = "" }},
		{name: "empty listen rejected for serve", mutate: func(c *Config) { c.Listen = " " }, serve: true, hasError: true},
		{name: "valid for serve", mutate: func(c *Config) {}, serve: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)

			var err error
			if tt.serve {
				err = c.ValidateServe()
			} else {
				err = c.Validate()
			}
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
