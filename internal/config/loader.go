// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from four layers (highest
precedence last):

  1. Built-in defaults (listen address, timeouts, latency, memory store).
  2. Optional `.env` file at `<root>/conf/.env`.
  3. `conf/global.yaml`, optional; defaults carry the service without it.
  4. Environment variables prefixed `ENQUIRY_`, where `__` maps to “.”
     (e.g., `ENQUIRY_STORAGE__DRIVER → storage.driver`).

After merging, the tree is unmarshalled into strongly-typed structs,
validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Instrumentation
---------------
  • DEBUG: root discovery and each layer loaded or absent.
  • ERROR: a failing layer, unmarshal, or validation.
  • INFO: the final “config loaded” line with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "ENQUIRY_"

var current atomic.Pointer[Config]

// defaults match the mock backend: in-memory storage, 800 ms on
// booking calls, and 300 ms on the locations lookup.
var defaults = map[string]any{
	"http.listen_addr":            ":8080",
	"http.read_timeout":           "10s",
	"http.write_timeout":          "15s",
	"http.idle_timeout":           "60s",
	"http.shutdown_timeout":       "10s",
	"storage.driver":              "memory",
	"storage.cache_size":          256,
	"simulation.booking_latency":  "800ms",
	"simulation.location_latency": "300ms",
	"log.level":                   "info",
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves ENQUIRY_ROOT, else the nearest ancestor of the working
// directory holding conf/global.yaml, else <exe>/.. for a bin/ install.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}
	wd, _ := os.Getwd()
	if r, ok := findRoot(wd); ok {
		return r
	}
	if exe, err := os.Executable(); err == nil && filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

func findRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

/*─────────────────────────────── layers ───────────────────────────────────*/

// layer is one koanf source.  optional layers may be missing on disk.
type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
	optional bool
}

func layers(root string) []layer {
	return []layer{
		{name: "defaults", provider: confmap.Provider(defaults, ".")},
		{
			name:     filepath.Join(root, "conf", "global.yaml"),
			provider: file.Provider(filepath.Join(root, "conf", "global.yaml")),
			parser:   yaml.Parser(),
			optional: true,
		},
		// ENQUIRY_HTTP__LISTEN_ADDR → http.listen_addr
		{name: "env", provider: env.Provider(EnvPrefix, ".", envKey)},
	}
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load merges every layer, validates, and caches the result.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// Values from conf/.env land in the process env before the env layer.
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")
	for _, l := range layers(root) {
		err := k.Load(l.provider, l.parser)
		switch {
		case err == nil:
			zap.S().Debugw("config layer loaded", "layer", l.name)
		case l.optional && errors.Is(err, fs.ErrNotExist):
			zap.S().Debugw("config layer absent", "layer", l.name)
		default:
			zap.S().Errorw("config layer failed", "layer", l.name, "err", err)
			return nil, fmt.Errorf("config %s: %w", l.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}
	cfg.Paths.Root = root

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"storage", cfg.Storage.Driver,
		"booking_latency", cfg.Simulation.BookingLatency,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// Get returns the last successfully loaded Config, or nil before Load.
func Get() *Config { return current.Load() }

// Reload runs Load again.  On failure the previous Config stays current.
func Reload() error {
	_, err := Load()
	return err
}
