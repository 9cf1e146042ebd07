// internal/config/model.go
//
// Typed configuration model for the enquiry service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `ENQUIRY_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • Durations are written as Go duration strings ("800ms", "15s").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"min=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"min=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"min=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
}

//
// Storage section
//

// Storage selects the booking repository.  "memory" keeps bookings for the
// life of the process; "mysql" persists them through DSN.  DSN may be a
// Vault reference ("vault:secret/enquiry#dsn"), resolved at start-up.
type Storage struct {
	Driver    string `koanf:"driver"     validate:"required,oneof=memory mysql"`
	DSN       string `koanf:"dsn"        validate:"required_if=Driver mysql"`
	CacheSize int    `koanf:"cache_size" validate:"min=0"`
}

//
// Vault section
//

// Vault points at the secret store used for "vault:" references.  Empty
// Address falls back to VAULT_ADDR.
type Vault struct {
	Address string `koanf:"address" validate:"omitempty,url"`
	Renew   bool   `koanf:"renew"`
}

//
// GeoIP section
//

// GeoIP names an optional MaxMind Country/City database.  Empty disables
// country lookup.
type GeoIP struct {
	Database string `koanf:"database"`
}

//
// Simulation section
//

// Simulation adds artificial latency so clients can exercise their pending
// states against the mock backend.
type Simulation struct {
	BookingLatency  time.Duration `koanf:"booking_latency"  validate:"min=0"`
	LocationLatency time.Duration `koanf:"location_latency" validate:"min=0"`
}

//
// Log section
//

// Log tunes the structured logger.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or ENQUIRY_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP       HTTP       `koanf:"http"`
	Storage    Storage    `koanf:"storage"`
	Vault      Vault      `koanf:"vault"`
	GeoIP      GeoIP      `koanf:"geoip"`
	Simulation Simulation `koanf:"simulation"`
	Log        Log        `koanf:"log"`
	Paths      Paths      `koanf:"-"` // not loaded from config files
}
