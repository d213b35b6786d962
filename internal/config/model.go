// internal/config/model.go
//
// Typed configuration model for hostview.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `HOSTVIEW_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal; the app fails fast if
// a field is out of range.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The host tables that drive view lookup and domain annotation are
//     NOT configuration.  They are fixed in internal/view and
//     internal/annotate.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

//
// Views section
//

// Views controls where templates are read from and how parsed sets are
// kept.  An empty Dir means the templates embedded in the binary.
type Views struct {
	Dir       string `koanf:"dir"`
	Layout    string `koanf:"layout"     validate:"required"`
	Cache     bool   `koanf:"cache"`
	CacheSize int    `koanf:"cache_size" validate:"gte=1"`
}

//
// Log section
//

// Log selects the minimum level and whether the console tee is forced on.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	Tee   bool   `koanf:"tee"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database.  Empty disables
// geolocation; request info still carries the client IP.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // HOSTVIEW_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP  HTTP  `koanf:"http"`
	Views Views `koanf:"views"`
	Log   Log   `koanf:"log"`
	Geo   Geo   `koanf:"geo"`
	Paths Paths `koanf:"-"` // not loaded from config files
}

// Default returns the values used for any key the YAML and environment
// leave unset.
func Default() Config {
	return Config{
		HTTP: HTTP{
			ListenAddr:      ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Views: Views{
			Layout:    "_Layout",
			Cache:     true,
			CacheSize: 256,
		},
		Log: Log{Level: "info"},
	}
}
