// internal/config/model.go
//
// Typed configuration model for the resolver.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/jsontpl.yaml`                       – primary static file,
//   • `JSONTPL_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal; the process fails fast if
// any field is out of range.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.
package config

import "time"

//
// Template section
//

// Template holds resolver tunables.
type Template struct {
	MaxImportDepth int    `koanf:"max_import_depth" validate:"min=1,max=64"`
	BasePath       string `koanf:"base_path"`
}

//
// Cache section
//

// Cache holds result-cache tunables.  SnapshotDSN is optional; when set, the
// cache is loaded from and saved to the `cache_snapshot` table.
type Cache struct {
	MaxEntries  int           `koanf:"max_entries" validate:"min=1"`
	DefaultTTL  time.Duration `koanf:"default_ttl"`
	SnapshotDSN string        `koanf:"snapshot_dsn"`
}

//
// HTTP section
//

// HTTP holds serve-mode tunables.  An empty ListenAddr disables serve mode.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"omitempty,hostname_port"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or JSONTPL_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // JSONTPL_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the process lifetime.
type Config struct {
	Template Template `koanf:"template"`
	Cache    Cache    `koanf:"cache"`
	HTTP     HTTP     `koanf:"http"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

// defaults fills any unset field with its shipped default.  Called after
// unmarshal so YAML and env layers win.
func (c *Config) defaults() {
	if c.Template.MaxImportDepth == 0 {
		c.Template.MaxImportDepth = 10
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}
	if c.Cache.DefaultTTL == 0 {
		c.Cache.DefaultTTL = 15 * time.Minute
	}
}
