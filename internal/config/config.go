package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the sound server.
type Server struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Simulation ticks per second
	TickRate int `yaml:"tick_rate"`

	Bridge   BridgeConfig  `yaml:"bridge"`
	Database StorageConfig `yaml:"database"`
	Regions  RegionsConfig `yaml:"regions"`

	// Worlds where no sound plays
	WorldBlacklist []string `yaml:"world_blacklist"`

	// Path of sounds.yaml
	SoundsPath string `yaml:"sounds_path"`

	List ListConfig `yaml:"list"`

	// Re-enable sounds toggled off by a player when they join
	EnableSoundsOnLogin bool `yaml:"enable_sounds_on_login"`
}

// BridgeConfig configures the websocket endpoint the game platform connects to.
type BridgeConfig struct {
	Path string `yaml:"path"`
	// AuthSecret signs hello tokens (HS256). Empty disables authentication.
	AuthSecret    string        `yaml:"auth_secret"`
	SendQueueSize int           `yaml:"send_queue_size"` // per-connection outbox capacity
	WriteTimeout  time.Duration `yaml:"write_timeout"`   // per-write deadline
	ReadTimeout   time.Duration `yaml:"read_timeout"`    // idle connection timeout
}

// StorageConfig selects where regions are persisted.
type StorageConfig struct {
	Driver     string         `yaml:"driver"` // postgres | sqlite
	Postgres   DatabaseConfig `yaml:"postgres"`
	SQLitePath string         `yaml:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// RegionsConfig holds region limits.
type RegionsConfig struct {
	MaxArea                  int64        `yaml:"max_area"` // Δx·Δy·Δz
	MaxNameCharacters        int          `yaml:"max_name_characters"`
	MaxRegions               int          `yaml:"max_regions"` // per owner
	MaxDescriptionCharacters int          `yaml:"max_description_characters"`
	Border                   BorderConfig `yaml:"border"`
}

// BorderConfig controls border particles of region info.
type BorderConfig struct {
	MaxShowingBorders int   `yaml:"max_showing_borders"`
	ShowingTime       int64 `yaml:"showing_time"` // ticks
	Period            int64 `yaml:"period"`       // ticks between particle refreshes
}

// ListConfig controls the sound catalogue listing.
type ListConfig struct {
	MaxPerPage int `yaml:"max_per_page"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:    "info",
		BindAddress: "0.0.0.0",
		Port:        7450,
		TickRate:    20,
		Bridge: BridgeConfig{
			Path:          "/bridge",
			SendQueueSize: 256,
			WriteTimeout:  5 * time.Second,
			ReadTimeout:   120 * time.Second,
		},
		Database: StorageConfig{
			Driver: DriverSQLite,
			Postgres: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "soundscape",
				Password: "soundscape",
				DBName:   "soundscape",
				SSLMode:  "disable",
			},
			SQLitePath: "data/regions.db",
		},
		Regions: RegionsConfig{
			MaxArea:                  15625,
			MaxNameCharacters:        20,
			MaxRegions:               5,
			MaxDescriptionCharacters: 100,
			Border: BorderConfig{
				MaxShowingBorders: 30,
				ShowingTime:       140,
				Period:            5,
			},
		},
		SoundsPath: "config/sounds.yaml",
		List:       ListConfig{MaxPerPage: 10},
	}
}

// Validate rejects values the server cannot run with.
func (s Server) Validate() error {
	var errs []error
	if s.TickRate < 1 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %d", s.TickRate))
	}
	switch s.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, s.Database.Driver))
	}
	if s.Regions.MaxNameCharacters < 1 {
		errs = append(errs, errors.New("regions.max_name_characters must be positive"))
	}
	if s.Bridge.SendQueueSize < 1 {
		errs = append(errs, errors.New("bridge.send_queue_size must be positive"))
	}
	if s.Regions.Border.Period < 1 {
		errs = append(errs, errors.New("regions.border.period must be positive"))
	}
	return errors.Join(errs...)
}

// TickInterval returns the duration of one tick.
func (s Server) TickInterval() time.Duration {
	if s.TickRate < 1 {
		return 50 * time.Millisecond
	}
	return time.Second / time.Duration(s.TickRate)
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
