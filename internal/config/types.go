package config

import (
	"errors"
	"strings"
)

// Config is the root configuration of the desk.
type Config struct {
	App    AppConfig    `toml:"app"`
	Bot    BotConfig    `toml:"bot"`
	Output OutputConfig `toml:"output"`
	Auth   AuthConfig   `toml:"auth"`
}

type AppConfig struct {
	Env           string `toml:"env"`
	LogLevel      string `toml:"log_level"`
	HTTPAddr      string `toml:"http_addr"`
	LogPath       string `toml:"log_path"`
	LogMaxSizeMB  int    `toml:"log_max_size_mb"`
	LogMaxBackups int    `toml:"log_max_backups"`
	TranscriptLog string `toml:"transcript_log_path"`
}

// BotConfig describes how the external per-broker script is launched.
type BotConfig struct {
	Python           string `toml:"python"`
	ScriptPath       string `toml:"script_path"`
	RequirementsPath string `toml:"requirements_path"`
	Sentinel         string `toml:"sentinel"`
	TimeoutSeconds   int    `toml:"timeout_seconds"` // 0 = wait forever
	BrokersPath      string `toml:"brokers_path"`
	WorkDir          string `toml:"work_dir"`
}

// OutputConfig locates the persisted output log.
type OutputConfig struct {
	Path   string `toml:"path"`
	Driver string `toml:"driver"` // "csv" | "sqlite"
}

// AuthConfig gates the panel behind HTTP basic auth when Accounts is set.
type AuthConfig struct {
	Accounts map[string]string `toml:"accounts"`
}

var (
	ErrScriptNotConfigured       = errors.New("bot script is not configured (bot.python / bot.script_path)")
	ErrRequirementsNotConfigured = errors.New("requirements file is not configured (bot.requirements_path)")
	ErrOutputNotConfigured       = errors.New("output log is not configured (output.path)")
)

func (o OutputConfig) Ready() error {
	if strings.TrimSpace(o.Path) == "" {
		return ErrOutputNotConfigured
	}
	return nil
}

// ResolvedDriver picks the store driver, inferring sqlite from a .db/.sqlite
// extension when the driver is left empty.
func (o OutputConfig) ResolvedDriver() string {
	d := strings.ToLower(strings.TrimSpace(o.Driver))
	if d != "" {
		return d
	}
	p := strings.ToLower(strings.TrimSpace(o.Path))
	if strings.HasSuffix(p, ".db") || strings.HasSuffix(p, ".sqlite") {
		return DriverSQLite
	}
	return DriverCSV
}

const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

// keySet tracks which dotted keys were explicitly present in config files.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
