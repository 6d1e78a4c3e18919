package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const configDir = ".datachat"
const configFile = "config.json"
const logFile = "datachat.log"

// EnvPrefix namespaces environment overrides, e.g. DATACHAT_SERVER.
const EnvPrefix = "DATACHAT"

const (
	DefaultServer         = "http://localhost:8000"
	DefaultAgent          = "auto"
	DefaultTimeoutSeconds = 30
	DefaultMaxRows        = 200
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "text"
)

type Config struct {
	Server         string `json:"server" mapstructure:"server"`
	Agent          string `json:"agent,omitempty" mapstructure:"agent"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" mapstructure:"timeout_seconds"`
	MaxRows        int    `json:"max_rows,omitempty" mapstructure:"max_rows"`
	LogLevel       string `json:"log_level,omitempty" mapstructure:"log_level"`
	LogFormat      string `json:"log_format,omitempty" mapstructure:"log_format"`
	Profile        string `json:"-" mapstructure:"-"`
}

func configPath(profile string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot find home directory: %w", err)
	}
	filename := configFile
	if profile != "" {
		filename = fmt.Sprintf("config-%s.json", profile)
	}
	return filepath.Join(home, configDir, filename), nil
}

// LogPath is where the interactive mode writes its log.
func LogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot find home directory: %w", err)
	}
	return filepath.Join(home, configDir, logFile), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server", DefaultServer)
	v.SetDefault("agent", DefaultAgent)
	v.SetDefault("timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("max_rows", DefaultMaxRows)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
}

// Load reads the profile's config file. A missing file is not an error.
// Environment variables (DATACHAT_SERVER, DATACHAT_MAX_ROWS, ...) take
// precedence over the file.
func Load(profile string) (*Config, error) {
	return load(profile, true)
}

// LoadFile reads the profile's config file and defaults only. Use it
// before Save so environment overrides are not written to disk.
func LoadFile(profile string) (*Config, error) {
	return load(profile, false)
}

func load(profile string, withEnv bool) (*Config, error) {
	path, err := configPath(profile)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.AutomaticEnv()
	}
	setDefaults(v)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Profile = profile
	return &cfg, nil
}

func (c *Config) Save() error {
	path, err := configPath(c.Profile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) profileFlag() string {
	if c.Profile == "" {
		return ""
	}
	return " --profile " + c.Profile
}

func (c *Config) Validate() error {
	pf := c.profileFlag()
	if c.Server == "" {
		return fmt.Errorf("server not set. Run: datachat%s set server <url>", pf)
	}
	u, err := url.Parse(c.Server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server URL %q. Run: datachat%s set server <url>", c.Server, pf)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max_rows must not be negative")
	}
	return nil
}

func ListProfiles() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot find home directory: %w", err)
	}
	dir := filepath.Join(home, configDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config directory: %w", err)
	}
	var profiles []string
	for _, e := range entries {
		name := e.Name()
		if name == configFile {
			profiles = append(profiles, "default")
			continue
		}
		if strings.HasPrefix(name, "config-") && strings.HasSuffix(name, ".json") {
			profiles = append(profiles, strings.TrimSuffix(strings.TrimPrefix(name, "config-"), ".json"))
		}
	}
	return profiles, nil
}

func ProfileName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}
