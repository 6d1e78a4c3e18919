package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Server: "http://localhost:8000", TimeoutSeconds: 30, MaxRows: 200},
			wantErr: false,
		},
		{
			name:    "zero limits use defaults",
			cfg:     Config{Server: "https://chat.example.com"},
			wantErr: false,
		},
		{
			name:    "missing server",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name:    "server without scheme",
			cfg:     Config{Server: "localhost:8000"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			cfg:     Config{Server: "http://localhost", TimeoutSeconds: -1},
			wantErr: true,
		},
		{
			name:    "negative max rows",
			cfg:     Config{Server: "http://localhost", MaxRows: -5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSave(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	original := &Config{
		Server:         "http://example.com",
		Agent:          "text2sql",
		TimeoutSeconds: 45,
		MaxRows:        50,
		LogLevel:       "debug",
		LogFormat:      "json",
	}

	if err := original.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path := filepath.Join(tmpDir, configDir, configFile)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Server != original.Server {
		t.Errorf("Server = %q, want %q", loaded.Server, original.Server)
	}
	if loaded.Agent != original.Agent {
		t.Errorf("Agent = %q, want %q", loaded.Agent, original.Agent)
	}
	if loaded.TimeoutSeconds != original.TimeoutSeconds {
		t.Errorf("TimeoutSeconds = %d, want %d", loaded.TimeoutSeconds, original.TimeoutSeconds)
	}
	if loaded.MaxRows != original.MaxRows {
		t.Errorf("MaxRows = %d, want %d", loaded.MaxRows, original.MaxRows)
	}
	if loaded.LogLevel != original.LogLevel || loaded.LogFormat != original.LogFormat {
		t.Errorf("log settings = %q/%q, want %q/%q",
			loaded.LogLevel, loaded.LogFormat, original.LogLevel, original.LogFormat)
	}
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() on missing config returned error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.Server != DefaultServer {
		t.Errorf("Server = %q, want %q", cfg.Server, DefaultServer)
	}
	if cfg.Agent != DefaultAgent {
		t.Errorf("Agent = %q, want %q", cfg.Agent, DefaultAgent)
	}
	if cfg.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("TimeoutSeconds = %d, want %d", cfg.TimeoutSeconds, DefaultTimeoutSeconds)
	}
	if cfg.MaxRows != DefaultMaxRows {
		t.Errorf("MaxRows = %d, want %d", cfg.MaxRows, DefaultMaxRows)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	saved := &Config{Server: "http://file.example.com", MaxRows: 10}
	if err := saved.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Setenv("DATACHAT_SERVER", "http://env.example.com")
	t.Setenv("DATACHAT_MAX_ROWS", "75")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server != "http://env.example.com" {
		t.Errorf("Server = %q, want env override", cfg.Server)
	}
	if cfg.MaxRows != 75 {
		t.Errorf("MaxRows = %d, want 75", cfg.MaxRows)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	dir := filepath.Join(tmpDir, configDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(""); err == nil {
		t.Error("Load() on corrupt config should return an error")
	}
}

func TestLoadSaveProfile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	original := &Config{
		Server:  "http://staging.example.com",
		Agent:   "policy",
		Profile: "staging",
	}

	if err := original.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path := filepath.Join(tmpDir, configDir, "config-staging.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("profile config file not created at %s: %v", path, err)
	}

	defaultPath := filepath.Join(tmpDir, configDir, configFile)
	if _, err := os.Stat(defaultPath); err == nil {
		t.Error("default config file should not exist")
	}

	loaded, err := Load("staging")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server != original.Server {
		t.Errorf("Server = %q, want %q", loaded.Server, original.Server)
	}
	if loaded.Profile != "staging" {
		t.Errorf("Profile = %q, want %q", loaded.Profile, "staging")
	}
}

func TestListProfiles(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	profiles, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("ListProfiles() = %v, want none before any save", profiles)
	}

	for _, p := range []string{"", "prod"} {
		c := &Config{Server: "http://x.example.com", Profile: p}
		if err := c.Save(); err != nil {
			t.Fatalf("Save(%q) error = %v", p, err)
		}
	}

	profiles, err = ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	got := strings.Join(profiles, ",")
	if !strings.Contains(got, "default") || !strings.Contains(got, "prod") {
		t.Errorf("ListProfiles() = %v, want default and prod", profiles)
	}
}

func TestProfileName(t *testing.T) {
	tests := []struct {
		profile string
		want    string
	}{
		{"", "default"},
		{"staging", "staging"},
		{"prod", "prod"},
	}
	for _, tt := range tests {
		got := ProfileName(tt.profile)
		if got != tt.want {
			t.Errorf("ProfileName(%q) = %q, want %q", tt.profile, got, tt.want)
		}
	}
}

func TestValidateProfileHint(t *testing.T) {
	cfg := Config{Profile: "staging"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	want := "--profile staging"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("Validate() error = %q, should contain %q", got, want)
	}
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	saved := &Config{Server: "http://file.example.com", Agent: "auto"}
	if err := saved.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Setenv("DATACHAT_SERVER", "http://env.example.com")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server != "http://file.example.com" {
		t.Errorf("Server = %q, want the file value", cfg.Server)
	}

	cfg.Agent = "policy"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, configDir, configFile))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "env.example.com") {
		t.Errorf("environment override was written to the config file:\n%s", data)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server != "http://env.example.com" || loaded.Agent != "policy" {
		t.Errorf("Load() = %q/%q, want env server and saved agent", loaded.Server, loaded.Agent)
	}
}
