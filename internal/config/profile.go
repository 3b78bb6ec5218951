package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Profile represents a [profiles.<name>] section in config.toml.
type Profile struct {
	AzureClientID     string `toml:"azure_client_id"`
	AzureClientSecret string `toml:"azure_client_secret"`
	AzureTenantID     string `toml:"azure_tenant_id"`
	Account           string `toml:"account"`
	Warehouse         string `toml:"warehouse"`
	Database          string `toml:"database"`
	Schema            string `toml:"schema"`
	Role              string `toml:"role"`
}

// profileFile is the top-level structure of config.toml.
type profileFile struct {
	DefaultProfile string             `toml:"default_profile"`
	Profiles       map[string]Profile `toml:"profiles"`
}

// findConfigPath locates the profile file.
// Search order:
//  1. $SNOWFLAKE_OAUTH_HOME/config.toml
//  2. ~/.snowflake-oauth/config.toml
func findConfigPath() string {
	candidates := []string{}

	if home := os.Getenv("SNOWFLAKE_OAUTH_HOME"); home != "" {
		candidates = append(candidates, filepath.Join(home, "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".snowflake-oauth", "config.toml"))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadProfile reads the named profile from config.toml. If name is empty,
// default_profile from the file is used. Returns nil when no file exists or
// no profile is selected.
func LoadProfile(name string) (*Profile, error) {
	path := findConfigPath()
	if path == "" {
		return nil, nil
	}

	var file profileFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if name == "" {
		name = file.DefaultProfile
	}
	if name == "" {
		return nil, nil
	}

	profile, ok := file.Profiles[name]
	if !ok {
		available := make([]string, 0, len(file.Profiles))
		for n := range file.Profiles {
			available = append(available, n)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("profile %q not found in %s (available: %v)", name, path, available)
	}
	return &profile, nil
}

// toConfig converts a Profile to a Config.
func (p *Profile) toConfig() Config {
	return Config{
		AzureClientID:      p.AzureClientID,
		AzureClientSecret:  p.AzureClientSecret,
		AzureTenantID:      p.AzureTenantID,
		SnowflakeAccount:   p.Account,
		SnowflakeWarehouse: p.Warehouse,
		SnowflakeDatabase:  p.Database,
		SnowflakeSchema:    p.Schema,
		SnowflakeRole:      p.Role,
	}
}

// Load builds the effective configuration with the following priority:
//  1. Environment variables (high)
//  2. config.toml profile (low)
//
// A missing profile file is not an error; the env-only config is returned.
// An explicitly named profile that does not exist is an error.
func Load(profileName string) (Config, error) {
	var cfg Config
	profile, err := LoadProfile(profileName)
	if err != nil {
		return Config{}, err
	}
	if profile != nil {
		cfg = profile.toConfig()
	}
	overlayEnv(&cfg)
	return cfg, nil
}
