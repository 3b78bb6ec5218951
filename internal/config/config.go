// Package config loads the Azure service principal and Snowflake connection
// settings from TOML profiles and environment variables, and derives the
// OAuth token endpoint and scope from them.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kirilengovski/snowflake-oauth-test/internal/auth"
)

// Config holds everything needed to authenticate the service principal and
// open a Snowflake session. The authenticator only reads the four OAuth
// fields plus the endpoint/scope derivations; the warehouse fields are
// passed through to the connector untouched.
type Config struct {
	AzureClientID     string
	AzureClientSecret string
	AzureTenantID     string

	SnowflakeAccount   string
	SnowflakeWarehouse string
	SnowflakeDatabase  string
	SnowflakeSchema    string
	SnowflakeRole      string

	// TokenEndpointOverride replaces the derived Azure AD endpoint when set.
	// Populated from AZURE_TOKEN_ENDPOINT; useful for testing against a
	// mock identity provider.
	TokenEndpointOverride string
}

// FromEnv builds a Config from environment variables only.
func FromEnv() Config {
	var cfg Config
	overlayEnv(&cfg)
	return cfg
}

// overlayEnv overrides cfg fields with environment variables when set.
func overlayEnv(cfg *Config) {
	if v := os.Getenv("AZURE_CLIENT_ID"); v != "" {
		cfg.AzureClientID = v
	}
	if v := os.Getenv("AZURE_CLIENT_SECRET"); v != "" {
		cfg.AzureClientSecret = v
	}
	if v := os.Getenv("AZURE_TENANT_ID"); v != "" {
		cfg.AzureTenantID = v
	}
	if v := os.Getenv("SNOWFLAKE_ACCOUNT"); v != "" {
		cfg.SnowflakeAccount = v
	}
	if v := os.Getenv("SNOWFLAKE_WAREHOUSE"); v != "" {
		cfg.SnowflakeWarehouse = v
	}
	if v := os.Getenv("SNOWFLAKE_DATABASE"); v != "" {
		cfg.SnowflakeDatabase = v
	}
	if v := os.Getenv("SNOWFLAKE_SCHEMA"); v != "" {
		cfg.SnowflakeSchema = v
	}
	if v := os.Getenv("SNOWFLAKE_ROLE"); v != "" {
		cfg.SnowflakeRole = v
	}
	if v := os.Getenv("AZURE_TOKEN_ENDPOINT"); v != "" {
		cfg.TokenEndpointOverride = v
	}
}

// TokenEndpoint returns the tenant-specific Azure AD v2.0 token endpoint,
// unless an override is configured.
func (c Config) TokenEndpoint() string {
	if c.TokenEndpointOverride != "" {
		return c.TokenEndpointOverride
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", c.AzureTenantID)
}

// Scope returns the Snowflake resource scope for the client-credentials grant.
func (c Config) Scope() string {
	return fmt.Sprintf("https://%s.snowflakecomputing.com/.default", c.SnowflakeAccount)
}

// OAuthCredentials returns the subset of the config the authenticator needs.
func (c Config) OAuthCredentials() auth.Credentials {
	return auth.Credentials{
		ClientID:      c.AzureClientID,
		ClientSecret:  c.AzureClientSecret,
		TokenEndpoint: c.TokenEndpoint(),
		Scope:         c.Scope(),
	}
}

// requiredFields maps env-var-style names to field accessors. Role is
// optional.
var requiredFields = []struct {
	name  string
	value func(Config) string
}{
	{"AZURE_CLIENT_ID", func(c Config) string { return c.AzureClientID }},
	{"AZURE_CLIENT_SECRET", func(c Config) string { return c.AzureClientSecret }},
	{"AZURE_TENANT_ID", func(c Config) string { return c.AzureTenantID }},
	{"SNOWFLAKE_ACCOUNT", func(c Config) string { return c.SnowflakeAccount }},
	{"SNOWFLAKE_WAREHOUSE", func(c Config) string { return c.SnowflakeWarehouse }},
	{"SNOWFLAKE_DATABASE", func(c Config) string { return c.SnowflakeDatabase }},
	{"SNOWFLAKE_SCHEMA", func(c Config) string { return c.SnowflakeSchema }},
}

// Validate returns the names of required settings that are missing, sorted.
// An empty slice means the config is complete.
func (c Config) Validate() []string {
	var missing []string
	for _, f := range requiredFields {
		if strings.TrimSpace(f.value(c)) == "" {
			missing = append(missing, f.name)
		}
	}
	sort.Strings(missing)
	return missing
}

// ValidateOAuth returns the missing settings needed for token acquisition
// alone: the service principal fields and the account the scope is derived
// from. Warehouse settings are not required to fetch a token.
func (c Config) ValidateOAuth() []string {
	var missing []string
	for _, f := range requiredFields {
		switch f.name {
		case "SNOWFLAKE_WAREHOUSE", "SNOWFLAKE_DATABASE", "SNOWFLAKE_SCHEMA":
			continue
		}
		if strings.TrimSpace(f.value(c)) == "" {
			missing = append(missing, f.name)
		}
	}
	sort.Strings(missing)
	return missing
}

// ConnectionParams returns the Snowflake session parameters with empty
// values omitted. The bearer token is added by the caller.
func (c Config) ConnectionParams() map[string]string {
	params := map[string]string{
		"account":   c.SnowflakeAccount,
		"warehouse": c.SnowflakeWarehouse,
		"database":  c.SnowflakeDatabase,
		"schema":    c.SnowflakeSchema,
		"role":      c.SnowflakeRole,
	}
	for k, v := range params {
		if v == "" {
			delete(params, k)
		}
	}
	return params
}
