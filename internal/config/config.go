// Package config resolves credentials and scoping identifiers for the CLI.
//
// Values come from explicit flags first and the process environment second:
// SNYK_TOKEN for the API token, SNYK_TENANT_ID for the tenant, SNYK_API to
// point at a non-production API host.
package config

import (
	"github.com/spf13/viper"

	"github.com/snyk-labs/orgscale/internal/errors"
)

const (
	// TokenKey names the API token option
	TokenKey = "token"
	// TenantIDKey names the tenant scoping option
	TenantIDKey = "tenant_id"
	// APIURLKey names the API base URL option
	APIURLKey = "api_url"

	tokenEnv  = "SNYK_TOKEN"
	tenantEnv = "SNYK_TENANT_ID"
	apiEnv    = "SNYK_API"
)

// Config holds the recognized options for a single command run
type Config struct {
	v *viper.Viper
}

// Load binds the recognized environment variables and returns a Config
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	// viper treats the env name as an alias for the option key
	_ = v.BindEnv(TokenKey, tokenEnv)
	_ = v.BindEnv(TenantIDKey, tenantEnv)
	_ = v.BindEnv(APIURLKey, apiEnv)

	return &Config{v: v}
}

// Token resolves the API token, the flag value winning over the environment.
// A missing token is a configuration error.
func (c *Config) Token(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if token := c.v.GetString(TokenKey); token != "" {
		return token, nil
	}
	return "", errors.NewConfigurationError(nil, "no API token given",
		"Pass --api-token or export your Snyk API token:",
		"  export "+tokenEnv+"=your_api_token_here")
}

// TenantID resolves the tenant identifier, the flag value winning over the
// environment. A missing tenant is a configuration error.
func (c *Config) TenantID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if tenant := c.v.GetString(TenantIDKey); tenant != "" {
		return tenant, nil
	}
	return "", errors.NewConfigurationError(nil, "no tenant id given",
		"Pass --tenant-id or export your Snyk tenant ID:",
		"  export "+tenantEnv+"=your_tenant_id_here")
}

// APIURL returns the configured API base URL, empty when unset
func (c *Config) APIURL() string {
	return c.v.GetString(APIURLKey)
}
