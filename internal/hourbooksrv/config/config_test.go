package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
format_version = "0.1.0"
server_port = "8190"
runtime_config_dir = "%s"

[db]
host = "localhost"
dbname = "hourbook"
user = "hourbook"
password = "secret"

[ledger]
session_cap = "5h"

[auth]
root_member_code = "10101"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hourbooksrv.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"5h", 5 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2d", 48 * time.Hour, false},
		{"1y", 365 * 24 * time.Hour, false},
		{"45s", 45 * time.Second, false},
		{"h", 0, true},
		{"5w", 0, true},
		{"xh", 0, true},
		{"-1h", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoadConfig(t *testing.T) {
	runtimeDir := t.TempDir()
	path := writeConfig(t, fmt.Sprintf(sampleConfig, runtimeDir))

	require.NoError(t, LoadConfig(path))
	c := Config()
	assert.Equal(t, "8190", c.ServerPort)
	assert.Equal(t, 5432, c.DB.Port)
	assert.Equal(t, 5.0, c.Ledger.SessionCapHours())
	assert.True(t, c.Auth.AutoEnroll)
	assert.Equal(t, 12*time.Hour, c.Auth.GetTokenValidityOrDefault())
	assert.GreaterOrEqual(t, len(c.Auth.SigningSecret), minSigningSecretLen)
	assert.True(t, IsRootMember("10101"))
	assert.False(t, IsRootMember("20202"))

	// the generated secret is reused on the next load
	secret := c.Auth.SigningSecret
	require.NoError(t, LoadConfig(path))
	assert.Equal(t, secret, Config().Auth.SigningSecret)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	runtimeDir := t.TempDir()
	path := writeConfig(t, fmt.Sprintf(sampleConfig, runtimeDir))
	envFile := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvDBPassword+"=from-dotenv\n"), 0600))
	t.Setenv(EnvSigningSecret, "0123456789abcdef0123456789abcdef-env")
	defer os.Unsetenv(EnvDBPassword)

	require.NoError(t, LoadConfig(path))
	assert.Equal(t, "from-dotenv", Config().DB.Password)
	assert.Equal(t, "0123456789abcdef0123456789abcdef-env", Config().Auth.SigningSecret)
}

func TestValidateConfig(t *testing.T) {
	base := func() *ConfigParam {
		c := Defaults()
		c.DB.Host = "localhost"
		c.DB.DBName = "hourbook"
		c.DB.User = "hourbook"
		c.DB.Password = "secret"
		c.Auth.SigningSecret = "0123456789abcdef0123456789abcdef"
		return c
	}
	require.NoError(t, ValidateConfig(base()))

	tests := []struct {
		name   string
		mutate func(*ConfigParam)
	}{
		{"format version", func(c *ConfigParam) { c.FormatVersion = "9.9" }},
		{"server port", func(c *ConfigParam) { c.ServerPort = "" }},
		{"db host", func(c *ConfigParam) { c.DB.Host = "" }},
		{"db password", func(c *ConfigParam) { c.DB.Password = "" }},
		{"session cap", func(c *ConfigParam) { c.Ledger.SessionCap = "0h" }},
		{"root code", func(c *ConfigParam) { c.Auth.RootMemberCode = "1010" }},
		{"short secret", func(c *ConfigParam) { c.Auth.SigningSecret = "short" }},
		{"request timeout", func(c *ConfigParam) { c.RequestTimeout = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Error(t, ValidateConfig(c))
		})
	}
}

func TestIsValidMemberCode(t *testing.T) {
	assert.True(t, IsValidMemberCode("10101"))
	assert.True(t, IsValidMemberCode("00042"))
	assert.False(t, IsValidMemberCode("1010"))
	assert.False(t, IsValidMemberCode("101010"))
	assert.False(t, IsValidMemberCode("1010a"))
	assert.False(t, IsValidMemberCode(""))
}
