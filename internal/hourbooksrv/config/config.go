// Package config loads and validates the hourbook server configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Version is the configuration file format this build understands.
const Version = "0.1.0"

const (
	DefaultRootMemberCode = "10101"
	DefaultSessionCap     = "5h"
	DefaultTokenValidity  = "12h"
	DefaultClockSkew      = "1m"
	DefaultRequestTimeout = "30s"
	DefaultIssuer         = "hourbook"
	minSigningSecretLen   = 32
)

// Environment variables that override secrets from the config file. They may
// also come from a .env file next to the config file.
const (
	EnvDBPassword    = "HOURBOOK_DB_PASSWORD"
	EnvSigningSecret = "HOURBOOK_SIGNING_SECRET"
	EnvTestConfig    = "HOURBOOK_TEST_CONFIG"
)

var memberCodeRegex = regexp.MustCompile(`^\d{5}$`)

type DBConfig struct {
	Host             string `toml:"host"`
	Port             int    `toml:"port"`
	DBName           string `toml:"dbname"`
	User             string `toml:"user"`
	Password         string `toml:"password"`
	SSLMode          string `toml:"sslmode"`
	MaxOpenConns     int    `toml:"max_open_conns"`
	StatementTimeout string `toml:"statement_timeout"`
}

// LedgerConfig holds the session accounting policy.
type LedgerConfig struct {
	SessionCap string `toml:"session_cap"` // sessions longer than this are capped and flagged
}

func (l *LedgerConfig) SessionCapHours() float64 {
	d, err := ParseDuration(l.SessionCap)
	if err != nil {
		panic(fmt.Sprintf("invalid ledger.session_cap: %v", err))
	}
	return d.Hours()
}

type AuthConfig struct {
	RootMemberCode string `toml:"root_member_code"`
	SigningSecret  string `toml:"signing_secret"`
	TokenValidity  string `toml:"token_validity"`
	ClockSkew      string `toml:"clock_skew"`
	Issuer         string `toml:"issuer"`
	AutoEnroll     bool   `toml:"auto_enroll"` // create unknown members on first login
}

func (a *AuthConfig) GetTokenValidityOrDefault() time.Duration {
	d, err := ParseDuration(a.TokenValidity)
	if err != nil {
		panic(fmt.Sprintf("invalid auth.token_validity: %v", err))
	}
	return d
}

func (a *AuthConfig) GetClockSkewOrDefault() time.Duration {
	d, err := ParseDuration(a.ClockSkew)
	if err != nil {
		panic(fmt.Sprintf("invalid auth.clock_skew: %v", err))
	}
	return d
}

type AuditLogConfig struct {
	Path string `toml:"path"` // JSON lines file; empty disables the audit trail
}

type ConfigParam struct {
	FormatVersion      string `toml:"format_version"`
	ServerHostName     string `toml:"server_hostname"`
	ServerPort         string `toml:"server_port"`
	HandleCORS         bool   `toml:"handle_cors"`
	MaxRequestBodySize int64  `toml:"max_request_body_size"`
	RequestTimeout     string `toml:"request_timeout"`
	LogLevel           string `toml:"log_level"`
	RuntimeConfigDir   string `toml:"runtime_config_dir"`

	DB       DBConfig       `toml:"db"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Auth     AuthConfig     `toml:"auth"`
	AuditLog AuditLogConfig `toml:"audit_log"`
}

var cfg *ConfigParam

func Config() *ConfigParam {
	return cfg
}

// SetConfig replaces the active configuration. Used by tests and by callers
// that build the configuration in code.
func SetConfig(c *ConfigParam) {
	cfg = c
}

func (c *ConfigParam) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode)
}

func (c *ConfigParam) GetRequestTimeoutOrDefault() time.Duration {
	d, err := ParseDuration(c.RequestTimeout)
	if err != nil {
		panic(fmt.Sprintf("invalid request_timeout: %v", err))
	}
	return d
}

// IsRootMember reports whether code names the root administrator.
func IsRootMember(code string) bool {
	return cfg != nil && code != "" && code == cfg.Auth.RootMemberCode
}

// IsValidMemberCode reports whether code is a 5-digit member code.
func IsValidMemberCode(code string) bool {
	return memberCodeRegex.MatchString(code)
}

// ParseDuration parses "<integer><unit>" with unit one of y, d, h, m or s.
func ParseDuration(input string) (time.Duration, error) {
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid duration %q", input)
	}
	unit := input[len(input)-1:]
	value, err := strconv.Atoi(input[:len(input)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in duration %q: %v", input, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative duration %q", input)
	}
	d := time.Duration(value)
	switch unit {
	case "y":
		return d * 365 * 24 * time.Hour, nil
	case "d":
		return d * 24 * time.Hour, nil
	case "h":
		return d * time.Hour, nil
	case "m":
		return d * time.Minute, nil
	case "s":
		return d * time.Second, nil
	}
	return 0, fmt.Errorf("unknown time unit %q", unit)
}

// LoadConfig reads filename, applies .env and environment overrides and
// validates the result.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	c, err := ParseConfig(string(content))
	if err != nil {
		return err
	}

	// a missing .env is not an error
	_ = godotenv.Load(filepath.Join(filepath.Dir(filename), ".env"))
	applyEnvOverrides(c)

	if err := ValidateConfig(c); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}
	cfg = c
	return nil
}

// ParseConfig decodes TOML content on top of the defaults without validating.
func ParseConfig(content string) (*ConfigParam, error) {
	c := Defaults()
	if _, err := toml.Decode(content, c); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}
	return c, nil
}

func applyEnvOverrides(c *ConfigParam) {
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv(EnvSigningSecret); v != "" {
		c.Auth.SigningSecret = v
	}
}

// Defaults returns a configuration with every optional field filled in.
func Defaults() *ConfigParam {
	return &ConfigParam{
		FormatVersion:      Version,
		ServerHostName:     "localhost",
		ServerPort:         "8190",
		MaxRequestBodySize: 64 << 10,
		RequestTimeout:     DefaultRequestTimeout,
		LogLevel:           "info",
		DB: DBConfig{
			Port:             5432,
			SSLMode:          "disable",
			MaxOpenConns:     20,
			StatementTimeout: "5s",
		},
		Ledger: LedgerConfig{SessionCap: DefaultSessionCap},
		Auth: AuthConfig{
			RootMemberCode: DefaultRootMemberCode,
			TokenValidity:  DefaultTokenValidity,
			ClockSkew:      DefaultClockSkew,
			Issuer:         DefaultIssuer,
			AutoEnroll:     true,
		},
	}
}
