package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateConfig checks required values. It may fill in derived values such
// as a generated signing secret.
func ValidateConfig(c *ConfigParam) error {
	validators := []func(*ConfigParam) error{
		validateFormatVersion,
		validateServerConfig,
		validateDBConfig,
		validateLedgerConfig,
		validateAuthConfig,
		validateAuditLogConfig,
	}
	for _, v := range validators {
		if err := v(c); err != nil {
			return err
		}
	}
	return nil
}

func validateFormatVersion(c *ConfigParam) error {
	if c.FormatVersion != Version {
		return fmt.Errorf("unsupported config file format version: %s", c.FormatVersion)
	}
	return nil
}

func validateServerConfig(c *ConfigParam) error {
	if c.ServerPort == "" {
		return fmt.Errorf("server_port is required")
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("max_request_body_size must be positive")
	}
	if _, err := ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %v", err)
	}
	return nil
}

func validateDBConfig(c *ConfigParam) error {
	switch {
	case c.DB.Host == "":
		return fmt.Errorf("db.host is required")
	case c.DB.Port <= 0:
		return fmt.Errorf("db.port must be positive")
	case c.DB.DBName == "":
		return fmt.Errorf("db.dbname is required")
	case c.DB.User == "":
		return fmt.Errorf("db.user is required")
	case c.DB.Password == "":
		return fmt.Errorf("db.password is required (or set %s)", EnvDBPassword)
	case c.DB.SSLMode == "":
		return fmt.Errorf("db.sslmode is required")
	case c.DB.MaxOpenConns <= 0:
		return fmt.Errorf("db.max_open_conns must be positive")
	}
	if _, err := ParseDuration(c.DB.StatementTimeout); err != nil {
		return fmt.Errorf("invalid db.statement_timeout: %v", err)
	}
	return nil
}

func validateLedgerConfig(c *ConfigParam) error {
	d, err := ParseDuration(c.Ledger.SessionCap)
	if err != nil {
		return fmt.Errorf("invalid ledger.session_cap: %v", err)
	}
	if d <= 0 {
		return fmt.Errorf("ledger.session_cap must be positive")
	}
	return nil
}

func validateAuthConfig(c *ConfigParam) error {
	if !IsValidMemberCode(c.Auth.RootMemberCode) {
		return fmt.Errorf("auth.root_member_code must be 5 digits")
	}
	if _, err := ParseDuration(c.Auth.TokenValidity); err != nil {
		return fmt.Errorf("invalid auth.token_validity: %v", err)
	}
	if _, err := ParseDuration(c.Auth.ClockSkew); err != nil {
		return fmt.Errorf("invalid auth.clock_skew: %v", err)
	}
	if c.Auth.Issuer == "" {
		return fmt.Errorf("auth.issuer is required")
	}
	if c.Auth.SigningSecret == "" {
		secret, err := loadOrCreateSigningSecret(runtimeConfigDir(c))
		if err != nil {
			return fmt.Errorf("unable to provision signing secret: %v", err)
		}
		c.Auth.SigningSecret = secret
	}
	if len(c.Auth.SigningSecret) < minSigningSecretLen {
		return fmt.Errorf("auth.signing_secret must be at least %d bytes", minSigningSecretLen)
	}
	return nil
}

func validateAuditLogConfig(c *ConfigParam) error {
	if c.AuditLog.Path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.AuditLog.Path), 0700); err != nil {
		return fmt.Errorf("error creating audit log directory: %v", err)
	}
	return nil
}
