package config

import (
	"fmt"
	"os"
	"strings"
)

var isTest = false

func IsTest() bool {
	return isTest
}

// TestInit installs a configuration for unit tests. If HOURBOOK_TEST_CONFIG
// names a config file it is loaded, so tests that need Postgres can reach it;
// otherwise an in-memory configuration without a usable database is used.
// It reports whether a database is configured.
func TestInit() bool {
	isTest = true
	if path := os.Getenv(EnvTestConfig); path != "" {
		if err := LoadConfig(path); err != nil {
			panic(fmt.Errorf("error loading test config: %v", err))
		}
		return true
	}
	c := Defaults()
	c.Auth.SigningSecret = strings.Repeat("t", minSigningSecretLen)
	cfg = c
	return false
}
