package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// RuntimeConfig holds values the server generates on first start and must
// keep across restarts.
type RuntimeConfig struct {
	SigningSecret string `json:"signing_secret"`
}

const runtimeConfigFile = "runtime_config.json"

func runtimeConfigDir(c *ConfigParam) string {
	base := c.RuntimeConfigDir
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		base = home
	}
	return filepath.Join(base, ".hourbooksrv")
}

// loadOrCreateSigningSecret returns the persisted token signing secret,
// generating and storing one if none exists yet.
func loadOrCreateSigningSecret(dir string) (string, error) {
	path := filepath.Join(dir, runtimeConfigFile)

	var rc RuntimeConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &rc); err != nil {
			return "", fmt.Errorf("error decoding %s: %v", path, err)
		}
		if rc.SigningSecret != "" {
			return rc.SigningSecret, nil
		}
	case !os.IsNotExist(err):
		return "", fmt.Errorf("error reading %s: %v", path, err)
	}

	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate signing secret: %v", err)
	}
	rc.SigningSecret = base64.RawURLEncoding.EncodeToString(buf)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("error creating runtime config dir: %v", err)
	}
	out, err := json.Marshal(&rc)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return "", fmt.Errorf("error writing %s: %v", path, err)
	}
	log.Info().Str("path", path).Msg("generated token signing secret")
	return rc.SigningSecret, nil
}
