package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "config.yaml"

const configVersion = "0.1.0"

// Config is the CLI configuration: where the server is and who is logged in.
type Config struct {
	Version   string `yaml:"version"`
	ServerURL string `yaml:"server_url"`
	// Token is the identity token from the last login.
	Token       string `yaml:"token,omitempty"`
	TokenExpiry string `yaml:"token_expiry,omitempty"`
	MemberCode  string `yaml:"member_code,omitempty"`
	MemberName  string `yaml:"member_name,omitempty"`
	IsAdmin     bool   `yaml:"is_admin,omitempty"`
	IsRoot      bool   `yaml:"is_root,omitempty"`
}

var config *Config

// GetDefaultConfigPath returns the config file path under the user config
// directory, e.g. ~/.config/hourbook/config.yaml on Linux.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "hourbook", DefaultConfigFile), nil
}

func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var c Config
	if err := yaml.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}
	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}
	c.ServerURL = MorphServer(c.ServerURL)
	config = &c
	return nil
}

func GetConfig() *Config {
	return config
}

func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}
	if err := os.WriteFile(file, content, 0o600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}

// MorphServer trims trailing slashes and adds http:// when no scheme is
// given. The server usually runs on the team's local network.
func MorphServer(server string) string {
	if server == "" {
		return server
	}
	server = strings.TrimRight(server, "/")
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}
	return server
}

func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

func (cfg *Config) GetToken() string {
	return cfg.Token
}

func (cfg *Config) GetTokenExpiry() time.Time {
	if cfg.TokenExpiry == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, cfg.TokenExpiry)
	if err != nil {
		return time.Time{}
	}
	return t
}

// clearLogin forgets the token and the member it belongs to.
func (cfg *Config) clearLogin() {
	cfg.Token = ""
	cfg.TokenExpiry = ""
	cfg.MemberCode = ""
	cfg.MemberName = ""
	cfg.IsAdmin = false
	cfg.IsRoot = false
}

func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return GetDefaultConfigPath()
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the configuration file",
		Long: `Create the configuration file pointing at an hourbook server.

Example:
  hourbook config create --server hourbook.local:8190`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			if server == "" {
				return errors.New("--server is required")
			}
			if !strings.Contains(strings.TrimPrefix(strings.TrimPrefix(server, "http://"), "https://"), ":") {
				return errors.New("server must include port number (e.g., hourbook.local:8190)")
			}
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg := &Config{Version: configVersion, ServerURL: MorphServer(server)}
			if err := cfg.WriteConfig(path); err != nil {
				return err
			}
			config = cfg
			if jsonOutput {
				return printJSON(cmd, map[string]string{"server": cfg.ServerURL, "config_file": path})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server configured: %s\n", cfg.ServerURL)
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
			return nil
		},
	}
	createCmd.Flags().String("server", "", "Server host and port (e.g., hourbook.local:8190)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the current login",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if err := LoadConfig(path); err != nil {
				return err
			}
			cfg := GetConfig()
			cfg.clearLogin()
			if err := cfg.WriteConfig(path); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, map[string]int{"result": 1})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}

	cmd.AddCommand(createCmd, clearCmd)
	return cmd
}
