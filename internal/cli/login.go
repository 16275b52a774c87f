package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login MEMBER_CODE",
		Short: "Log in with your 5-digit member code",
		Long: `Log in to the hourbook server with your member code. The token is
stored in the configuration file and used by every other command.

Example:
  hourbook login 10101`,
		Args: cobra.ExactArgs(1),
		RunE: runLogin,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}
	// a stale token must not ride along with the login request
	cfg.clearLogin()

	body, err := sjson.SetBytes(nil, "code", args[0])
	if err != nil {
		return err
	}
	rsp, _, err := newClient(cfg).Post("/auth/login", body)
	if err != nil {
		return err
	}

	r := gjson.ParseBytes(rsp)
	expiry, err := time.Parse(time.RFC3339, r.Get("expires_at").String())
	if err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}
	cfg.Token = r.Get("token").String()
	cfg.TokenExpiry = expiry.Format(time.RFC3339)
	cfg.MemberCode = r.Get("member.code").String()
	cfg.MemberName = r.Get("member.name").String()
	cfg.IsAdmin = r.Get("member.is_admin").Bool()
	cfg.IsRoot = r.Get("member.is_root").Bool()

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.WriteConfig(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, map[string]any{
			"result":     1,
			"member":     cfg.MemberCode,
			"name":       cfg.MemberName,
			"is_admin":   cfg.IsAdmin,
			"expires_at": cfg.TokenExpiry,
		})
	}
	w := cmd.OutOrStdout()
	okLabel.Fprintf(w, "✓ Logged in as %s (%s)\n", cfg.MemberName, cfg.MemberCode)
	if cfg.IsAdmin {
		fmt.Fprintln(w, "Administrator privileges: yes")
	}
	fmt.Fprintf(w, "Token expires at: %s\n", expiry.Local().Format(time.RFC3339))
	return nil
}
