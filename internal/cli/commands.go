// Package cli implements the hourbook command line client.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hourbook/hourbook/internal/common/httpclient"
)

var (
	jsonOutput bool
	configFile string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var warnLabel = color.New(color.FgYellow)
var errorLabel = color.New(color.FgRed)

// newClient builds the client used by every command. Tests replace it to
// serve requests in-process.
var newClient = func(cfg *Config) httpclient.HTTPClientInterface {
	return httpclient.NewClient(cfg)
}

func getCLIVersion() string {
	return "v0.1.0"
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	jsonOutput = false
	configFile = ""

	root := &cobra.Command{
		Use:   "hourbook [command] [flags]",
		Short: "Hourbook CLI - sign team members in and out and manage their hours",
		Long: `Hourbook CLI talks to an hourbook server to record team members' time
sessions, correct hours and read the hours summary.

Examples:
  # Point the CLI at a server and log in with your member code
  hourbook config create --server hourbook.local:8190
  hourbook login 10101

  # Sign a member in and out
  hourbook signin 12345
  hourbook open
  hourbook signout <session-id>

  # Show everyone's hours
  hourbook summary`,
		PersistentPreRunE: preRunHandlePersistents,
		SilenceErrors:     true,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	root.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	root.AddCommand(
		newConfigCmd(),
		newVersionCmd(),
		newLoginCmd(),
		newSignInCmd(),
		newSignOutCmd(),
		newAddCmd(),
		newAdjustCmd(),
		newDeleteCmd(),
		newOpenCmd(),
		newHistoryCmd(),
		newSummaryCmd(),
		newKioskCmd(),
		newIDsCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		reportError(root.ErrOrStderr(), os.Stdout, err)
		os.Exit(1)
	}
}

// reportError prints err with its category. Server errors carry the
// category; everything else is unexpected.
func reportError(stderr, stdout io.Writer, err error) {
	if errors.Is(err, ErrAlreadyHandled) {
		return
	}
	notice := "an unexpected error occurred"
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		notice = he.Notice
	}
	if jsonOutput {
		writeJSON(stdout, map[string]any{"result": 0, "error": err.Error(), "notice": notice})
		return
	}
	errorLabel.Fprintf(stderr, "Error (%s): %v\n", notice, err)
}

// preRunHandlePersistents loads the configuration for every command that
// talks to the server.
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "version" {
			return nil
		}
	}
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := LoadConfig(path); err != nil {
		if os.IsNotExist(err) {
			return errors.New(`hourbook config file not found. Configure hourbook with "hourbook config create" first`)
		}
		return err
	}
	return nil
}

func writeJSON(w io.Writer, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printJSON(cmd *cobra.Command, data any) error {
	return writeJSON(cmd.OutOrStdout(), data)
}

// printRaw prints a server response body as indented JSON.
func printRaw(cmd *cobra.Command, body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return printJSON(cmd, map[string]any{"result": 1, "value": v})
}
