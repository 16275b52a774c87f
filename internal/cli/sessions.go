package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/hourbook/hourbook/pkg/api"
)

func sessionPath(id string, suffix ...string) string {
	return strings.Join(append([]string{"/time-sessions", id}, suffix...), "/")
}

func decodeSession(body []byte) (*api.TimeSession, error) {
	var s api.TimeSession
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &s, nil
}

func decodeSessionList(body []byte) ([]api.TimeSession, error) {
	var l api.TimeSessionList
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return l.Sessions, nil
}

// hoursBody builds a request body with hours and optional notes.
func hoursBody(body []byte, hours float64, notes string) ([]byte, error) {
	body, err := sjson.SetBytes(body, "hours", hours)
	if err != nil {
		return nil, err
	}
	if notes != "" {
		body, err = sjson.SetBytes(body, "notes", notes)
	}
	return body, err
}

func newSignInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signin MEMBER_CODE",
		Short: "Sign a member in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := sjson.SetBytes(nil, "member_code", args[0])
			if err != nil {
				return err
			}
			rsp, _, err := newClient(GetConfig()).Post("/time-sessions", body)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printRaw(cmd, rsp)
			}
			s, err := decodeSession(rsp)
			if err != nil {
				return err
			}
			okLabel.Fprintf(cmd.OutOrStdout(), "✓ Signed in %s\n", s.MemberCode)
			printSession(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout SESSION_ID",
		Short: "Sign a member out and credit the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rsp, _, err := newClient(GetConfig()).Post(sessionPath(args[0], "sign-out"), nil)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printRaw(cmd, rsp)
			}
			s, err := decodeSession(rsp)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			okLabel.Fprintf(w, "✓ Signed out %s\n", s.MemberCode)
			printSession(w, s)
			if s.IsFlagged {
				warnLabel.Fprintln(w, "Session ran past the cap; hours were capped and the session is flagged for review")
			}
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add MEMBER_CODE --hours HOURS [--notes NOTES]",
		Short: "Record hours worked outside the sign-in flow",
		Long: `Record hours for a member as a closed session. Manual entries are not
capped.

Example:
  hourbook add 12345 --hours 3.5 --notes "Build day at the sponsor's shop"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("hours") {
				return errors.New("--hours is required")
			}
			hours, _ := cmd.Flags().GetFloat64("hours")
			notes, _ := cmd.Flags().GetString("notes")

			body, err := sjson.SetBytes(nil, "member_code", args[0])
			if err != nil {
				return err
			}
			if body, err = hoursBody(body, hours, notes); err != nil {
				return err
			}
			rsp, _, err := newClient(GetConfig()).Post("/time-sessions/manual", body)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printRaw(cmd, rsp)
			}
			s, err := decodeSession(rsp)
			if err != nil {
				return err
			}
			okLabel.Fprintf(cmd.OutOrStdout(), "✓ Added %s hours for %s\n", formatHours(hours), s.MemberCode)
			printSession(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().Float64("hours", 0, "Hours to credit")
	cmd.Flags().String("notes", "", "Notes kept with the session")
	return cmd
}

func newAdjustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjust SESSION_ID --hours HOURS [--notes NOTES]",
		Short: "Overwrite the hours credited for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("hours") {
				return errors.New("--hours is required")
			}
			hours, _ := cmd.Flags().GetFloat64("hours")
			notes, _ := cmd.Flags().GetString("notes")

			body, err := hoursBody(nil, hours, notes)
			if err != nil {
				return err
			}
			rsp, err := newClient(GetConfig()).Put(sessionPath(args[0], "hours"), body)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printRaw(cmd, rsp)
			}
			s, err := decodeSession(rsp)
			if err != nil {
				return err
			}
			okLabel.Fprintln(cmd.OutOrStdout(), "✓ Hours adjusted")
			printSession(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().Float64("hours", 0, "New hours for the session")
	cmd.Flags().String("notes", "", "Notes kept with the session")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete SESSION_ID [--yes]",
		Short: "Delete a session permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes && !confirm(cmd, fmt.Sprintf("Delete session %s? This cannot be undone. [y/N]: ", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
				return nil
			}
			if err := newClient(GetConfig()).Delete(sessionPath(args[0])); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, map[string]any{"result": 1, "deleted": args[0]})
			}
			okLabel.Fprintf(cmd.OutOrStdout(), "✓ Deleted session %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm asks on the command's input and accepts y or yes.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "List members currently signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rsp, err := newClient(GetConfig()).Get("/time-sessions/open", nil)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printRaw(cmd, rsp)
			}
			sessions, err := decodeSessionList(rsp)
			if err != nil {
				return err
			}
			printOpenSessions(cmd.OutOrStdout(), sessions)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history MEMBER_CODE",
		Short: "List a member's closed sessions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rsp, err := newClient(GetConfig()).Get("/time-sessions", map[string]string{"member": args[0]})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printRaw(cmd, rsp)
			}
			sessions, err := decodeSessionList(rsp)
			if err != nil {
				return err
			}
			printSessions(cmd.OutOrStdout(), "sessions of "+args[0], sessions)
			return nil
		},
	}
}
