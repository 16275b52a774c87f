package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func printSettings(cmd *cobra.Command, rsp []byte, msg string) error {
	if jsonOutput {
		return printRaw(cmd, rsp)
	}
	r := gjson.ParseBytes(rsp)
	w := cmd.OutOrStdout()
	okLabel.Fprintf(w, "✓ %s\n", msg)
	fmt.Fprintf(w, "Member codes visible: %t\n", r.Get("show_ids").Bool())
	fmt.Fprintf(w, "Kiosk locked: %t\n", r.Get("kiosk_locked").Bool())
	return nil
}

func newKioskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kiosk",
		Short: "Lock or unlock this login in kiosk mode",
		Long: `While locked, this login may only sign members in and out, list open
sessions and read the summary. Unlocking needs the exit code.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	lock := &cobra.Command{
		Use:   "lock",
		Short: "Enter kiosk mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rsp, _, err := newClient(GetConfig()).Post("/settings/kiosk/lock", nil)
			if err != nil {
				return err
			}
			return printSettings(cmd, rsp, "Kiosk locked")
		},
	}
	unlock := &cobra.Command{
		Use:   "unlock EXIT_CODE",
		Short: "Leave kiosk mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := sjson.SetBytes(nil, "exit_code", args[0])
			if err != nil {
				return err
			}
			rsp, _, err := newClient(GetConfig()).Post("/settings/kiosk/unlock", body)
			if err != nil {
				return err
			}
			return printSettings(cmd, rsp, "Kiosk unlocked")
		},
	}
	cmd.AddCommand(lock, unlock)
	return cmd
}

func newIDsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ids",
		Short: "Show or hide member codes in the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	set := func(show bool, msg string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			body, err := sjson.SetBytes(nil, "show", show)
			if err != nil {
				return err
			}
			rsp, err := newClient(GetConfig()).Put("/settings/id-visibility", body)
			if err != nil {
				return err
			}
			return printSettings(cmd, rsp, msg)
		}
	}
	cmd.AddCommand(
		&cobra.Command{Use: "show", Short: "Reveal member codes (root administrator only)", Args: cobra.NoArgs, RunE: set(true, "Member codes shown")},
		&cobra.Command{Use: "hide", Short: "Mask member codes", Args: cobra.NoArgs, RunE: set(false, "Member codes hidden")},
	)
	return cmd
}
