package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hourbook/hourbook/pkg/api"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show total hours per member",
		Long: `Show total credited hours, flagged sessions and last activity per member.
Member codes are masked unless the root administrator turned on ID visibility
for this login ("hourbook ids show").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rsp, err := newClient(GetConfig()).Get("/hours-summary", nil)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printRaw(cmd, rsp)
			}
			var summary api.HoursSummaryRsp
			if err := json.Unmarshal(rsp, &summary); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printSummary(cmd.OutOrStdout(), &summary)
			return nil
		},
	}
}
