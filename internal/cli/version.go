package cli

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/hourbook/hourbook/internal/common/httpclient"
)

// checkCompatible reports whether the server's API version satisfies the
// version this client was built against.
func checkCompatible(serverApi string) (bool, error) {
	c, err := semver.NewConstraint("^" + httpclient.ClientApiVersion)
	if err != nil {
		return false, err
	}
	v, err := semver.NewVersion(serverApi)
	if err != nil {
		return false, fmt.Errorf("invalid server api version %q: %w", serverApi, err)
	}
	return c.Check(v), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version and check the server's",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := map[string]any{
				"version_cli": getCLIVersion(),
				"api_version": httpclient.ClientApiVersion,
			}
			w := cmd.OutOrStdout()
			if !jsonOutput {
				fmt.Fprintf(w, "hourbook CLI %s (api %s)\n", getCLIVersion(), httpclient.ClientApiVersion)
			}

			path, err := configPath()
			if err == nil {
				err = LoadConfig(path)
			}
			if err != nil {
				// without a server there is only the local version to report
				if jsonOutput {
					return printJSON(cmd, out)
				}
				return nil
			}

			rsp, err := newClient(GetConfig()).Get("/version", nil)
			if err != nil {
				return fmt.Errorf("unable to reach server: %w", err)
			}
			r := gjson.ParseBytes(rsp)
			serverApi := r.Get("api_version").String()
			ok, err := checkCompatible(serverApi)
			if err != nil {
				return err
			}
			out["server_version"] = r.Get("server_version").String()
			out["server_api_version"] = serverApi
			out["compatible"] = ok

			if jsonOutput {
				return printJSON(cmd, out)
			}
			fmt.Fprintf(w, "%s (api %s)\n", r.Get("server_version").String(), serverApi)
			if !ok {
				warnLabel.Fprintln(w, "Server API is not compatible with this CLI; upgrade one of them")
				return ErrAlreadyHandled
			}
			okLabel.Fprintln(w, "✓ Server is compatible")
			return nil
		},
	}
}
