package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the credentials file",
		Long: `Check parses the credentials file and reports networks whose password
would be rejected by a WPA2 supplicant. Open networks are reported but are not errors.`,
		Args: cobra.NoArgs,
		RunE: a.runCheck,
	}
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	tab, err := a.loadTable()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if tab.IsEmpty() {
		return fmt.Errorf("%s: no networks configured", a.v.GetString(keyFile))
	}
	bad := 0
	for i, e := range tab.List() {
		if err := e.CheckPassphrase(); err != nil {
			bad++
			fmt.Fprintf(out, "networks[%d] %s: %v\n", i, e, err)
		} else if e.IsOpen() {
			fmt.Fprintf(out, "networks[%d] %s: open network\n", i, e)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d networks have an invalid passphrase", bad, tab.Len())
	}
	fmt.Fprintf(out, "%d networks OK\n", tab.Len())
	return nil
}
