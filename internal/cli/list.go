package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/soypat/wifitab/connmgr"
	"github.com/spf13/cobra"
)

const (
	keyPolicy = "policy"
	keyIfname = "ifname"
	keyRescan = "rescan"
)

// addNetworkFlags registers flags shared by commands that order or join networks.
func addNetworkFlags(cmd *cobra.Command) {
	cmd.Flags().String(keyPolicy, "first", "attempt order: first (declaration order) or strongest (scan first)")
	cmd.Flags().String(keyIfname, "", "wireless interface used to scan and join (default: any)")
	cmd.Flags().Bool(keyRescan, false, "force a fresh scan with the strongest policy")
}

func (a *app) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List networks in the order they would be attempted",
		Long: `List prints the networks of the credentials file in attempt order.
Passwords are never printed, only their length.

Example:
  wifitab list -f credentials.yaml
  wifitab list --policy strongest --ifname wlan0`,
		Args: cobra.NoArgs,
		RunE: a.runList,
	}
	addNetworkFlags(cmd)
	return cmd
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	tab, err := a.loadTable()
	if err != nil {
		return err
	}
	if tab.IsEmpty() {
		fmt.Fprintln(cmd.OutOrStdout(), "no networks configured")
		return nil
	}
	mgr, err := a.newManager(connmgr.Config{})
	if err != nil {
		return err
	}
	order, err := mgr.Order(cmd.Context(), tab)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSSID\tAUTH\tPASSLEN")
	for i, e := range order {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", i+1, e.SSID, e.Auth(), len(e.Password))
	}
	return w.Flush()
}

// newManager builds a connection manager from configuration. Fields already
// set in base are kept.
func (a *app) newManager(base connmgr.Config) (*connmgr.Manager, error) {
	policy, ok := connmgr.ParsePolicy(a.v.GetString(keyPolicy))
	if !ok {
		return nil, fmt.Errorf("invalid %s %q (valid: first, strongest)", keyPolicy, a.v.GetString(keyPolicy))
	}
	client := a.nmcliClient()
	base.Policy = policy
	if policy == connmgr.PolicyStrongestSignal {
		base.Scanner = client
	}
	base.Logger = a.logger
	return connmgr.New(client, base)
}
