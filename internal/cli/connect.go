package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soypat/wifitab/connmgr"
	"github.com/soypat/wifitab/mqttstatus"
	"github.com/spf13/cobra"
)

const (
	keyTimeout      = "timeout"
	keyPasses       = "passes"
	keyRetryDelay   = "retry-delay"
	keyStrict       = "strict"
	keyMQTTBroker   = "mqtt-broker"
	keyMQTTTopic    = "mqtt-topic"
	keyMQTTRetain   = "mqtt-retain"
	keyMQTTClientID = "mqtt-client-id"

	mqttDialTimeout = 5 * time.Second
)

func (a *app) newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Join the first working network with NetworkManager",
		Long: `Connect walks the credentials file and joins the first network that
succeeds using nmcli. When an MQTT broker is configured the sequence of join
attempts is published to it once a connection is established.

Example:
  wifitab connect -f credentials.yaml --ifname wlan0 --passes 3
  wifitab connect --mqtt-broker 192.168.1.10:1883 --mqtt-topic home/pi/wifi`,
		Args: cobra.NoArgs,
		RunE: a.runConnect,
	}
	addNetworkFlags(cmd)
	cmd.Flags().Duration(keyTimeout, connmgr.DefaultTimeout, "time allowed to join each network")
	cmd.Flags().Int(keyPasses, 1, "number of passes over the table before giving up")
	cmd.Flags().Duration(keyRetryDelay, connmgr.DefaultRetryDelay, "wait before the second pass, doubled every pass")
	cmd.Flags().Bool(keyStrict, false, "skip networks whose passphrase is malformed")
	cmd.Flags().String(keyMQTTBroker, "", "MQTT broker host:port to report join attempts to")
	cmd.Flags().String(keyMQTTTopic, "wifitab/status", "MQTT topic for join reports")
	cmd.Flags().Bool(keyMQTTRetain, true, "publish join reports with the retain flag")
	cmd.Flags().String(keyMQTTClientID, "wifitab", "MQTT client identifier")
	return cmd
}

func (a *app) runConnect(cmd *cobra.Command, args []string) error {
	tab, err := a.loadTable()
	if err != nil {
		return err
	}
	var reporter *mqttstatus.Reporter
	cfg := connmgr.Config{
		Timeout:          a.v.GetDuration(keyTimeout),
		Passes:           a.v.GetInt(keyPasses),
		RetryDelay:       a.v.GetDuration(keyRetryDelay),
		StrictPassphrase: a.v.GetBool(keyStrict),
	}
	if a.v.GetString(keyMQTTBroker) != "" {
		reporter, err = mqttstatus.NewReporter(mqttstatus.Config{
			Topic:  a.v.GetString(keyMQTTTopic),
			Retain: a.v.GetBool(keyMQTTRetain),
		})
		if err != nil {
			return err
		}
		cfg.Reporter = reporter
	}
	mgr, err := a.newManager(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	entry, connErr := mgr.Connect(ctx, tab)
	if reporter != nil {
		// Reports are published even after failure in case another interface still reaches the broker.
		if err := a.publish(ctx, reporter); err != nil {
			a.logger.Warn("mqtt report failed", slog.String("broker", a.v.GetString(keyMQTTBroker)), slog.String("err", err.Error()))
		}
	}
	if connErr != nil {
		return connErr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "connected to %s\n", entry.SSID)
	return nil
}

func (a *app) publish(ctx context.Context, r *mqttstatus.Reporter) error {
	ctx, cancel := context.WithTimeout(ctx, mqttDialTimeout)
	defer cancel()
	sess, err := mqttstatus.Dial(ctx, a.v.GetString(keyMQTTBroker), a.v.GetString(keyMQTTClientID))
	if err != nil {
		return err
	}
	defer sess.Close()
	return r.Flush(sess.Client)
}
