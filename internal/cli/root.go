// Package cli implements the wifitab command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/wifitab"
	"github.com/soypat/wifitab/credfile"
	"github.com/soypat/wifitab/nmcli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "WIFITAB"
	configName     = "wifitab"
	configType     = "yaml"
	defaultCredsFn = "credentials.yaml"

	keyConfig   = "config"
	keyFile     = "file"
	keyLogLevel = "log-level"
)

// app holds state shared by all subcommands.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
	// runner overrides the nmcli command runner. Used by tests.
	runner nmcli.Runner
}

// NewRootCmd creates the top-level "wifitab" command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "wifitab",
		Short: "Manage WiFi credential tables",
		Long: `wifitab validates, lists and compiles ordered WiFi credential tables
and joins the first working network of a table on Linux hosts.

Configuration is read from flags, WIFITAB_* environment variables and an
optional wifitab.yaml in the working directory or ~/.config/wifitab.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().String(keyConfig, "", "config file (default: ./wifitab.yaml or ~/.config/wifitab/wifitab.yaml)")
	root.PersistentFlags().StringP(keyFile, "f", defaultCredsFn, "credentials YAML file")
	root.PersistentFlags().String(keyLogLevel, "info", "log level: debug, info, warn or error")

	root.AddCommand(a.newListCmd())
	root.AddCommand(a.newCheckCmd())
	root.AddCommand(a.newGenCmd())
	root.AddCommand(a.newConnectCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command and exits with a non-zero code on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration before any subcommand runs. Flags take precedence
// over environment variables which take precedence over the config file.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if cfg := v.GetString(keyConfig); cfg != "" {
		v.SetConfigFile(cfg)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	a.v = v

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		return fmt.Errorf("invalid %s: %w", keyLogLevel, err)
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// loadTable reads the credentials file named by configuration.
func (a *app) loadTable() (wifitab.Table, error) {
	path := a.v.GetString(keyFile)
	if path == "" {
		return wifitab.Table{}, errors.New("no credentials file configured")
	}
	tab, err := credfile.Load(path)
	if err != nil {
		return wifitab.Table{}, err
	}
	a.logger.Debug("loaded credentials", slog.String("file", path), slog.Int("networks", tab.Len()))
	return tab, nil
}

func (a *app) nmcliClient() *nmcli.Client {
	return &nmcli.Client{
		Ifname: a.v.GetString(keyIfname),
		Rescan: a.v.GetBool(keyRescan),
		Logger: a.logger,
		Runner: a.runner,
	}
}
