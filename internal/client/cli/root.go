package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/buildinfo"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the vaultadm command tree around a.
func NewRootCommand(a *App) *cobra.Command {
	var (
		server    string
		tokenFile string
	)

	root := &cobra.Command{
		Use:           "vaultadm",
		Short:         "Administer a safe360 vault server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("server") {
				cfg.ServerEndpointAddr = server
			}
			if cmd.Flags().Changed("token-file") {
				cfg.TokenFile = tokenFile
			}
			a.config = cfg
			a.tokens = NewTokenStore(cfg.TokenFile)
			return nil
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.out)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "JSON configuration file")
	pf.StringVarP(&server, "server", "a", "", "address and port of the vault server")
	pf.StringVar(&tokenFile, "token-file", "", "where the session token is kept")

	root.AddCommand(
		newVersionCommand(a),
		newPingCommand(a),
		newBootstrapCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoAmICommand(a),
		newSetPlanCommand(a),
		newGuestsCommand(a),
		newVaultsCommand(a),
		newUsageCommand(a),
		newActivityCommand(a),
	)
	return root
}

// Execute runs vaultadm with args and reports errors on stderr.
func Execute(ctx context.Context, a *App, args []string, stderr io.Writer) int {
	root := NewRootCommand(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newVersionCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(a.out)
		},
	}
}

func newPingCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.connect(false)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()
			if err := c.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s is up\n", a.config.ServerEndpointAddr)
			return nil
		},
	}
}
