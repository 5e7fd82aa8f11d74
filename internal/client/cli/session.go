package cli

import (
	"fmt"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/spf13/cobra"
)

func newLoginCommand(a *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session token for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				var err error
				if email, err = GetSimpleText(a.in, "Email", a.out); err != nil {
					return err
				}
			}
			pw, err := GetPassword("Password", a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			c, err := a.connect(false)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			session, err := c.Login(ctx, email, string(pw))
			if err != nil {
				return err
			}
			if err := a.tokens.Save(a.config.ServerEndpointAddr, session); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Fprintf(a.out, "Logged in as %s (%s), session valid until %s\n",
				session.Identity.Email, session.Identity.Role,
				session.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newLogoutCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func newWhoAmICommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.connect(true)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			me, err := c.Me(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\t%s\t%s\n", me.ID, me.Email, me.Role)
			if me.EffectivePlan != "" {
				fmt.Fprintf(a.out, "plan: %s\n", me.EffectivePlan)
			}
			return nil
		},
	}
}
