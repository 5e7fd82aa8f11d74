package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// canonicalPlan accepts plan names in any letter case.
func canonicalPlan(s string) (string, error) {
	for _, p := range []string{"Free", "Pro", "Scale"} {
		if strings.EqualFold(s, p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown plan %q, want Free, Pro or Scale", s)
}

// parseExpiry accepts an RFC 3339 timestamp or a duration from now.
func parseExpiry(v string, now time.Time) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("--expires wants an RFC 3339 time or a positive duration, got %q", v)
	}
	t := now.Add(d)
	return &t, nil
}

func newSetPlanCommand(a *App) *cobra.Command {
	var expires string

	cmd := &cobra.Command{
		Use:   "set-plan <identity-id> <Free|Pro|Scale>",
		Short: "Change an admin's subscription plan (master only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := canonicalPlan(args[1])
			if err != nil {
				return err
			}
			expiresAt, err := parseExpiry(expires, time.Now())
			if err != nil {
				return err
			}

			c, err := a.connect(true)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			if err := c.SetPlan(ctx, args[0], plan, expiresAt); err != nil {
				return err
			}
			if expiresAt != nil {
				fmt.Fprintf(a.out, "%s is now on %s until %s\n", args[0], plan, formatTime(*expiresAt))
			} else {
				fmt.Fprintf(a.out, "%s is now on %s\n", args[0], plan)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&expires, "expires", "", "plan expiry, RFC 3339 or a duration such as 720h")
	return cmd
}

func newGuestsCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "guests",
		Short: "List guests invited by the logged in admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.connect(true)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			guests, err := c.ListGuests(ctx)
			if err != nil {
				return err
			}

			tw := newTable(a.out)
			fmt.Fprintln(tw, "ID\tEMAIL\tACTIVATED\tCREATED")
			for _, g := range guests {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", g.ID, g.Email, g.Activated, formatTime(g.CreatedAt))
			}
			return tw.Flush()
		},
	}
}

func newVaultsCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "vaults",
		Short: "List the vaults visible to the logged in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.connect(true)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			vaults, err := c.ListVaults(ctx)
			if err != nil {
				return err
			}

			tw := newTable(a.out)
			fmt.Fprintln(tw, "ID\tNAME\tOWNER\tSTATUS\tITEMS")
			for _, v := range vaults {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", v.ID, v.Name, v.OwnerID, v.Status, len(v.Items))
			}
			return tw.Flush()
		},
	}
}

func newUsageCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show consumption against the plan's limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.connect(true)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			u, err := c.Usage(ctx)
			if err != nil {
				return err
			}
			if u.Unlimited {
				fmt.Fprintf(a.out, "unlimited: %d vaults, %d guests, %d MB\n", u.Vaults, u.Guests, u.StorageMB)
				return nil
			}

			tw := newTable(a.out)
			fmt.Fprintf(tw, "plan\t%s\n", u.Plan)
			fmt.Fprintf(tw, "vaults\t%d/%d\n", u.Vaults, u.Limits.MaxVaults)
			fmt.Fprintf(tw, "guests\t%d/%d\n", u.Guests, u.Limits.MaxGuests)
			fmt.Fprintf(tw, "storage\t%d/%d MB\n", u.StorageMB, u.Limits.StorageMB)
			fmt.Fprintf(tw, "items per vault\t%d\n", u.Limits.MaxItemsPerVault)
			return tw.Flush()
		},
	}
}

func newActivityCommand(a *App) *cobra.Command {
	var (
		subject string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent activity, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.connect(true)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			entries, err := c.QueryActivity(ctx, subject, limit)
			if err != nil {
				return err
			}

			tw := newTable(a.out)
			fmt.Fprintln(tw, "TIME\tUSER\tACTION\tORIGIN\tDETAILS")
			for _, e := range entries {
				origin := e.Origin
				if origin == "" {
					origin = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", formatTime(e.Timestamp), e.UserID, e.Action, origin, e.Details)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "identity whose entries to show (default: everyone visible)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries")
	return cmd
}
