package cli

import (
	"context"
	"fmt"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	serverconfig "github.com/businessecom2026-code/Safe360co-sub000/internal/server/config"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
	"github.com/spf13/cobra"
)

// bootstrapMaster opens the store described by sc and creates the master
// identity in it.
func bootstrapMaster(ctx context.Context, sc *serverconfig.Config, email, password string) (string, error) {
	st, db, err := server.OpenStore(ctx, sc)
	if err != nil {
		return "", err
	}
	if db != nil {
		defer db.Close()
	}

	logger := logging.NewNop()
	clock := timex.SystemClock{}
	recorder := activity.NewRecorder(st, sc.ActivityLogCap, clock, logger)
	svc := users.NewService(st, recorder, sc.BcryptCost, clock, logger)

	identity, err := svc.BootstrapMaster(ctx, email, password)
	if err != nil {
		return "", err
	}
	return identity.ID, nil
}

func newBootstrapCommand(a *App) *cobra.Command {
	sc := &serverconfig.Config{}
	sc.LoadDefaults()

	var email string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the master identity directly in the server's store",
		Long: `Create the single master identity. This talks to the store, not to a
running server, and fails if a master already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				var err error
				if email, err = GetSimpleText(a.in, "Master email", a.out); err != nil {
					return err
				}
			}
			if err := users.ValidateEmail(email); err != nil {
				return err
			}

			pw, err := GetNewPassword(a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			id, err := bootstrapMaster(cmd.Context(), sc, email, string(pw))
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			fmt.Fprintf(a.out, "Master %s created (%s)\n", email, id)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&email, "email", "", "master email")
	f.StringVar(&sc.StoreBackend, "store-backend", sc.StoreBackend, "file or postgres")
	f.StringVar(&sc.StorePath, "store", sc.StorePath, "path of the store document (file backend)")
	f.StringVar(&sc.DatabaseDSN, "dsn", sc.DatabaseDSN, "database DSN (postgres backend)")
	f.IntVar(&sc.BcryptCost, "bcrypt-cost", sc.BcryptCost, "bcrypt cost for the master password")
	return cmd
}
