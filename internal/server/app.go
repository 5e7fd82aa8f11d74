// Package server wires the vault components together and runs them until
// the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/activity"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/auth"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/backup"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/config"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/mailer"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/metrics"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/ratelimit"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/store"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/tokens"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/users"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/vaults"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"

	gs "github.com/businessecom2026-code/Safe360co-sub000/internal/server/grpc"
)

const mailQueueSize = 256

// authMethods get the stricter AuthRateLimitMax budget.
var authMethods = []string{
	common.MethodLogin,
	common.MethodRequestPasswordReset,
	common.MethodActivateInvite,
	common.MethodConsumePasswordReset,
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	metrics  *metrics.Metrics
	store    *store.Store
	db       *sql.DB
	mail     *mailer.Dispatcher
	limiter  *ratelimit.Limiter
	exporter *backup.Exporter
	grpc     *gs.Server
	ops      *metrics.Server
}

// OpenStore opens the configured medium. For the SQL backends it also
// applies migrations and returns the database handle for the caller to
// close; for the file backend the handle is nil.
func OpenStore(ctx context.Context, c *config.Config, opts ...store.Option) (*store.Store, *sql.DB, error) {
	switch c.StoreBackend {
	case config.StoreBackendPostgres:
		db, err := store.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}
		medium := store.NewSQLMedium(db)
		if err := medium.RunMigrations(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return store.New(medium, opts...), db, nil
	case config.StoreBackendSQLite:
		db, err := store.OpenSQLite(ctx, c.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}
		medium := store.NewSQLiteMedium(db)
		if err := medium.RunMigrations(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return store.New(medium, opts...), db, nil
	default:
		return store.New(store.NewFileMedium(c.StorePath), opts...), nil, nil
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	m := metrics.New()
	st, db, err := OpenStore(ctx, c, store.WithSaveObserver(m.StoreSaved))
	if err != nil {
		return nil, err
	}

	// an unreadable document must stop startup, not the first request
	if err := st.View(ctx, func(*models.Document) error { return nil }); err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("store check: %w", err)
	}

	clock := timex.SystemClock{}
	rec := activity.NewRecorder(st, c.ActivityLogCap, clock, logger)
	mail := mailer.NewDispatcher(mailer.NewLogSender(logger), c.MailTimeout, mailQueueSize, logger)

	us := users.NewService(st, rec, c.BcryptCost, clock, logger)
	engine := tokens.NewEngine(st, us, auth.NewIssuer([]byte(c.SecretKey), c.SessionTokenTTL, clock), rec, mail,
		tokens.WithObserver(m),
		tokens.WithClock(clock),
		tokens.WithResetTTL(c.ResetTokenTTL),
		tokens.WithPublicBaseURL(c.PublicBaseURL),
		tokens.WithLogger(logger),
	)
	vs := vaults.NewService(st, rec, mail, clock, logger)

	limiterOpts := []ratelimit.Option{
		ratelimit.WithClock(clock),
		ratelimit.WithRejectObserver(m.RateLimited),
		ratelimit.WithLogger(logger),
	}
	for _, method := range authMethods {
		limiterOpts = append(limiterOpts, ratelimit.WithRule(method, ratelimit.Rule{Max: c.AuthRateLimitMax, Window: c.RateLimitWindow}))
	}
	limiter := ratelimit.New(ratelimit.Rule{Max: c.RateLimitMax, Window: c.RateLimitWindow}, limiterOpts...)

	var exporter *backup.Exporter
	if c.BackupsEnabled() {
		client, err := backup.NewS3Client(ctx, c)
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			return nil, err
		}
		exporter = backup.NewExporter(st, client, c.S3Bucket, clock, logger)
	}

	svc := gs.Services{Users: us, Tokens: engine, Vaults: vs, Activity: rec}
	health := func(ctx context.Context) error {
		return st.View(ctx, func(*models.Document) error { return nil })
	}

	return &App{
		config:   c,
		logger:   logger,
		metrics:  m,
		store:    st,
		db:       db,
		mail:     mail,
		limiter:  limiter,
		exporter: exporter,
		grpc:     gs.NewServer(c.EndpointAddrGRPC, logger, svc, limiter, m),
		ops:      metrics.NewServer(c.MetricsAddr, metrics.NewRouter(m, health), logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts every component and blocks until ctx is cancelled, a signal
// arrives or a server fails. Pending mail is drained before it returns.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreBackend)

	app.initSignalHandler(cancelFunc)

	go app.mail.Run(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server failed", "error", err)
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.ops.Run(ctx); err != nil {
			app.logger.Error(ctx, "ops server failed", "error", err)
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.limiter.Run(ctx, app.config.RateLimitSweepInterval)
	}()

	if app.exporter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.exporter.Run(ctx, app.config.BackupInterval)
		}()
	}

	wg.Wait()
	app.shutdown()
}

func (app *App) shutdown() {
	ctx := context.Background()

	select {
	case <-app.mail.Done():
	case <-time.After(app.config.MailTimeout):
		app.logger.Warn(ctx, "mail queue not drained before shutdown")
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close failed", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
