// Package app wires the wallet daemon together and runs it until it is
// signalled to stop.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/greenwallet/internal/client/client"
	"github.com/dmitrijs2005/greenwallet/internal/client/config"
	"github.com/dmitrijs2005/greenwallet/internal/client/cryptolib"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/greenwallet/internal/client/securestore"
	"github.com/dmitrijs2005/greenwallet/internal/client/security"
	"github.com/dmitrijs2005/greenwallet/internal/client/services"
	"github.com/dmitrijs2005/greenwallet/internal/client/store"
	"github.com/dmitrijs2005/greenwallet/internal/filex"
	"github.com/dmitrijs2005/greenwallet/internal/logging"
	"github.com/dmitrijs2005/greenwallet/internal/netx"
	"github.com/dmitrijs2005/greenwallet/internal/timex"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	now       timex.Clock
	db        *sql.DB
	api       client.Client
	secure    *securestore.Store
	store     *store.Store
	refresher *services.Refresher
	watcher   *netx.Watcher
}

// NewApp opens the wallet in c.DataDir with passphrase and builds every
// component on top of it.
func NewApp(ctx context.Context, c *config.Config, passphrase []byte, crypto cryptolib.Library, logger logging.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	dir, err := filex.EnsureSubdDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	dbPath := c.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(dir, dbPath)
	}

	db, err := store.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	a, err := build(ctx, c, db, passphrase, crypto, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, c *config.Config, db *sql.DB, passphrase []byte, crypto cryptolib.Library, logger logging.Logger) (*App, error) {
	secure, err := securestore.Open(ctx, metadata.NewSQLiteRepository(db), passphrase)
	if err != nil {
		return nil, err
	}

	anchors, err := security.LoadCertificates(c.TrustAnchorsFile)
	if err != nil {
		return nil, err
	}
	verifier := security.NewVerifier(anchors, secure, logger.With("component", "verifier"))
	api := client.NewHTTPClient(c.APIBaseURL, c.HTTPTimeout, verifier, logger.With("component", "api"))

	secrets := func(r metadata.Repository) store.SecretKeys { return secure.WithRepository(r) }
	st, err := store.New(ctx, db, secrets, crypto, store.WithLogger(logger.With("component", "store")))
	if err != nil {
		return nil, err
	}

	loader := services.NewGreenCardLoader(api, crypto, st, c.EventFlows, logger.With("component", "loader"))
	refresher, err := services.NewRefresher(ctx, loader, st, secure, services.RefresherOptions{
		RenewalDays:        c.CredentialRenewalDays,
		ForegroundCooldown: c.ForegroundRetryCooldown,
		Logger:             logger.With("component", "refresher"),
	})
	if err != nil {
		return nil, fmt.Errorf("refresher: %w", err)
	}

	return &App{
		config:    c,
		logger:    logger,
		now:       timex.SystemClock,
		db:        db,
		api:       api,
		secure:    secure,
		store:     st,
		refresher: refresher,
		watcher:   netx.NewWatcher(api.Ping, c.OnlineCheckInterval, c.OfflineMaxBackoff, logger.With("component", "netx")),
	}, nil
}

// initSignalHandler cancels on SIGINT, SIGTERM and SIGQUIT. SIGUSR1 tells
// the wallet its user came back to it.
func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGUSR1)

	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				if sig == syscall.SIGUSR1 {
					go app.refresher.DidBecomeActive(ctx)
					continue
				}
				cancelFunc()
				return
			}
		}
	}()
}

// bootstrap refreshes the remote configuration and drops what has expired
// since the last run. Failures are logged; the wallet works with what it has.
func (app *App) bootstrap(ctx context.Context) {
	rc, _, err := app.api.FetchRemoteConfiguration(ctx)
	if err != nil {
		app.logger.Warn(ctx, "remote configuration not refreshed", "error", err)
	} else if err := app.secure.SetRemoteConfiguration(ctx, rc); err != nil {
		app.logger.Error(ctx, "failed to save remote configuration", "error", err)
	}

	now := app.now()
	expired, err := app.store.RemoveExpiredGreenCards(ctx, now)
	if err != nil {
		app.logger.Error(ctx, "failed to remove expired green cards", "error", err)
	}
	for _, gc := range expired {
		app.logger.Info(ctx, "green card expired", "type", gc.Type, "origin", gc.OriginType)
	}
	if n, err := app.store.ExpireEventGroups(ctx, now); err != nil {
		app.logger.Error(ctx, "failed to expire event groups", "error", err)
	} else if n > 0 {
		app.logger.Info(ctx, "event groups expired", "count", n)
	}
	if _, err := app.store.RemoveDraftEventGroups(ctx); err != nil {
		app.logger.Error(ctx, "failed to remove draft event groups", "error", err)
	}
}

func (app *App) logStateChanges(ctx context.Context) {
	app.refresher.OnUpdate(func(_ *services.State, st services.State) {
		args := []any{
			"loading", st.LoadingState.Kind,
			"expiry", st.CredentialExpiryState.Kind,
			"errors", st.ErrorOccurenceCount,
		}
		if st.LoadingState.Err != nil {
			args = append(args, "error", st.LoadingState.Err)
		}
		app.logger.Info(ctx, "refresh state", args...)
	})
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting wallet...", "api", app.config.APIBaseURL)

	app.initSignalHandler(ctx, cancelFunc)
	app.bootstrap(ctx)
	app.logStateChanges(ctx)

	app.watcher.WhenReachable(func() { app.refresher.Reachable(ctx) })

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = app.watcher.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.refresher.Load(ctx)
	}()

	<-ctx.Done()
	wg.Wait()
	app.logger.Info(context.Background(), "wallet stopped")
}
