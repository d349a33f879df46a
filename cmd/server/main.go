package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridiancrm/meridian/pkg/audit"
	"github.com/meridiancrm/meridian/pkg/cache"
	"github.com/meridiancrm/meridian/pkg/config"
	"github.com/meridiancrm/meridian/pkg/hosting"
	"github.com/meridiancrm/meridian/pkg/logger"
	"github.com/meridiancrm/meridian/pkg/migrate"
	"github.com/meridiancrm/meridian/pkg/pg"
	"github.com/meridiancrm/meridian/pkg/redis"
	"github.com/meridiancrm/meridian/pkg/schema"
	"github.com/meridiancrm/meridian/pkg/tenant"
	tenantsvc "github.com/meridiancrm/meridian/svc/tenant"
	usersvc "github.com/meridiancrm/meridian/svc/user"
)

type serverConfig struct {
	Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		srvCfg     serverConfig
		logCfg     logger.Config
		pgCfg      pg.Config
		redisCfg   redis.Config
		hostingCfg hosting.Config
		schemaCfg  schema.Config
		migrateCfg migrate.Config
	)
	config.MustLoad(&srvCfg)
	config.MustLoad(&logCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&hostingCfg)
	config.MustLoad(&schemaCfg)
	config.MustLoad(&migrateCfg)

	log := logger.New(
		logger.WithConfig(logCfg),
		logger.WithAttrs(slog.String("service", "meridian")),
		logger.WithContextExtractors(tenant.LoggerExtractor(), audit.LoggerExtractor()),
	)
	slog.SetDefault(log)

	mode, err := hosting.Parse(hostingCfg)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "hosting mode resolved", "mode", mode)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Redis is cache-only; losing it degrades reads to misses, so a
	// failed connection falls back to the in-process store.
	var store cache.Store
	if client, err := redis.Connect(ctx, redisCfg); err != nil {
		log.WarnContext(ctx, "redis unavailable, using in-memory cache", "error", err)
		store = cache.NewMemoryStore(0)
	} else {
		defer client.Close()
		store = cache.NewRedisStore(client)
	}

	// Exactly one instance in the deployment applies migrations; the
	// rest observe the held lock and continue to serve.
	lock := pg.NewAdvisoryLock(pool, migrate.LockKey)
	coordinator := migrate.NewCoordinator(mode, lock, log, migrate.DefaultSteps(pool, migrateCfg, log)...)
	if err := coordinator.Run(ctx); err != nil {
		if !errors.Is(err, migrate.ErrLockNotAcquired) {
			return err
		}
	}

	stamper := audit.NewStamper()
	router := schema.NewRouter(mode, schemaCfg)
	globalCache := cache.NewGlobalCache(store, log)
	tenantCache := cache.NewTenantCache(store, log)

	tenants := tenantsvc.NewService(tenantsvc.NewStore(pool), globalCache, stamper, mode, log)
	users := usersvc.NewService(usersvc.NewStore(pool, router, stamper), tenantCache, log)

	r := newRouter(tenants, users, pg.Healthcheck(pool))

	srv := &http.Server{Addr: srvCfg.Addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "listening", "addr", srvCfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the HTTP surface. Tenant identity comes from the
// request host alone: tenant.ClaimResolver reads an unverified token
// claim and must only sit behind middleware that checks signatures,
// and none is mounted here.
func newRouter(tenants tenant.Provider, users *usersvc.Service, health func(context.Context) error) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(tenant.Middleware(
		tenant.NewHostResolver(),
		tenants,
		tenant.WithSkipPaths("/healthz"),
	))

	r.Get("/healthz", healthHandler(health))

	r.Group(func(r chi.Router) {
		r.Use(tenant.RequireTenant(nil))
		mountUserRoutes(r, users)
	})
	return r
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
