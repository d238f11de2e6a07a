// Command api runs the catalog HTTP server.
//
//	@title			Catalog Auth API
//	@version		1.0
//	@description	Session-authenticated product catalog with owner-scoped administration.
//	@BasePath		/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/shopadmin/catalog-auth/docs"
	"github.com/shopadmin/catalog-auth/internal/api"
	"github.com/shopadmin/catalog-auth/internal/api/middleware"
	"github.com/shopadmin/catalog-auth/internal/core/service"
	"github.com/shopadmin/catalog-auth/internal/infrastructure/config"
	mongostore "github.com/shopadmin/catalog-auth/internal/infrastructure/db/mongo"
	redisstore "github.com/shopadmin/catalog-auth/internal/infrastructure/db/redis"
	"github.com/shopadmin/catalog-auth/internal/infrastructure/http/handlers"
	"github.com/shopadmin/catalog-auth/internal/infrastructure/queue"
	"github.com/shopadmin/catalog-auth/internal/infrastructure/storage"
	"github.com/shopadmin/catalog-auth/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-auth",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongostore.NewUserRepository(db)
	products := mongostore.NewProductRepository(db)
	if err := mongostore.EnsureIndexes(ctx, users, products); err != nil {
		return err
	}

	assets, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		return err
	}

	// --- Background asset cleanup ---
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	cleaner := queue.NewDispatcher(cfg.Uploads.CleanupWorkers, assets, logger.For("asset_cleanup"))
	cleaner.Start(cleanupCtx)
	defer cleaner.Stop()

	// --- Core services ---
	hasher := service.NewBcryptHasher(service.MinHashCost)
	credentials := service.NewCredentialStore(users, hasher)
	sessions := service.NewSessionBinder(redisstore.NewSessionStore(rdb), credentials, cfg.Session.TTL, logger.For("sessions"))
	authService := service.NewAuthService(credentials, hasher, sessions, logger.For("auth"))
	productService := service.NewProductService(products, assets, cleaner, logger.For("products"))

	created, err := service.NewProvisioner(credentials, logger.For("provisioner")).Provision(ctx, seedAdmins(cfg.SeedAdmins))
	if err != nil {
		return err
	}
	if created > 0 {
		log.Info().Int("created", created).Msg("admin accounts provisioned")
	}

	// --- HTTP ---
	e := api.NewRouter(api.RouterDeps{
		Log:      logger.For("http"),
		Auth:     authService,
		Products: productService,
		Sessions: sessions,
		Cookie:   middleware.NewSessionCookie(cfg.Session.CookieName, cfg.Session.Secret, sessions.TTL(), cfg.Session.CookieSecure),
		Health: handlers.NewHealthHandler(map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		}),
		UploadDir:      cfg.Uploads.Dir,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting HTTP server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// seedAdmins turns the SEED_ADMINS map into a stable list.
func seedAdmins(m map[string]string) []service.AdminAccount {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]service.AdminAccount, 0, len(names))
	for _, name := range names {
		out = append(out, service.AdminAccount{Username: name, Password: m[name]})
	}
	return out
}
