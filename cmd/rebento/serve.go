package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/config"
	"github.com/totegamma/rebento/internal/infra/database"
	"github.com/totegamma/rebento/internal/infra/repository"
	"github.com/totegamma/rebento/internal/interface/rest"
	authmw "github.com/totegamma/rebento/internal/present/rest/middleware"
	"github.com/totegamma/rebento/internal/service"
	"github.com/totegamma/rebento/internal/usecase"
)

func runServe(args []string) error {
	flagSet := newFlagSet("serve")
	configPath := flagSet.StringP("config", "c", "config.yaml", "path to the config file")
	if ok, err := parse(flagSet, args); !ok || err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	if cfg.Server.EnableTrace {
		cleanup, err := setupTraceProvider(cfg.Server.TraceEndpoint, "rebento", version)
		if err != nil {
			return errors.Wrap(err, "failed to setup trace provider")
		}
		defer cleanup()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var signer rebento.Signer
	if cfg.NodeInfo.PrivateKey != "" {
		keySigner, err := rebento.NewKeySigner(cfg.NodeInfo.PrivateKey)
		if err != nil {
			return errors.Wrap(err, "invalid instance key")
		}
		signer = keySigner
	} else {
		logger.Warn("no instance key configured, publishing is disabled")
	}

	var versions usecase.VersionRepository
	if cfg.Server.PostgresDsn != "" {
		db, err := database.NewPostgres(cfg.Server.PostgresDsn)
		if err != nil {
			return errors.Wrap(err, "failed to connect database")
		}
		if err := database.MigratePostgres(db); err != nil {
			return errors.Wrap(err, "failed to migrate database")
		}
		versions = repository.NewVersionRepository(db)
	} else {
		logger.Warn("no postgres configured, the local publish log is disabled")
	}

	rdb := database.NewRedis(cfg.Server.RedisAddr, cfg.Server.RedisPassword, cfg.Server.RedisDB)
	if err := database.PingRedis(ctx, rdb); err != nil {
		return err
	}
	defer rdb.Close()
	signals := service.NewSignalService(rdb)

	mc := database.NewMemcached(cfg.Server.MemcachedAddr)
	p := newPipeline(cfg, logger, mc)

	go func() {
		if err := p.cache.Warmup(ctx); err != nil {
			logger.Warn("fast cache warmup failed", slog.String("error", err.Error()))
		}
	}()

	publish := usecase.NewPublishUsecase(p.storage, p.cache, versions, signals, usecase.NewVersionClock(nil), logger)
	drafts := usecase.NewDraftUsecase(repository.NewDraftRepository(rdb), p.compiler, publish)
	handler := rest.NewHandler(
		cfg.NodeInfo,
		p.compiler,
		drafts,
		publish,
		p.resolve,
		usecase.NewEditUsecase(publish),
		versions,
		signals,
		signer,
	)
	auth := authmw.NewAuthMiddleware(service.NewAuthService(cfg.NodeInfo.FQDN))

	e := echo.New()
	e.HideBanner = true
	if cfg.Server.EnableTrace {
		e.Use(otelecho.Middleware("rebento", otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/api/events"
		})))
	}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(auth.IdentifyIdentity)
	handler.RegisterRoutes(e)

	go func() {
		logger.Info("listening", slog.String("addr", cfg.Server.ListenAddr), slog.String("address", cfg.NodeInfo.Address))
		if err := e.Start(cfg.Server.ListenAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
