// README: Entry point; loads config, wires services, serves HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"supportcarr/internal/config"
	httptransport "supportcarr/internal/http"
	"supportcarr/internal/infra"
	"supportcarr/internal/log"
	"supportcarr/internal/modules/dispatch"
	"supportcarr/internal/modules/location"
	"supportcarr/internal/modules/pricing"
	"supportcarr/internal/modules/ride"
	"supportcarr/internal/modules/sms"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := log.Base()
		logger.Fatal().Err(err).Msg("load config")
	}
	log.Configure(log.Config{Level: cfg.Log.Level, Service: "supportcarr-api"})
	logger := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	logger := log.WithComponent("main")

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	engine := dispatch.NewRedisEngine(redisClient, dispatch.Config{KeyPrefix: cfg.Dispatch.KeyPrefix}, log.WithComponent("dispatch"))
	pricingSvc := pricing.NewService(cfg.Pricing.FlatFeeCents)
	rideSvc := ride.NewService(ride.NewStore(dbPool), engine, pricingSvc, cfg.Dispatch)

	var snapshots location.SnapshotWriter
	if cfg.SnapshotsEnabled {
		snapshots = location.NewSnapshotStore(dbPool)
	}
	locationSvc := location.NewService(engine, snapshots)

	var smsSvc *sms.Service
	if cfg.Twilio.AuthToken != "" {
		smsSvc = sms.NewService(sms.Config{AuthToken: cfg.Twilio.AuthToken, WebhookURL: cfg.Twilio.WebhookURL}, rideSvc)
	} else {
		logger.Info().Msg("sms webhook disabled: no auth token configured")
	}

	gin.SetMode(gin.ReleaseMode)
	handler := httptransport.NewServer(httptransport.ServerDeps{
		Rides:    rideSvc,
		Location: locationSvc,
		SMS:      smsSvc,
		Dispatch: cfg.Dispatch,
		Logger:   log.WithComponent("http"),
	})
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
