package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/adapters"
	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/domain"
	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/handlers"
	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/subscriber"
	"github.com/wuyiadepoju/billing-killswitch/internal/app/killswitch/usecases/disable_billing"
	"github.com/wuyiadepoju/billing-killswitch/internal/config"
	"github.com/wuyiadepoju/billing-killswitch/internal/logger"
)

func main() {
	var (
		shutdownTimeout = flag.Duration("shutdown-timeout", 10*time.Second, "Timeout for graceful shutdown")
		startupTimeout  = flag.Duration("startup-timeout", 30*time.Second, "Timeout for creating API clients")
	)
	flag.Parse()

	if err := run(*startupTimeout, *shutdownTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "killswitch: %v\n", err)
		os.Exit(1)
	}
}

func run(startupTimeout, shutdownTimeout time.Duration) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	lg, err := logger.NewLogging(startCtx, logger.Options{
		ProjectID:    cfg.LoggingProjectID,
		CloudLogging: cfg.CloudLogging,
		MinSeverity:  cfg.LogLevel,
		ServiceName:  cfg.ServiceName,
		Revision:     cfg.Revision,
	})
	if err != nil {
		return err
	}
	defer lg.Close()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Release:          cfg.Revision,
			Environment:      cfg.ProjectID,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("sentry initialization failed: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	billingClient, err := adapters.DialCloudBilling(startCtx, cfg.BillingEndpoint)
	if err != nil {
		return err
	}
	defer billingClient.Close()

	action := adapters.NewCloudBillingClient(billingClient, lg.Logger, cfg.BillingTimeout)
	interactor := disable_billing.NewInteractor(action, lg.Logger, domain.RealClock{}, cfg.ProjectID, cfg.StrictPermissions)

	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(handlers.NewKillSwitch(interactor, lg.Logger), lg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Logger(gctx).Infof("listening on %s, target project %s", srv.Addr, cfg.ProjectID)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Subscription != "" {
		ps, err := subscriber.NewPubsubClient(startCtx, cfg.ProjectID, lg)
		if err != nil {
			stop()
			_ = g.Wait()

			return err
		}
		defer ps.Close()

		sub := subscriber.New(ps.Subscription(cfg.Subscription), interactor, lg)

		g.Go(func() error {
			lg.Logger(gctx).Infof("receiving from subscription %s", cfg.Subscription)
			return sub.Run(gctx)
		})
	}

	return g.Wait()
}
