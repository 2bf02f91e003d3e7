// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/database"
	"github.com/rufinostore/bubastore/internal/gateway"
	"github.com/rufinostore/bubastore/internal/i18n"
	"github.com/rufinostore/bubastore/internal/router"
	"github.com/rufinostore/bubastore/internal/utils"
)

const notifySweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	setupLogging(cfg)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	if err := i18n.Initialize(cfg.I18n.LocalesPath, cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	if cfg.Database.SeedData {
		if err := database.SeedInitialData(db); err != nil {
			logrus.WithError(err).Fatal("Failed to seed initial data")
		}
	}

	// Gateway clients are built once and injected everywhere; no
	// package-global SDK state.
	stripeClient := gateway.NewStripeClient(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret)
	mercadopagoClient := gateway.NewMercadoPagoClient(cfg.Payment.MercadoPagoBaseURL, cfg.Payment.MercadoPagoAccessToken)

	svcs, err := router.BuildServices(db, cfg, stripeClient, mercadopagoClient)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build services")
	}

	// Fulfillment sweeper retries pending sale emails until shutdown.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go svcs.Fulfillment.Run(sweepCtx, notifySweepInterval)

	engine := router.Setup(cfg, db, svcs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":        cfg.Server.Port,
			"environment": cfg.Environment,
		}).Info("Server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

func setupLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	}
}
