package main

import (
	"context"
	"io"
	netHttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fee-portal/config"
	"fee-portal/dataservice"
	"fee-portal/dataservice/kafkafeed"
	"fee-portal/dataservice/postgres"
	"fee-portal/dataservice/rest"
	portalHttp "fee-portal/http"
	"fee-portal/logger"
	"fee-portal/services"
)

func main() {
	cfg := config.Load()

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefault(log)

	var (
		svc     dataservice.Service
		auth    dataservice.Auth
		feed    dataservice.ChangeFeed
		closers []io.Closer
	)

	switch cfg.Backend {
	case "postgres":
		store, err := postgres.Open(cfg.DBConnString(), log)
		if err != nil {
			log.Fatal("Error opening database backend: %v", err)
		}
		closers = append(closers, store)
		svc, auth = store, store

		pgFeed, err := postgres.NewFeed(cfg.DBConnString(), log)
		if err != nil {
			log.Fatal("Error starting change feed: %v", err)
		}
		closers = append(closers, pgFeed)
		feed = pgFeed
		log.Info("Using postgres backend at %s:%s", cfg.DBHost, cfg.DBPort)

	default:
		client := rest.NewClient(cfg.ServiceBaseURL, cfg.ServiceAPIKey)
		svc, auth = client, client

		if cfg.KafkaBrokers != "" {
			kFeed := kafkafeed.New(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaChangesTopic, log)
			if kFeed != nil {
				closers = append(closers, kFeed)
				feed = kFeed
			}
		} else {
			log.Warn("No change feed configured; roster invalidation is mutation-driven only")
		}
		log.Info("Using hosted data service at %s", cfg.ServiceBaseURL)
	}

	publisher := services.NewPublisher(cfg.KafkaBrokers, cfg.KafkaPaymentsTopic, log)
	receipts := services.NewReceiptService(services.MailConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.EmailFrom,
	}, log)

	roster, err := services.NewRosterService(svc, feed, log)
	if err != nil {
		log.Fatal("Error wiring roster service: %v", err)
	}
	profiles := services.NewProfileService(svc, roster, log)
	payments := services.NewPaymentService(svc, roster, publisher, receipts, log)

	mux := portalHttp.NewRouter(portalHttp.Deps{
		Auth:     auth,
		Roster:   roster,
		Profiles: profiles,
		Payments: payments,
		Log:      log,
	})

	server := &netHttp.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Server starting on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != netHttp.ErrServerClosed {
			log.Fatal("Server error: %v", err)
		}
	}()

	<-sigChan
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down server: %v", err)
	}

	roster.Close()
	if err := publisher.Close(); err != nil {
		log.Error("Error closing event publisher: %v", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Error("Error closing resource: %v", err)
		}
	}

	log.Info("Server shutdown complete")
}
