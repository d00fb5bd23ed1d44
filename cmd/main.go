package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"guardian-monitor/internal/api"
	"guardian-monitor/internal/config"
	"guardian-monitor/internal/db"
	"guardian-monitor/internal/engine"
	"guardian-monitor/internal/kafka"
	"guardian-monitor/internal/logging"
	"guardian-monitor/internal/ws"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Profile store: Postgres when configured, in-memory otherwise
	var store db.ProfileStore
	if cfg.DB.DSN != "" {
		dbConn, err := db.New(cfg.DB.DSN)
		if err != nil {
			logger.Errorf("Failed to connect to database: %v", err)
			log.Fatalf("Database connection failed: %v", err)
		}
		defer dbConn.Close()
		if err := dbConn.Migrate(ctx); err != nil {
			logger.Errorf("Migration failed: %v", err)
			log.Fatalf("Migration failed: %v", err)
		}
		store = dbConn
	} else {
		logger.Warnf("DB_DSN not set, patient profile will not survive restarts")
		store = db.NewMemoryStore()
	}

	// Monitoring session: fresh baseline state on every start
	session := engine.NewSession(engine.NewGenerator(nil), logger, engine.Options{
		VitalsInterval:     cfg.Monitor.VitalsInterval,
		EscalationInterval: cfg.Monitor.EscalationInterval,
		EscalationAge:      cfg.Monitor.EscalationAge,
	})
	go session.Run(ctx)

	// WebSocket hub pushes every committed snapshot to dashboard clients
	hub := ws.NewManager(logger)
	go hub.Run(ctx, session)

	// Optional Kafka event publisher
	if cfg.Kafka.Broker != "" {
		publisher := kafka.NewPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic, logger)
		defer publisher.Close()
		go publisher.Run(ctx, session.Events())
	} else {
		logger.Infof("KAFKA_BROKER not set, event publishing disabled")
	}

	// Start API server
	handler := api.NewHandler(session, store, hub, logger)
	router := api.NewRouter(logger, cfg, handler)
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
	cancel()
	logger.Infof("Service stopped")
}
