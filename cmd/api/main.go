package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emirhansari/whatsapp-inbox/internal/cache/redis"
	"github.com/emirhansari/whatsapp-inbox/internal/config"
	"github.com/emirhansari/whatsapp-inbox/internal/db/gormdb"
	"github.com/emirhansari/whatsapp-inbox/internal/handler"
	"github.com/emirhansari/whatsapp-inbox/internal/hub"
	mesgRepo "github.com/emirhansari/whatsapp-inbox/internal/repository/gorm/message"
	routes "github.com/emirhansari/whatsapp-inbox/internal/router"
	"github.com/emirhansari/whatsapp-inbox/internal/scheduler"
	"github.com/emirhansari/whatsapp-inbox/internal/server"
	"github.com/emirhansari/whatsapp-inbox/internal/service"
	"github.com/emirhansari/whatsapp-inbox/internal/webhook"
)

// @title       WhatsApp Inbox API
// @version     1.0
// @description Webhook-driven messaging inbox with live status updates.
// @BasePath    /
func main() {
	// Base context for the whole application lifetime.
	rootCtx := context.Background()

	// Load configuration from environment/.env.
	cfg := config.New()

	// Init cache.
	cache := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cache.Ping(rootCtx); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	// Init DB. Store-connection failure at startup is the only pipeline
	// condition that is fatal to the process.
	dsn := cfg.PostgresDSN()
	db, err := gormdb.New(dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}

	// Payload normalizer, bound to the business number.
	normalizer, err := webhook.NewNormalizer(cfg.Inbox.BusinessNumber)
	if err != nil {
		log.Fatalf("invalid BUSINESS_NUMBER: %v", err)
	}

	// Envelope schema validator.
	validator, err := webhook.NewValidator()
	if err != nil {
		log.Fatalf("failed to compile envelope schema: %v", err)
	}

	// Live notification fan-out.
	liveHub := hub.New()

	// Init repository and pipeline.
	msgRepository := mesgRepo.NewRepository(db)
	inbox := service.NewInboxService(
		msgRepository,
		normalizer,
		liveHub,
		cache,
		cfg.Inbox.ForwardOnly,
		cfg.Inbox.ConversationCacheTTL,
	)

	// Demo status simulator behind the tick scheduler.
	simulator := service.NewStatusSimulator(msgRepository, inbox, cfg.Simulator.MaxPerTick)
	cron := scheduler.NewSchedulerService(
		simulator,
		cfg.Simulator.Interval,
		cfg.Simulator.BatchTimeout,
	)

	// HTTP dependencies & server wiring.
	deps := routes.AppDeps{
		Home:    handler.NewHomeHandler(),
		Message: handler.NewMessageHandler(inbox, cron),
		Webhook: handler.NewWebhookHandler(inbox, validator),
		WS:      handler.NewWSHandler(liveHub),
	}

	// Init Server
	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	srv := server.New(addr, deps)

	// Create a context that is cancelled on SIGINT/SIGTERM (Ctrl+C, docker stop etc.).
	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the HTTP server in a separate goroutine so we can listen for signals.
	go func() {
		log.Printf("HTTP server listening on %s", addr)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// The simulator stays idle until started via POST /scheduler.
	log.Println("[Main] Demo simulator idle; start it via POST /scheduler.")

	// Block until we receive a shutdown signal.
	<-ctx.Done()
	log.Println("[Main] Shutdown signal received, starting graceful shutdown...")

	// Give components some time to shut down cleanly.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop the simulator (waits for an in-flight batch to finish or time out).
	log.Println("[Main] Stopping simulator...")
	if err := cron.Stop(); err != nil {
		log.Printf("[Main] Simulator stop failed: %v", err)
	} else {
		log.Println("[Main] Simulator stopped.")
	}

	// Gracefully shut down the HTTP server.
	log.Println("[Main] Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] HTTP server graceful shutdown failed: %v", err)
	} else {
		log.Println("[Main] HTTP server stopped.")
	}

	log.Println("[Main] Shutdown complete.")
}
