package main

import (
	"context"
	"flag"
	"log"

	"github.com/emirhansari/whatsapp-inbox/internal/config"
	"github.com/emirhansari/whatsapp-inbox/internal/db/gormdb"
	"github.com/emirhansari/whatsapp-inbox/internal/hub"
	"github.com/emirhansari/whatsapp-inbox/internal/ingest"
	mesgRepo "github.com/emirhansari/whatsapp-inbox/internal/repository/gorm/message"
	"github.com/emirhansari/whatsapp-inbox/internal/service"
	"github.com/emirhansari/whatsapp-inbox/internal/webhook"
	"gorm.io/gorm"
)

// cmd/seed migrates the schema and replays webhook payload files from a
// directory into the pipeline, messages before statuses. With -url the
// files are POSTed to a running instance's webhook endpoint instead; with
// -watch it stays resident and ingests files as they are dropped in.
func main() {
	var (
		watch = flag.Bool("watch", false, "keep running and ingest files as they appear")
		url   = flag.String("url", "", "POST payloads to this webhook URL instead of processing in-process")
	)
	flag.Parse()

	ctx := context.Background()

	// Load application configuration (DB, business number, etc.) from env/.env.
	cfg := config.New()

	var deliverer ingest.Deliverer
	if *url != "" {
		deliverer = ingest.NewHTTPDeliverer(*url)
		log.Printf("[Seed] Delivering payloads to %s", *url)
	} else {
		deliverer = buildServiceDeliverer(cfg)
	}

	loader := ingest.NewLoader(deliverer, cfg.Ingest.FileDelay)
	delivered, err := loader.LoadDir(ctx, cfg.Ingest.PayloadDir)
	if err != nil {
		log.Fatalf("[Seed] Batch load failed: %v", err)
	}
	log.Printf("[Seed] Done. Delivered %d payload file(s) from %s.", delivered, cfg.Ingest.PayloadDir)

	if *watch {
		watcher := ingest.NewWatcher(deliverer)
		if err := watcher.Run(ctx, cfg.Ingest.PayloadDir); err != nil {
			log.Fatalf("[Seed] Watcher stopped: %v", err)
		}
	}
}

// buildServiceDeliverer connects to Postgres, migrates the messages table
// and wires an in-process pipeline without cache or live subscribers.
func buildServiceDeliverer(cfg *config.Config) ingest.Deliverer {
	gormAdapter, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("[Seed] Failed to connect to database: %v", err)
	}
	log.Printf("[Seed] Connected to database %q", cfg.DB.Name)

	// AutoMigrate: make sure the messages table exists.
	rawDB := gormAdapter.Conn().(*gorm.DB)
	if err := rawDB.AutoMigrate(&mesgRepo.MessageModel{}); err != nil {
		log.Fatalf("[Seed] AutoMigrate failed: %v", err)
	}
	log.Println("[Seed] Messages table is up to date (AutoMigrate completed).")

	normalizer, err := webhook.NewNormalizer(cfg.Inbox.BusinessNumber)
	if err != nil {
		log.Fatalf("[Seed] Invalid BUSINESS_NUMBER: %v", err)
	}

	repo := mesgRepo.NewRepository(gormAdapter)
	inbox := service.NewInboxService(
		repo,
		normalizer,
		hub.New(), // no live subscribers during seeding, events go nowhere
		nil,
		cfg.Inbox.ForwardOnly,
		cfg.Inbox.ConversationCacheTTL,
	)

	return ingest.NewServiceDeliverer(inbox)
}
