package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher delivers payload files as they are dropped into a directory.
// Files already present when the watch starts are not replayed; run a
// LoadDir pass first for those.
type Watcher struct {
	deliverer Deliverer

	// settle is how long a file must be quiet before it is read, so a
	// half-written drop is not delivered.
	settle time.Duration
}

// NewWatcher builds a watcher over the given deliverer.
func NewWatcher(d Deliverer) *Watcher {
	return &Watcher{deliverer: d, settle: 100 * time.Millisecond}
}

// Run watches dir until the context is cancelled.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	log.Printf("[Ingest] Watching %s for payload files...", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}

			time.Sleep(w.settle)

			body, err := os.ReadFile(ev.Name)
			if err != nil {
				log.Printf("[Ingest] Skipping unreadable file %s: %v", ev.Name, err)
				continue
			}

			if err := w.deliverer.Deliver(ctx, body); err != nil {
				log.Printf("[Ingest] Failed to deliver %s: %v", filepath.Base(ev.Name), err)
				continue
			}
			log.Printf("[Ingest] Delivered %s", filepath.Base(ev.Name))

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Ingest] Watch error: %v", err)
		}
	}
}
