// Package ingest feeds webhook payload files into the pipeline, either as
// a sorted one-shot batch or by watching a directory.
package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Deliverer hands one raw envelope body to the pipeline. The in-process
// implementation decodes and calls the service directly; the HTTP one posts
// to a running instance's webhook endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, body []byte) error
}

// Loader replays payload files from a directory.
type Loader struct {
	deliverer Deliverer

	// fileDelay spaces out deliveries so message payloads tend to land
	// before their status updates. A scheduling hint, not a guarantee.
	fileDelay time.Duration
}

// NewLoader builds a loader that pauses fileDelay between files.
func NewLoader(d Deliverer, fileDelay time.Duration) *Loader {
	return &Loader{deliverer: d, fileDelay: fileDelay}
}

// LoadDir delivers every *.json file in dir, messages before statuses.
// Per-file failures are logged and skipped; the batch keeps going. Returns
// how many files were delivered successfully.
func (l *Loader) LoadDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read payload dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, e.Name())
	}
	SortPayloadFiles(files)

	delivered := 0
	for i, name := range files {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if i > 0 && l.fileDelay > 0 {
			time.Sleep(l.fileDelay)
		}

		path := filepath.Join(dir, name)
		body, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[Ingest] Skipping unreadable file %s: %v", name, err)
			continue
		}

		if err := l.deliverer.Deliver(ctx, body); err != nil {
			log.Printf("[Ingest] Failed to deliver %s: %v", name, err)
			continue
		}

		log.Printf("[Ingest] Delivered %s", name)
		delivered++
	}

	return delivered, nil
}

// SortPayloadFiles orders file names so those containing "message" precede
// those containing "status", lexicographic within each group.
func SortPayloadFiles(names []string) {
	rank := func(name string) int {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "message"):
			return 0
		case strings.Contains(lower, "status"):
			return 2
		default:
			return 1
		}
	}

	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}
