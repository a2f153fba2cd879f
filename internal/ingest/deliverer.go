package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"github.com/emirhansari/whatsapp-inbox/internal/service"
	"github.com/emirhansari/whatsapp-inbox/internal/webhook"
)

// ServiceDeliverer decodes envelope bodies and runs them through the
// in-process pipeline. Expected replay conditions (duplicates, a status
// arriving before its message) are logged and tolerated.
type ServiceDeliverer struct {
	inbox service.InboxService
}

// NewServiceDeliverer wraps the given pipeline.
func NewServiceDeliverer(inbox service.InboxService) *ServiceDeliverer {
	return &ServiceDeliverer{inbox: inbox}
}

// Deliver implements Deliverer.
func (d *ServiceDeliverer) Deliver(ctx context.Context, body []byte) error {
	var env webhook.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	_, err := d.inbox.ProcessEnvelope(ctx, &env)
	if errors.Is(err, message.ErrNotFound) {
		// A status update that outran its message insert. Accepted lossy
		// condition under replay; report it but keep the batch alive.
		log.Printf("[Ingest] Status update targets unknown message: %v", err)
		return nil
	}
	return err
}

// HTTPDeliverer posts envelope bodies to a running instance's webhook
// endpoint instead of calling the pipeline in-process.
type HTTPDeliverer struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPDeliverer targets the given webhook URL.
func NewHTTPDeliverer(endpoint string) *HTTPDeliverer {
	return &HTTPDeliverer{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// withTimeout wraps the context with a timeout if it doesn't already have one.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// Deliver implements Deliverer by POSTing the body as JSON.
func (c *HTTPDeliverer) Deliver(ctx context.Context, body []byte) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("webhook request timeout or canceled: %w", err)
		}
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-2xx status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

var (
	_ Deliverer = (*ServiceDeliverer)(nil)
	_ Deliverer = (*HTTPDeliverer)(nil)
)
