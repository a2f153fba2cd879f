package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/emirhansari/whatsapp-inbox/internal/cache"
	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"github.com/emirhansari/whatsapp-inbox/internal/hub"
	"github.com/emirhansari/whatsapp-inbox/internal/webhook"
)

// ResultKind tells the caller what an envelope turned into.
type ResultKind string

const (
	ResultMessage ResultKind = "message"
	ResultStatus  ResultKind = "status"
	ResultNoop    ResultKind = "noop"
)

// ProcessResult reports the outcome of one processed envelope.
type ProcessResult struct {
	Kind       ResultKind
	Message    *message.Message
	Duplicate  bool
	Transition *TransitionResult
}

// SendInput is a direct message send, not via webhook.
type SendInput struct {
	ConversationID string
	From           string
	To             string
	Body           string
	SenderName     string
}

// InboxService is the core pipeline plus the read-side queries the HTTP
// layer adapts.
type InboxService interface {
	ProcessEnvelope(ctx context.Context, env *webhook.Envelope) (*ProcessResult, error)
	SendMessage(ctx context.Context, in SendInput) (*message.Message, error)
	ApplyTransition(ctx context.Context, externalID, rawStatus string) (*TransitionResult, error)
	ListConversations(ctx context.Context) ([]*message.ConversationSummary, error)
	ListMessages(ctx context.Context, conversationID string) ([]*message.Message, error)
}

type inboxService struct {
	repo       message.Repository
	normalizer *webhook.Normalizer
	publisher  hub.Publisher
	cache      cache.Cache

	// forwardOnly gates the transition policy: when true, backward or
	// redundant transitions are accepted as no-ops instead of applied.
	forwardOnly bool
	cacheTTL    time.Duration
}

// NewInboxService wires the pipeline. The cache is optional (nil disables
// conversation-list caching); everything else is required.
func NewInboxService(
	repo message.Repository,
	normalizer *webhook.Normalizer,
	publisher hub.Publisher,
	c cache.Cache,
	forwardOnly bool,
	cacheTTL time.Duration,
) InboxService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Second
	}

	return &inboxService{
		repo:        repo,
		normalizer:  normalizer,
		publisher:   publisher,
		cache:       c,
		forwardOnly: forwardOnly,
		cacheTTL:    cacheTTL,
	}
}

// ProcessEnvelope normalizes one webhook envelope and runs it through the
// matching pipeline path. Validation failures are logged and returned; they
// never touch the store.
func (s *inboxService) ProcessEnvelope(ctx context.Context, env *webhook.Envelope) (*ProcessResult, error) {
	cmd, err := s.normalizer.Normalize(env)
	if err != nil {
		log.Printf("[Service] Rejected envelope: %v", err)
		return nil, err
	}

	if cmd == nil {
		log.Println("[Service] Envelope carried neither messages nor statuses, ignoring.")
		return &ProcessResult{Kind: ResultNoop}, nil
	}

	if cmd.Inbound != nil {
		return s.storeInbound(ctx, cmd.Inbound)
	}

	res, err := s.ApplyTransition(ctx, cmd.Status.ExternalID, string(cmd.Status.Status))
	if err != nil {
		return nil, err
	}
	return &ProcessResult{Kind: ResultStatus, Message: res.Message, Transition: res}, nil
}

// storeInbound deduplicates by external ID and persists a new message.
// A second delivery of the same ID is a success no-op, not an error.
func (s *inboxService) storeInbound(ctx context.Context, m *message.Message) (*ProcessResult, error) {
	existing, err := s.repo.FindByExternalID(ctx, m.ExternalID)
	if err == nil {
		log.Printf("[Service] Duplicate message %s, skipping.", m.ExternalID)
		return &ProcessResult{Kind: ResultMessage, Message: existing, Duplicate: true}, nil
	}
	if !errors.Is(err, message.ErrNotFound) {
		return nil, fmt.Errorf("dedup lookup for %s: %w", m.ExternalID, err)
	}

	if err := s.repo.Insert(ctx, m); err != nil {
		// The unique index is the authority; losing the insert race to a
		// concurrent delivery is still a duplicate no-op. Report the record
		// that actually won, not the one built here.
		if errors.Is(err, message.ErrDuplicateMessage) {
			log.Printf("[Service] Duplicate message %s detected by store, skipping.", m.ExternalID)
			stored, ferr := s.repo.FindByExternalID(ctx, m.ExternalID)
			if ferr != nil {
				return nil, fmt.Errorf("reload duplicate %s: %w", m.ExternalID, ferr)
			}
			return &ProcessResult{Kind: ResultMessage, Message: stored, Duplicate: true}, nil
		}
		return nil, fmt.Errorf("insert message %s: %w", m.ExternalID, err)
	}

	log.Printf("[Service] Stored message %s in %s", m.ExternalID, m.ConversationID)
	s.afterWrite(ctx, m.ConversationID)
	s.publisher.Publish(m.ConversationID, hub.Event{
		Kind:           hub.EventNewMessage,
		ConversationID: m.ConversationID,
		Payload:        messagePayload(m),
	})

	return &ProcessResult{Kind: ResultMessage, Message: m}, nil
}

// SendMessage persists a directly sent message and fans out new-message.
func (s *inboxService) SendMessage(ctx context.Context, in SendInput) (*message.Message, error) {
	m, err := message.NewOutbound(in.ConversationID, in.From, in.To, in.Body, in.SenderName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("insert outbound message: %w", err)
	}

	log.Printf("[Service] Sent message %s in %s", m.ExternalID, m.ConversationID)
	s.afterWrite(ctx, m.ConversationID)
	s.publisher.Publish(m.ConversationID, hub.Event{
		Kind:           hub.EventNewMessage,
		ConversationID: m.ConversationID,
		Payload:        messagePayload(m),
	})

	return m, nil
}

// ListMessages returns one conversation's history, oldest first.
func (s *inboxService) ListMessages(ctx context.Context, conversationID string) ([]*message.Message, error) {
	return s.repo.ListByConversation(ctx, conversationID)
}

// afterWrite invalidates the conversation-list cache and bumps the ingest
// counter. Both are best-effort; a cache hiccup never fails the pipeline.
func (s *inboxService) afterWrite(ctx context.Context, conversationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.ConversationList.Key("all")); err != nil {
		log.Printf("[Service] Failed to invalidate conversation cache: %v", err)
	}
	if _, err := s.cache.Incr(ctx, cache.Stats.Key("messages_total")); err != nil {
		log.Printf("[Service] Failed to bump message counter: %v", err)
	}
}

// messagePayload is the wire shape of a new-message event.
func messagePayload(m *message.Message) hub.MessagePayload {
	return hub.MessagePayload{
		ConversationID: m.ConversationID,
		ExternalID:     m.ExternalID,
		From:           m.From,
		To:             m.To,
		Timestamp:      m.Timestamp,
		ContentType:    string(m.ContentType),
		Body:           m.Body,
		Status:         string(m.Status),
		SenderName:     m.SenderName,
	}
}
