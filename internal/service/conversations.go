package service

import (
	"context"
	"encoding/json"
	"log"
	"sort"

	"github.com/emirhansari/whatsapp-inbox/internal/cache"
	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
)

// ListConversations groups all stored messages into per-conversation
// summaries, newest conversation first. The grouping runs in memory over
// materialized records so it does not depend on any storage engine's query
// language; the result is cached briefly and invalidated on every write.
func (s *inboxService) ListConversations(ctx context.Context) ([]*message.ConversationSummary, error) {
	if cached, ok := s.cachedConversations(ctx); ok {
		return cached, nil
	}

	msgs, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	summaries := Aggregate(msgs)
	s.storeConversations(ctx, summaries)
	return summaries, nil
}

// Aggregate computes conversation summaries from a flat message list. For
// each conversation the chronologically latest message supplies the last
// body and timestamp; the display name is the first non-business sender
// name in send order, falling back to "+<number>".
func Aggregate(msgs []*message.Message) []*message.ConversationSummary {
	groups := make(map[string][]*message.Message)
	for _, m := range msgs {
		groups[m.ConversationID] = append(groups[m.ConversationID], m)
	}

	summaries := make([]*message.ConversationSummary, 0, len(groups))
	for id, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})

		displayName := ""
		var senders []string
		seen := make(map[string]struct{})
		for _, m := range group {
			if _, dup := seen[m.SenderName]; !dup && m.SenderName != "" {
				seen[m.SenderName] = struct{}{}
				senders = append(senders, m.SenderName)
			}
			if displayName == "" && m.SenderName != "" && m.SenderName != message.BusinessSenderName {
				displayName = m.SenderName
			}
		}
		if displayName == "" {
			displayName = "+" + message.NumberFromConversationID(id)
		}

		last := group[len(group)-1]
		summaries = append(summaries, &message.ConversationSummary{
			ConversationID:  id,
			DisplayName:     displayName,
			LastMessageBody: last.Body,
			LastTimestamp:   last.Timestamp,
			MessageCount:    len(group),
			SenderNames:     senders,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastTimestamp.After(summaries[j].LastTimestamp)
	})

	return summaries
}

func (s *inboxService) cachedConversations(ctx context.Context) ([]*message.ConversationSummary, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, cache.ConversationList.Key("all"))
	if err != nil {
		return nil, false
	}

	var summaries []*message.ConversationSummary
	if err := json.Unmarshal([]byte(raw), &summaries); err != nil {
		log.Printf("[Service] Dropping unreadable conversation cache: %v", err)
		_ = s.cache.Del(ctx, cache.ConversationList.Key("all"))
		return nil, false
	}
	return summaries, true
}

func (s *inboxService) storeConversations(ctx context.Context, summaries []*message.ConversationSummary) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(summaries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.ConversationList.Key("all"), string(raw), s.cacheTTL); err != nil {
		log.Printf("[Service] Failed to cache conversations: %v", err)
	}
}
