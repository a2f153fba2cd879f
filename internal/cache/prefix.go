package cache

import "fmt"

type Prefix string

const (
	// ConversationList caches the aggregated conversation summaries.
	ConversationList Prefix = "conversations"
	// Stats holds best-effort pipeline counters.
	Stats Prefix = "stats"
)

func (p Prefix) Key(id string) string {
	return fmt.Sprintf("%s:%s", p, id)
}
