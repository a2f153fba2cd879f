// Package webhook parses inbound webhook envelopes and normalizes them
// into pipeline commands.
package webhook

// Envelope is one inbound webhook payload. Each entry carries a list of
// changes, and each change's value holds either a messages list or a
// statuses list.
type Envelope struct {
	Entry []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id,omitempty"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field,omitempty"`
	Value Value  `json:"value"`
}

type Value struct {
	MessagingProduct string          `json:"messaging_product,omitempty"`
	Metadata         *Metadata       `json:"metadata,omitempty"`
	Contacts         []Contact       `json:"contacts,omitempty"`
	Messages         []InboundRecord `json:"messages,omitempty"`
	Statuses         []StatusRecord  `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number,omitempty"`
	PhoneNumberID      string `json:"phone_number_id,omitempty"`
}

type Contact struct {
	WaID    string  `json:"wa_id,omitempty"`
	Profile Profile `json:"profile"`
}

type Profile struct {
	Name string `json:"name,omitempty"`
}

// InboundRecord is one message element of an envelope.
type InboundRecord struct {
	ID        string     `json:"id"`
	From      string     `json:"from"`
	To        string     `json:"to,omitempty"`
	Timestamp string     `json:"timestamp,omitempty"`
	Type      string     `json:"type"`
	Text      *TextBody  `json:"text,omitempty"`
	Image     *MediaBody `json:"image,omitempty"`
	Video     *MediaBody `json:"video,omitempty"`
	Audio     *MediaBody `json:"audio,omitempty"`
	Document  *MediaBody `json:"document,omitempty"`
}

type TextBody struct {
	Body string `json:"body"`
}

type MediaBody struct {
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// StatusRecord is one status element of an envelope. MessageID is the
// fallback identifier some senders use instead of id.
type StatusRecord struct {
	ID          string `json:"id"`
	MessageID   string `json:"message_id,omitempty"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp,omitempty"`
	RecipientID string `json:"recipient_id,omitempty"`
}
