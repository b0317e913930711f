package whatsapp

// Inbound webhook payload shapes. Meta wraps each message in
// entry -> changes -> value; callbacks without a messages array (delivery
// receipts, read statuses) are not errors, just nothing to do.

type WebhookPayload struct {
	Entry []Entry `json:"entry"`
}

type Entry struct {
	Changes []Change `json:"changes"`
}

type Change struct {
	Value Value `json:"value"`
}

type Value struct {
	Messages []Message `json:"messages"`
}

type Message struct {
	From  string        `json:"from"`
	Type  string        `json:"type"`
	Text  *TextContent  `json:"text,omitempty"`
	Audio *AudioContent `json:"audio,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

type AudioContent struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
}

const (
	MessageTypeText  = "text"
	MessageTypeAudio = "audio"
)

// FirstMessage digs the first user message out of the payload.
func (p *WebhookPayload) FirstMessage() (*Message, bool) {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) > 0 {
				return &change.Value.Messages[0], true
			}
		}
	}

	return nil, false
}
