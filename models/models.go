package models

// Contact is one entry of the user's contact list. LastActivity is a unix
// timestamp refreshed server-side; the client only reads it.
type Contact struct {
	Username     string `json:"username"`
	LastActivity int64  `json:"last_activity"`
}

// Message is a single chat message, immutable once created. The same shape
// arrives from the history endpoint and as a websocket push event.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ChatPayload is the inner part of an outgoing envelope.
type ChatPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// Envelope is the wire unit sent over the websocket for a chat message.
type Envelope struct {
	Type string      `json:"type"`
	Chat ChatPayload `json:"chat"`
}

// Bootup announces the local user on a fresh websocket connection so the
// server can route pushes to it.
type Bootup struct {
	Type string `json:"type"`
	User string `json:"user"`
}

// NewEnvelope wraps a composed message body for sending.
func NewEnvelope(from, to, message string) Envelope {
	return Envelope{
		Type: "message",
		Chat: ChatPayload{From: from, To: to, Message: message},
	}
}

// NewBootup builds the presence announce frame for the given user.
func NewBootup(user string) Bootup {
	return Bootup{Type: "bootup", User: user}
}
