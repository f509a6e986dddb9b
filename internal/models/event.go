package models

// Outbound websocket event types.
const (
	EventNewMessage      = "new_message"
	EventContactRequest  = "contact_request"
	EventContactAccepted = "contact_accepted"
)

// NewMessageEvent is delivered to the receiver of a direct message.
type NewMessageEvent struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	FromUserID int64  `json:"from_user_id"`
	MessageID  int64  `json:"message_id"`
	Timestamp  string `json:"timestamp"`
}

// ContactRequestEvent notifies a user of an incoming contact request.
type ContactRequestEvent struct {
	Type       string `json:"type"`
	FromUserID int64  `json:"from_user_id"`
	FromName   string `json:"from_name"`
}

// ContactAcceptedEvent notifies the original requester that the peer accepted.
type ContactAcceptedEvent struct {
	Type   string `json:"type"`
	UserID int64  `json:"user_id"`
}
