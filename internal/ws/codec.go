package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"messenger-service/internal/models"
)

// ErrMalformedEvent marks an inbound frame that decodes but is missing a
// required field. The frame is logged and ignored, never fatal to the
// connection.
var ErrMalformedEvent = errors.New("malformed event")

// Inbound websocket event types.
const (
	TypeSendMessage    = "send_message"
	TypeContactRequest = "contact_request"
	TypeAcceptContact  = "accept_contact"
)

// Inbound is the closed set of client-to-server events. Frames with a type
// outside the set decode to Unknown.
type Inbound interface {
	inboundType() string
}

// SendMessage asks the server to persist a live message and deliver it to
// the receiver's room.
type SendMessage struct {
	ToUserID  int    `json:"to_user_id"`
	Message   string `json:"message"`
	MessageID int64  `json:"message_id"`
}

// ContactRequest asks the server to notify the target of a contact request.
type ContactRequest struct {
	ToUserID   int    `json:"to_user_id"`
	CustomName string `json:"custom_name"`
}

// AcceptContact asks the server to notify the original requester that their
// request was accepted.
type AcceptContact struct {
	FromUserID int `json:"from_user_id"`
}

// Unknown carries an unrecognized type tag.
type Unknown struct {
	Type string
}

func (SendMessage) inboundType() string    { return TypeSendMessage }
func (ContactRequest) inboundType() string { return TypeContactRequest }
func (AcceptContact) inboundType() string  { return TypeAcceptContact }
func (u Unknown) inboundType() string      { return u.Type }

type inboundFrame struct {
	Type       string  `json:"type"`
	ToUserID   *int    `json:"to_user_id"`
	Message    *string `json:"message"`
	MessageID  *int64  `json:"message_id"`
	FromUserID *int    `json:"from_user_id"`
	CustomName *string `json:"custom_name"`
}

// DecodeInbound parses one text frame into its typed variant. Unknown fields
// are ignored; a missing required field yields ErrMalformedEvent.
func DecodeInbound(data []byte) (Inbound, error) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch frame.Type {
	case TypeSendMessage:
		if frame.ToUserID == nil || frame.Message == nil || frame.MessageID == nil {
			return nil, fmt.Errorf("%w: %s requires to_user_id, message and message_id", ErrMalformedEvent, frame.Type)
		}
		return SendMessage{ToUserID: *frame.ToUserID, Message: *frame.Message, MessageID: *frame.MessageID}, nil
	case TypeContactRequest:
		if frame.ToUserID == nil {
			return nil, fmt.Errorf("%w: %s requires to_user_id", ErrMalformedEvent, frame.Type)
		}
		event := ContactRequest{ToUserID: *frame.ToUserID}
		if frame.CustomName != nil {
			event.CustomName = *frame.CustomName
		}
		return event, nil
	case TypeAcceptContact:
		if frame.FromUserID == nil {
			return nil, fmt.Errorf("%w: %s requires from_user_id", ErrMalformedEvent, frame.Type)
		}
		return AcceptContact{FromUserID: *frame.FromUserID}, nil
	default:
		return Unknown{Type: frame.Type}, nil
	}
}

// EncodeInbound serializes a typed inbound event back to its wire frame.
func EncodeInbound(event Inbound) ([]byte, error) {
	switch e := event.(type) {
	case SendMessage:
		return json.Marshal(struct {
			Type string `json:"type"`
			SendMessage
		}{TypeSendMessage, e})
	case ContactRequest:
		return json.Marshal(struct {
			Type string `json:"type"`
			ContactRequest
		}{TypeContactRequest, e})
	case AcceptContact:
		return json.Marshal(struct {
			Type string `json:"type"`
			AcceptContact
		}{TypeAcceptContact, e})
	default:
		return nil, fmt.Errorf("cannot encode inbound event of type %q", event.inboundType())
	}
}

// Encode serializes an outbound event.
func Encode(event any) ([]byte, error) {
	return json.Marshal(event)
}

// DecodeOutbound parses a server-to-client frame into its typed event.
func DecodeOutbound(data []byte) (any, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch tag.Type {
	case models.EventNewMessage:
		var event models.NewMessageEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return event, nil
	case models.EventContactRequest:
		var event models.ContactRequestEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return event, nil
	case models.EventContactAccepted:
		var event models.ContactAcceptedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return event, nil
	default:
		return nil, fmt.Errorf("%w: unknown outbound type %q", ErrMalformedEvent, tag.Type)
	}
}
