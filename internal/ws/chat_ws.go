package ws

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// ContactChecker gates live sends on an accepted contact edge.
type ContactChecker interface {
	CanMessage(ctx context.Context, senderID int, receiverID int) (bool, error)
}

// ChatWebSocketHandler owns the per-identity realtime connection lifecycle:
// upgrade, room membership, inbound dispatch and teardown.
type ChatWebSocketHandler struct {
	hub        *Hub
	accounts   repositories.AccountRepository
	contacts   ContactChecker
	messages   repositories.MessageRepository
	liveTTL    time.Duration
	frameRate  rate.Limit
	frameBurst int
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(hub *Hub, accounts repositories.AccountRepository, contacts ContactChecker, messages repositories.MessageRepository, liveTTL time.Duration, frameRate float64, frameBurst int) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{
		hub:        hub,
		accounts:   accounts,
		contacts:   contacts,
		messages:   messages,
		liveTTL:    liveTTL,
		frameRate:  rate.Limit(frameRate),
		frameBurst: frameBurst,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection, joins the identity's room and starts the
// read loop. The identity arrives as a numeric platform id path parameter.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	platformID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx, span := otel.Tracer("messenger-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		PlatformID:  platformID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.Join(ctx, platformID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.chat", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   lifecyclePayload(info, "ws_connect", 0, ""),
	}, observability.BuildHeaders(requestID, traceID))

	go h.readLoop(platformID, conn, info)
}

// readLoop processes inbound frames strictly in arrival order for one
// connection. It runs detached from the upgrade request, so store access
// uses a background context: a disconnect must not abort an in-flight write.
func (h *ChatWebSocketHandler) readLoop(platformID int64, conn *websocket.Conn, info ConnInfo) {
	ctx := context.Background()
	limiter := rate.NewLimiter(h.frameRate, h.frameBurst)
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)

	var closeReason string
	defer func() {
		h.hub.Leave(ctx, platformID, conn)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		_ = observability.PublishEvent(ctx, "ws_events.chat", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_disconnect",
			Payload:   lifecyclePayload(info, "ws_disconnect", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
		}, headers)
		conn.Close()
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				_ = observability.PublishEvent(ctx, "ws_events.chat", observability.EventEnvelope{
					EventType: "ws_events",
					EventName: "ws_error",
					Payload:   lifecyclePayload(info, "ws_error", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
				}, headers)
			}
			return
		}

		if !limiter.Allow() {
			logrus.WithField("platform_id", platformID).Warn("inbound frame rate exceeded, dropping frame")
			continue
		}

		h.dispatch(ctx, platformID, frame)
	}
}

// dispatch decodes one frame and routes it to exactly one handler. Failures
// are logged and swallowed: the protocol has no error event, the connection
// stays open and simply produces nothing.
func (h *ChatWebSocketHandler) dispatch(ctx context.Context, platformID int64, frame []byte) {
	event, err := DecodeInbound(frame)
	if err != nil {
		logrus.WithError(err).WithField("platform_id", platformID).Warn("rejecting inbound frame")
		observability.IncWSEvent("malformed")
		return
	}

	switch e := event.(type) {
	case SendMessage:
		observability.IncWSEvent(TypeSendMessage)
		h.handleSendMessage(ctx, platformID, e)
	case ContactRequest:
		observability.IncWSEvent(TypeContactRequest)
		h.handleContactRequest(ctx, platformID, e)
	case AcceptContact:
		observability.IncWSEvent(TypeAcceptContact)
		h.handleAcceptContact(ctx, platformID, e)
	case Unknown:
		logrus.WithFields(logrus.Fields{
			"platform_id": platformID,
			"type":        e.Type,
		}).Warn("ignoring unknown inbound event type")
		observability.IncWSEvent("unknown")
	}
}

func (h *ChatWebSocketHandler) handleSendMessage(ctx context.Context, platformID int64, event SendMessage) {
	log := logrus.WithFields(logrus.Fields{
		"platform_id": platformID,
		"to_user_id":  event.ToUserID,
	})

	sender, err := h.accounts.GetByPlatformID(ctx, platformID)
	if err != nil {
		log.WithError(err).Warn("send_message: sender lookup failed")
		return
	}
	receiver, err := h.accounts.GetByID(ctx, event.ToUserID)
	if err != nil {
		log.WithError(err).Warn("send_message: receiver lookup failed")
		return
	}

	allowed, err := h.contacts.CanMessage(ctx, sender.ID, receiver.ID)
	if err != nil {
		log.WithError(err).Warn("send_message: eligibility check failed")
		return
	}
	if !allowed {
		// No accepted edge sender->receiver: drop without a store write.
		log.Warn("send_message: no accepted contact edge, dropping")
		return
	}

	msg, err := h.messages.Create(ctx, sender.ID, receiver.ID, event.Message, h.liveTTL)
	if err != nil {
		log.WithError(err).Error("send_message: failed to store message")
		return
	}

	h.hub.Deliver(receiver.PlatformID, models.EventNewMessage, models.NewMessageEvent{
		Type:       models.EventNewMessage,
		Message:    event.Message,
		FromUserID: platformID,
		MessageID:  event.MessageID,
		Timestamp:  msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (h *ChatWebSocketHandler) handleContactRequest(ctx context.Context, platformID int64, event ContactRequest) {
	target, err := h.accounts.GetByID(ctx, event.ToUserID)
	if err != nil {
		logrus.WithError(err).WithField("to_user_id", event.ToUserID).Warn("contact_request: target lookup failed")
		return
	}

	h.hub.Deliver(target.PlatformID, models.EventContactRequest, models.ContactRequestEvent{
		Type:       models.EventContactRequest,
		FromUserID: platformID,
		FromName:   event.CustomName,
	})
}

func (h *ChatWebSocketHandler) handleAcceptContact(ctx context.Context, platformID int64, event AcceptContact) {
	requester, err := h.accounts.GetByID(ctx, event.FromUserID)
	if err != nil {
		logrus.WithError(err).WithField("from_user_id", event.FromUserID).Warn("accept_contact: requester lookup failed")
		return
	}

	h.hub.Deliver(requester.PlatformID, models.EventContactAccepted, models.ContactAcceptedEvent{
		Type:   models.EventContactAccepted,
		UserID: platformID,
	})
}

func lifecyclePayload(info ConnInfo, event string, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"platform_id": info.PlatformID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"ip": info.IP,
		},
	}
}
