package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/service"
)

const (
	eventPingInterval = 30 * time.Second
	eventWriteTimeout = 10 * time.Second
)

// Frame types sent over the change stream.
const (
	FrameReady = "ready"
	FrameEvent = "event"
)

// StreamFrame is one message on the change stream.
type StreamFrame struct {
	Type  string     `json:"type"`
	Event *dto.Event `json:"event,omitempty"`
}

// EventHandler streams collection changes to signed-in principals.
type EventHandler struct {
	events service.EventService
	logger zerolog.Logger
}

// NewEventHandler constructs the handler.
func NewEventHandler(events service.EventService, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		events: events,
		logger: logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register binds the websocket endpoint. protect runs before the upgrade so
// that only authenticated principals subscribe.
func (h *EventHandler) Register(router fiber.Router, protect fiber.Handler) {
	router.Use("/ws", protect, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(h.stream))
}

func (h *EventHandler) stream(conn *websocket.Conn) {
	principalID, _ := conn.Locals(middleware.LocalUserID).(string)
	if principalID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "principal missing"))
		_ = conn.Close()
		return
	}
	logger := h.logger.With().Str("principal_id", principalID).Logger()

	events, cleanup := h.events.Subscribe(principalID)
	defer cleanup()
	defer conn.Close()

	if err := h.write(conn, StreamFrame{Type: FrameReady}); err != nil {
		logger.Warn().Err(err).Msg("failed to send ready frame")
		return
	}
	logger.Info().Msg("change stream connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(eventPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			logger.Info().Msg("change stream disconnected")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.write(conn, StreamFrame{Type: FrameEvent, Event: &event}); err != nil {
				logger.Warn().Err(err).Str("collection", event.Collection).Msg("failed to push event")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventWriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *EventHandler) write(conn *websocket.Conn, frame StreamFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}
