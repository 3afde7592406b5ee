package http

import (
	"context"
	"time"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/shared/eventbus"
	"mongo-admin/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	feedBufferSize = 64
	feedReadWait   = 60 * time.Second
	feedWriteWait  = 10 * time.Second
)

// FeedMessage is the envelope written to change feed clients.
type FeedMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ChangeFeedHandler streams a tenant collection's change events over a
// websocket.
type ChangeFeedHandler struct {
	bus eventbus.EventBusInterface
	log logger.Logger
}

// NewChangeFeedHandler creates the websocket handler.
func NewChangeFeedHandler(bus eventbus.EventBusInterface, log logger.Logger) *ChangeFeedHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ChangeFeedHandler{bus: bus, log: log.WithComponent("change_feed")}
}

// RegisterRoutes mounts GET /ws/collections/:collection behind the tenant
// middleware.
func (h *ChangeFeedHandler) RegisterRoutes(router fiber.Router, tenant fiber.Handler) {
	ws := router.Group("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, tenant)

	ws.Get("/collections/:collection", h.validate, websocket.New(h.handleConnection))
}

// validate rejects unknown collection names before the upgrade so the client
// gets a regular error response.
func (h *ChangeFeedHandler) validate(c *fiber.Ctx) error {
	tenantID, _ := c.Locals(TenantLocalKey).(string)
	if _, err := namespace.Resolve(tenantID, c.Params("collection")); err != nil {
		return writeError(c, err)
	}
	return c.Next()
}

func (h *ChangeFeedHandler) handleConnection(conn *websocket.Conn) {
	tenantID, _ := conn.Locals(TenantLocalKey).(string)
	collection := conn.Params("collection")
	subscriberID := uuid.NewString()

	events := make(chan model.ChangeEvent, feedBufferSize)
	sub := h.bus.Subscribe(eventbus.EventTypeCollectionChanged, func(ctx context.Context, event eventbus.Event) error {
		change, ok := event.Data().(model.ChangeEvent)
		if !ok || change.TenantID != tenantID || change.Collection != collection {
			return nil
		}
		select {
		case events <- change:
		default:
			h.log.Warnf("Change feed %s is not keeping up, dropped event %s", subscriberID, change.ID)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.bus.Unsubscribe(sub)
		h.log.Debugf("Change feed %s closed for %s/%s", subscriberID, tenantID, collection)
	}()

	h.log.Debugf("Change feed %s opened for %s/%s", subscriberID, tenantID, collection)

	// Reads only detect disconnects; clients have nothing to send.
	go func() {
		defer cancel()
		for {
			conn.SetReadDeadline(time.Now().Add(feedReadWait))
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.Errorf("Change feed %s read error: %v", subscriberID, err)
				}
				return
			}
		}
	}()

	if err := conn.WriteJSON(FeedMessage{Type: "subscribed", Data: fiber.Map{"collection": collection}}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case change := <-events:
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(FeedMessage{Type: "change", Data: change}); err != nil {
				h.log.Errorf("Change feed %s write error: %v", subscriberID, err)
				return
			}
		}
	}
}
