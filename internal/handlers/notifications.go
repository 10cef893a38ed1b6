package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/notify"
)

const keepAliveInterval = 25 * time.Second

// NotificationHandler streams order events over server-sent events.
type NotificationHandler struct {
	hub *notify.Hub
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub}
}

// Stream sends the caller's order events. Chefs and admins also receive the
// kitchen broadcast.
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	kitchen := actor.Role == models.RoleChef || actor.Role == models.RoleAdmin
	events, unsubscribe := h.hub.Subscribe(actor.ID, kitchen)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log.Printf("[SSE] %s connected (kitchen=%t)", actor.Label(), kitchen)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		defer log.Printf("[SSE] %s disconnected", actor.Label())

		fmt.Fprintf(w, "event: connected\ndata: {\"role\":%q}\n\n", actor.Role)
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					log.Printf("[SSE] failed to encode %s event: %v", event.Type, err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}
