package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/realtime"
)

const (
	heartbeatInterval = 25 * time.Second
	// writeWait plazo de cada escritura del stream; reemplaza el WriteTimeout del servidor.
	writeWait = 10 * time.Second
)

// EventsHandler stream SSE de eventos del tenant.
type EventsHandler struct {
	hub *realtime.Hub
}

// NewEventsHandler construye el handler.
func NewEventsHandler(hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream godoc
// @Summary      Eventos en tiempo real (Server-Sent Events)
// @Tags         events
// @Security     Bearer
// @Produce      text/event-stream
// @Success      200
// @Router       /api/events/stream [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	sub := h.hub.Subscribe(GetTenantID(c))

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	conn := c.Context().Conn()
	extend := func() {
		if conn != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		}
	}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		extend()
		fmt.Fprint(w, ": conectado\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				extend()
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			case <-ticker.C:
				extend()
				fmt.Fprint(w, ": ping\n\n")
			}
			// Flush falla cuando el cliente cerró la conexión.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
