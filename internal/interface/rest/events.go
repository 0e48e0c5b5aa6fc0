package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type socketRequest struct {
	Type     string   `json:"type"`
	Username []string `json:"usernames"`
}

// handleEvents streams publish events over a websocket. Clients may narrow
// the stream with {"type":"listen","usernames":[...]}; "h" is a heartbeat.
func (h *Handler) handleEvents(c echo.Context) error {
	if h.events == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "event stream disabled"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	filter := make(chan map[string]bool, 1)
	go func() {
		defer cancel()
		for {
			var req socketRequest
			err := ws.ReadJSON(&req)
			if err != nil {
				if wsErr, ok := err.(*websocket.CloseError); ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(ctx, "WebSocket closed", slog.String("error", wsErr.Error()), slog.String("module", "socket"))
					}
				} else {
					slog.DebugContext(ctx, "Error reading message", slog.String("error", err.Error()), slog.String("module", "socket"))
				}
				return
			}

			switch req.Type {
			case "listen":
				set := make(map[string]bool, len(req.Username))
				for _, u := range req.Username {
					if n := rebento.NormalizeUsername(u); n != "" {
						set[n] = true
					}
				}
				select {
				case <-filter:
				default:
				}
				filter <- set
			case "h": // heartbeat
			default:
				slog.InfoContext(ctx, "Unknown request type", slog.String("type", req.Type), slog.String("module", "socket"))
			}
		}
	}()

	var listening map[string]bool
	events := h.events.Subscribe(ctx, domain.SignalProfilePublished)
	for {
		select {
		case <-ctx.Done():
			return nil
		case set := <-filter:
			listening = set
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			if len(listening) > 0 {
				var event domain.PublishEvent
				if err := json.Unmarshal(payload, &event); err != nil || !listening[event.Username] {
					continue
				}
			}
			if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				slog.DebugContext(ctx, "Error writing message", slog.String("error", err.Error()), slog.String("module", "socket"))
				return nil
			}
		}
	}
}
