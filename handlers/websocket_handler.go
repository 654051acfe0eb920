package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/schoolsports/tournament-engine/live"
	"github.com/schoolsports/tournament-engine/metrics"
)

// WebsocketHandler upgrades connections onto per-fixture live event
// streams. Subscribers only see events published after they join;
// current state comes from the match details endpoint.
type WebsocketHandler struct {
	hub      *live.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWebsocketHandler(hub *live.Hub, logger *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WebsocketHandler) FixtureStream(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := urlParamInt(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	sub := h.hub.Subscribe(live.FixtureTopic(fixtureID))
	metrics.LiveClients.Inc()

	client := &live.Client{
		Conn:    conn,
		Sub:     sub,
		Logger:  h.logger,
		OnClose: func() { metrics.LiveClients.Dec() },
	}
	go client.WritePump()
	go client.ReadPump()
}
