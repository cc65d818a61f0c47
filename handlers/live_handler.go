package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/myckhel/turfHub-sub002/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict Origin to configured frontend hosts before exposing
	// the hub publicly.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type LiveHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewLiveHandler(hub *live.Hub, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{hub: hub, logger: logger}
}

// ServeWs handles GET /ws/stages/{stageID}: it upgrades the connection and
// subscribes the client to the stage's event room.
func (h *LiveHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed",
			slog.Int("stage_id", stageID), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, stageID)
	client.Register()
	go client.WritePump()
	go client.ReadPump()
}
