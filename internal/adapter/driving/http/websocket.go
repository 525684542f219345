package http

import (
	"net/http"

	"github.com/Wyydra/tourcast/internal/adapter/driven/gateway/ws"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ServeWS upgrades the request and pumps frames between the socket and the
// hub until either side closes.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Error while upgrading ws")
		return
	}
	if h.opts.MaxMessageBytes > 0 {
		wsConn.SetReadLimit(h.opts.MaxMessageBytes)
	}

	client := ws.NewConn(wsConn, h.opts.SendQueueSize, h.opts.WriteWait)

	l := log.With().Str("conn_id", client.ID().String()).Str("remote_addr", r.RemoteAddr).Logger()
	l.Info().Msg("New client connected")

	h.Hub.Register(client)
	go client.WritePump()

	defer func() {
		l.Info().Msg("Client disconnected")
		h.Hub.Unregister(client.ID())
		_ = client.Close()
	}()

	for {
		_, frame, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l.Error().Err(err).Msg("Unexpected close error")
			}
			break
		}
		client.MarkAlive()
		h.Hub.Receive(client.ID(), frame)
	}
}
