package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Wyydra/tourcast/internal/core/domain"
	"github.com/Wyydra/tourcast/internal/core/port"
	"github.com/rs/zerolog/log"
)

type inbound struct {
	id    domain.ConnID
	frame []byte
}

type Stats struct {
	Connections int `json:"connections"`
	Bound       int `json:"bound"`
	Tours       int `json:"tours"`
}

// Hub owns the connection and tour registries. Every event (open, message,
// close, liveness tick, stats query) is handled by Run on a single goroutine,
// so the registries need no locking.
type Hub struct {
	opts  Options
	conns *ConnectionRegistry
	tours *TourRegistry

	register   chan port.Connection
	unregister chan domain.ConnID
	inbound    chan inbound
	stats      chan chan Stats
	quit       chan struct{}
	done       chan struct{}
}

func NewHub(opts Options) *Hub {
	return &Hub{
		opts:       opts.withDefaults(),
		conns:      NewConnectionRegistry(),
		tours:      NewTourRegistry(),
		register:   make(chan port.Connection),
		unregister: make(chan domain.ConnID),
		inbound:    make(chan inbound),
		stats:      make(chan chan Stats),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Register announces a newly opened connection.
func (h *Hub) Register(c port.Connection) {
	select {
	case h.register <- c:
	case <-h.quit:
	}
}

// Unregister announces that the transport of id is gone.
func (h *Hub) Unregister(id domain.ConnID) {
	select {
	case h.unregister <- id:
	case <-h.quit:
	}
}

// Receive hands one inbound frame to the hub. Frames from the same caller are
// handled in the order Receive is called.
func (h *Hub) Receive(id domain.ConnID, frame []byte) {
	select {
	case h.inbound <- inbound{id: id, frame: frame}:
	case <-h.quit:
	}
}

func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.quit:
		return Stats{}, context.Canceled
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) Stop() {
	close(h.quit)
	<-h.done
}

func (h *Hub) Run() {
	defer close(h.done)

	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.quit:
			log.Info().Int("count", h.conns.Len()).Msg("Stopping hub. Disconnecting all clients.")
			for _, id := range h.conns.IDs() {
				h.reap(id, "shutdown")
			}
			return

		case c := <-h.register:
			h.onOpen(c)

		case id := <-h.unregister:
			h.onClose(id)

		case in := <-h.inbound:
			h.route(in.id, in.frame)

		case <-ticker.C:
			h.probeConnections()

		case reply := <-h.stats:
			reply <- h.snapshot()
		}
	}
}

func (h *Hub) snapshot() Stats {
	return Stats{
		Connections: h.conns.Len(),
		Bound:       h.conns.BoundLen(),
		Tours:       h.tours.Len(),
	}
}

func (h *Hub) onOpen(c port.Connection) {
	h.conns.Add(c)
	log.Debug().Str("conn_id", c.ID().String()).Int("count", h.conns.Len()).Msg("Connection opened")
}

func (h *Hub) onClose(id domain.ConnID) {
	h.disconnect(id)
	if _, ok := h.conns.Remove(id); ok {
		log.Debug().Str("conn_id", id.String()).Int("count", h.conns.Len()).Msg("Connection closed")
	}
}

// disconnect is the single cleanup path for explicit closes, failed sends and
// failed probes.
func (h *Hub) disconnect(id domain.ConnID) {
	h.leaveTour(id)
}

// reap disconnects id, forgets it and closes its transport.
func (h *Hub) reap(id domain.ConnID, reason string) {
	h.disconnect(id)
	c, ok := h.conns.Remove(id)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.Debug().Err(err).Str("conn_id", id.String()).Msg("Error closing reaped connection")
	}
	log.Info().Str("conn_id", id.String()).Str("reason", reason).Msg("Connection reaped")
}

// send encodes frame and queues it on id. A failed send reaps the target
// immediately and reports false; the caller carries on with other targets.
func (h *Hub) send(id domain.ConnID, frame any) bool {
	c, ok := h.conns.Conn(id)
	if !ok {
		return false
	}
	data, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("conn_id", id.String()).Msg("Error encoding frame")
		return false
	}
	if err := c.Send(data); err != nil {
		log.Warn().Err(err).Str("conn_id", id.String()).Msg("Error sending frame")
		h.reap(id, "send failed")
		return false
	}
	return true
}

func (h *Hub) sendError(id domain.ConnID, err error) {
	h.send(id, domain.NewErrorFrame(err))
}
