package service

import (
	"github.com/rs/zerolog/log"
)

// probeConnections runs once per ping interval. A connection that fails its
// probe is reaped exactly as if its transport had closed. The handle list is
// a snapshot and each handle is re-checked, since reaping one connection can
// reap others whose notifications fail.
func (h *Hub) probeConnections() {
	ids := h.conns.IDs()
	if len(ids) == 0 {
		return
	}
	reaped := 0
	for _, id := range ids {
		c, ok := h.conns.Conn(id)
		if !ok {
			continue
		}
		if err := c.Probe(); err != nil {
			log.Info().Err(err).Str("conn_id", id.String()).Msg("Liveness probe failed")
			h.reap(id, "liveness")
			reaped++
		}
	}
	log.Debug().Int("probed", len(ids)).Int("reaped", reaped).Msg("Liveness tick")
}
