package service

import (
	"fmt"

	"github.com/Wyydra/tourcast/internal/core/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// relay forwards an offer, answer or ICE candidate from id to its recipients.
// With a targetId only that member receives it; otherwise a guide reaches all
// participants and a participant reaches the guide.
func (h *Hub) relay(id domain.ConnID, sig domain.Signal) error {
	from, ok := h.conns.Lookup(id)
	if !ok {
		return fmt.Errorf("relay %s: %w", sig.SignalKind, domain.ErrNotJoined)
	}
	if sig.TourID != from.TourID {
		return fmt.Errorf("relay %s to %s: %w", sig.SignalKind, sig.TourID, domain.ErrTourMismatch)
	}
	tour, ok := h.tours.Get(from.TourID)
	if !ok || !tour.IsMember(from.UserID, id) {
		return fmt.Errorf("relay %s to %s: %w", sig.SignalKind, sig.TourID, domain.ErrTourNotFound)
	}
	if !allowedToSend(sig.SignalKind, from.Role) {
		return fmt.Errorf("%s cannot send %s: %w", from.Role, sig.SignalKind, domain.ErrRoleNotAllowed)
	}

	l := log.With().
		Str("conn_id", id.String()).
		Str("tour_id", from.TourID.String()).
		Str("from_id", from.UserID.String()).
		Str("kind", string(sig.SignalKind)).
		Logger()

	frame := domain.NewRelayed(sig, from)

	if sig.TargetID != "" {
		if sig.TargetID == from.UserID {
			return fmt.Errorf("relay %s: %w", sig.SignalKind, domain.ErrInvalidTarget)
		}
		target, _, ok := tour.Lookup(sig.TargetID)
		if !ok {
			// The target may have just disconnected.
			l.Warn().Str("target_id", sig.TargetID.String()).Msg("Relay target not found, dropping")
			return nil
		}
		h.send(target, frame)
		return nil
	}

	targets := broadcastTargets(tour, from.Role, id)
	if len(targets) == 0 {
		l.Debug().Msg("No recipients for broadcast")
		return nil
	}
	delivered := lo.CountBy(targets, func(target domain.ConnID) bool {
		return h.send(target, frame)
	})
	l.Debug().Int("targets", len(targets)).Int("delivered", delivered).Msg("Broadcast relayed")
	return nil
}

// allowedToSend: offers come from the guide, answers from participants, ICE
// candidates from anyone.
func allowedToSend(kind domain.Kind, role domain.Role) bool {
	switch kind {
	case domain.KindOffer:
		return role == domain.RoleGuide
	case domain.KindAnswer:
		return role == domain.RoleParticipant
	case domain.KindICECandidate:
		return true
	default:
		return false
	}
}

// broadcastTargets is a snapshot, so reaps triggered while delivering cannot
// disturb the iteration.
func broadcastTargets(tour *domain.Tour, role domain.Role, sender domain.ConnID) []domain.ConnID {
	if role == domain.RoleGuide {
		return lo.FilterMap(tour.Participants(), func(m domain.Member, _ int) (domain.ConnID, bool) {
			return m.Conn, m.Conn != sender
		})
	}
	if guide, ok := tour.Guide(); ok && guide.Conn != sender {
		return []domain.ConnID{guide.Conn}
	}
	return nil
}
