package service

import (
	"fmt"

	"github.com/Wyydra/tourcast/internal/core/domain"
	"github.com/rs/zerolog/log"
)

// joinTour binds id to cmd's identity. Any previous binding of id is released
// first, so moving between tours or roles needs no separate path.
func (h *Hub) joinTour(id domain.ConnID, cmd domain.JoinTour) error {
	h.leaveTour(id)

	l := log.With().
		Str("conn_id", id.String()).
		Str("tour_id", cmd.TourID.String()).
		Str("user_id", cmd.UserID.String()).
		Str("role", cmd.Role.String()).
		Logger()

	if err := h.resolveDuplicate(id, cmd); err != nil {
		l.Info().Err(err).Msg("Join rejected")
		return err
	}

	tour, created := h.tours.Ensure(cmd.TourID)
	if created {
		l.Info().Msg("Tour created")
	}

	identity := domain.Identity{UserID: cmd.UserID, TourID: cmd.TourID, Role: cmd.Role}

	switch cmd.Role {
	case domain.RoleGuide:
		if err := tour.SetGuide(cmd.UserID, id); err != nil {
			h.tours.DeleteIfEmpty(tour)
			l.Info().Err(err).Msg("Join rejected")
			return fmt.Errorf("join %s as guide: %w", cmd.TourID, err)
		}
		h.conns.Bind(id, identity)
		l.Info().Int("participants", tour.ParticipantCount()).Msg("Guide joined tour")

		for _, p := range tour.Participants() {
			h.send(p.Conn, domain.NewGuideJoined(tour.ID, cmd.UserID))
		}

	case domain.RoleParticipant:
		if err := tour.AddParticipant(cmd.UserID, id); err != nil {
			h.tours.DeleteIfEmpty(tour)
			l.Info().Err(err).Msg("Join rejected")
			return fmt.Errorf("join %s as participant: %w", cmd.TourID, err)
		}
		h.conns.Bind(id, identity)
		l.Info().Int("participants", tour.ParticipantCount()).Msg("Participant joined tour")

		if guide, ok := tour.Guide(); ok {
			h.send(guide.Conn, domain.NewParticipantJoined(tour, cmd.UserID))
		}

	default:
		h.tours.DeleteIfEmpty(tour)
		return domain.NewProtocolError(domain.CodeInvalidMessage, "unknown role %q", cmd.Role)
	}

	// A failed notification above may have reaped the guide and, under
	// CloseTour, the tour itself; the reply reflects what is left.
	if current, ok := h.tours.Get(cmd.TourID); ok {
		tour = current
	}
	h.send(id, domain.NewJoinedTour(tour, cmd.Role))
	return nil
}

// resolveDuplicate applies the duplicate user policy when cmd.UserID is already
// held in the tour by another connection.
func (h *Hub) resolveDuplicate(id domain.ConnID, cmd domain.JoinTour) error {
	tour, ok := h.tours.Get(cmd.TourID)
	if !ok {
		return nil
	}
	holder, _, ok := tour.Lookup(cmd.UserID)
	if !ok || holder == id {
		return nil
	}
	if h.opts.DuplicateUserPolicy != ReplaceDuplicate {
		return fmt.Errorf("join %s as %s: %w", cmd.TourID, cmd.UserID, domain.ErrUserIDTaken)
	}

	log.Info().
		Str("conn_id", holder.String()).
		Str("tour_id", cmd.TourID.String()).
		Str("user_id", cmd.UserID.String()).
		Msg("User id replaced by another connection")
	h.sendError(holder, domain.ErrReplaced)
	h.leaveTour(holder)
	return nil
}

// leaveTour releases whatever id is bound to. It is a no-op for unbound
// handles. Registries are updated before anyone is notified, so a failed
// notification that reaps another connection always sees consistent state.
func (h *Hub) leaveTour(id domain.ConnID) {
	identity, ok := h.conns.Lookup(id)
	if !ok {
		return
	}
	h.conns.Unbind(id)

	l := log.With().
		Str("conn_id", id.String()).
		Str("tour_id", identity.TourID.String()).
		Str("user_id", identity.UserID.String()).
		Logger()

	tour, ok := h.tours.Get(identity.TourID)
	if !ok {
		l.Debug().Msg("Left a tour that no longer exists")
		return
	}

	if tour.IsGuide(id) {
		tour.ClearGuide()
		remaining := tour.Participants()
		if h.opts.GuideLeavePolicy == CloseTour || tour.Empty() {
			h.tours.Delete(tour)
			l.Info().Int("participants", len(remaining)).Msg("Guide left, tour closed")
		} else {
			l.Info().Int("participants", len(remaining)).Msg("Guide left, tour kept")
		}
		for _, p := range remaining {
			h.send(p.Conn, domain.NewGuideLeft(tour.ID))
		}
		return
	}

	if !tour.RemoveParticipant(identity.UserID, id) {
		return
	}
	if h.tours.DeleteIfEmpty(tour) {
		l.Info().Msg("Last participant left, tour closed")
		return
	}
	l.Info().Int("participants", tour.ParticipantCount()).Msg("Participant left tour")
	if guide, ok := tour.Guide(); ok {
		h.send(guide.Conn, domain.NewParticipantLeft(tour, identity.UserID))
	}
}
