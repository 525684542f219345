package domain

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Member points back at a connection by handle. A tour never owns the
// connection itself.
type Member struct {
	UserID UserID
	Conn   ConnID
}

// Tour is a signaling session with at most one guide and any number of
// participants. The guide's user id is never a participant key.
type Tour struct {
	ID           TourID
	guide        *Member
	participants map[UserID]ConnID
}

func NewTour(id TourID) *Tour {
	return &Tour{
		ID:           id,
		participants: make(map[UserID]ConnID),
	}
}

func (t *Tour) Guide() (Member, bool) {
	if t.guide == nil {
		return Member{}, false
	}
	return *t.guide, true
}

func (t *Tour) HasGuide() bool {
	return t.guide != nil
}

// SetGuide fills the guide slot. It fails if the slot is taken or if userID
// already belongs to a participant.
func (t *Tour) SetGuide(userID UserID, conn ConnID) error {
	if t.guide != nil {
		return ErrGuideAlreadyPresent
	}
	if _, ok := t.participants[userID]; ok {
		return ErrUserIDTaken
	}
	t.guide = &Member{UserID: userID, Conn: conn}
	return nil
}

// ClearGuide empties the guide slot and returns who held it.
func (t *Tour) ClearGuide() (Member, bool) {
	if t.guide == nil {
		return Member{}, false
	}
	g := *t.guide
	t.guide = nil
	return g, true
}

func (t *Tour) IsGuide(conn ConnID) bool {
	return t.guide != nil && t.guide.Conn == conn
}

func (t *Tour) AddParticipant(userID UserID, conn ConnID) error {
	if t.guide != nil && t.guide.UserID == userID {
		return ErrUserIDTaken
	}
	if _, ok := t.participants[userID]; ok {
		return ErrUserIDTaken
	}
	t.participants[userID] = conn
	return nil
}

// RemoveParticipant only removes the entry when it still points at conn, so a
// stale handle can never evict whoever holds the user id now.
func (t *Tour) RemoveParticipant(userID UserID, conn ConnID) bool {
	current, ok := t.participants[userID]
	if !ok || current != conn {
		return false
	}
	delete(t.participants, userID)
	return true
}

func (t *Tour) ParticipantCount() int {
	return len(t.participants)
}

// Participants returns a snapshot ordered by user id.
func (t *Tour) Participants() []Member {
	members := lo.MapToSlice(t.participants, func(userID UserID, conn ConnID) Member {
		return Member{UserID: userID, Conn: conn}
	})
	slices.SortFunc(members, func(a, b Member) int {
		return strings.Compare(string(a.UserID), string(b.UserID))
	})
	return members
}

// Lookup resolves a user id against the guide slot and the participant table.
func (t *Tour) Lookup(userID UserID) (ConnID, Role, bool) {
	if t.guide != nil && t.guide.UserID == userID {
		return t.guide.Conn, RoleGuide, true
	}
	if conn, ok := t.participants[userID]; ok {
		return conn, RoleParticipant, true
	}
	return ConnID{}, "", false
}

// IsMember reports whether userID is currently held by conn in this tour.
func (t *Tour) IsMember(userID UserID, conn ConnID) bool {
	current, _, ok := t.Lookup(userID)
	return ok && current == conn
}

func (t *Tour) Empty() bool {
	return t.guide == nil && len(t.participants) == 0
}
