package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTour_SetGuide_Only_One_Guide(t *testing.T) {
	req := require.New(t)
	tour := NewTour("alps")
	first, second := NewConnID(), NewConnID()

	// Given a tour with a guide
	req.NoError(tour.SetGuide("g1", first))

	// When a second guide claims the slot
	err := tour.SetGuide("g2", second)

	// Then it is rejected and the slot is unchanged
	req.ErrorIs(err, ErrGuideAlreadyPresent)
	guide, ok := tour.Guide()
	req.True(ok)
	req.Equal(Member{UserID: "g1", Conn: first}, guide)
}

func TestTour_Guide_And_Participants_Are_Disjoint(t *testing.T) {
	req := require.New(t)
	tour := NewTour("alps")

	req.NoError(tour.SetGuide("g1", NewConnID()))
	req.ErrorIs(tour.AddParticipant("g1", NewConnID()), ErrUserIDTaken)

	other := NewTour("dolomites")
	req.NoError(other.AddParticipant("p1", NewConnID()))
	req.ErrorIs(other.SetGuide("p1", NewConnID()), ErrUserIDTaken)
	req.False(other.HasGuide())
}

func TestTour_AddParticipant_Rejects_Duplicate_UserID(t *testing.T) {
	req := require.New(t)
	tour := NewTour("alps")
	req.NoError(tour.AddParticipant("p1", NewConnID()))

	req.ErrorIs(tour.AddParticipant("p1", NewConnID()), ErrUserIDTaken)
	req.Equal(1, tour.ParticipantCount())
}

func TestTour_RemoveParticipant_Ignores_Stale_Handle(t *testing.T) {
	req := require.New(t)
	tour := NewTour("alps")
	current := NewConnID()
	req.NoError(tour.AddParticipant("p1", current))

	// When an old handle tries to remove the same user id
	removed := tour.RemoveParticipant("p1", NewConnID())

	// Then nothing happens
	req.False(removed)
	req.True(tour.IsMember("p1", current))

	req.True(tour.RemoveParticipant("p1", current))
	req.True(tour.Empty())
}

func TestTour_Lookup(t *testing.T) {
	req := require.New(t)
	tour := NewTour("alps")
	g, p := NewConnID(), NewConnID()
	req.NoError(tour.SetGuide("g1", g))
	req.NoError(tour.AddParticipant("p1", p))

	conn, role, ok := tour.Lookup("g1")
	req.True(ok)
	req.Equal(g, conn)
	req.Equal(RoleGuide, role)

	conn, role, ok = tour.Lookup("p1")
	req.True(ok)
	req.Equal(p, conn)
	req.Equal(RoleParticipant, role)

	_, _, ok = tour.Lookup("nobody")
	req.False(ok)
}

func TestTour_Participants_Sorted_Snapshot(t *testing.T) {
	req := require.New(t)
	tour := NewTour("alps")
	for _, id := range []UserID{"p3", "p1", "p2"} {
		req.NoError(tour.AddParticipant(id, NewConnID()))
	}

	members := tour.Participants()
	req.Len(members, 3)
	req.Equal(UserID("p1"), members[0].UserID)
	req.Equal(UserID("p2"), members[1].UserID)
	req.Equal(UserID("p3"), members[2].UserID)

	// Mutating the tour does not affect the snapshot
	req.True(tour.RemoveParticipant("p1", members[0].Conn))
	req.Len(members, 3)
}

func TestTour_ClearGuide(t *testing.T) {
	req := require.New(t)
	tour := NewTour("alps")
	conn := NewConnID()
	req.NoError(tour.SetGuide("g1", conn))
	req.True(tour.IsGuide(conn))

	g, ok := tour.ClearGuide()
	req.True(ok)
	req.Equal(UserID("g1"), g.UserID)
	req.False(tour.IsGuide(conn))
	req.True(tour.Empty())

	_, ok = tour.ClearGuide()
	req.False(ok)
}
