package service

import (
	"encoding/json"
	"testing"

	"github.com/Wyydra/tourcast/internal/core/domain"
	"github.com/Wyydra/tourcast/internal/core/port"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"
)

// fakeConn records every frame it is asked to send.
type fakeConn struct {
	id       domain.ConnID
	frames   [][]byte
	sendErr  error
	probeErr error
	probes   int
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: domain.NewConnID()}
}

func (c *fakeConn) ID() domain.ConnID { return c.id }

func (c *fakeConn) Send(frame []byte) error {
	if c.closed {
		return port.ErrConnectionClosed
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) Probe() error {
	c.probes++
	return c.probeErr
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// frame is a decoded outbound frame with every field any kind may carry.
type frame struct {
	Type              string                     `json:"type"`
	TourID            string                     `json:"tourId"`
	Role              string                     `json:"role"`
	ParticipantCount  int                        `json:"participantCount"`
	HasGuide          bool                       `json:"hasGuide"`
	GuideID           string                     `json:"guideId"`
	ParticipantID     string                     `json:"participantId"`
	TotalParticipants int                        `json:"totalParticipants"`
	TargetID          string                     `json:"targetId"`
	Offer             *webrtc.SessionDescription `json:"offer"`
	Answer            *webrtc.SessionDescription `json:"answer"`
	Candidate         *webrtc.ICECandidateInit   `json:"candidate"`
	FromID            string                     `json:"fromId"`
	FromRole          string                     `json:"fromRole"`
	Code              string                     `json:"code"`
	Message           string                     `json:"message"`
}

func (c *fakeConn) decoded(t *testing.T) []frame {
	t.Helper()
	out := make([]frame, 0, len(c.frames))
	for _, raw := range c.frames {
		var f frame
		require.NoError(t, json.Unmarshal(raw, &f))
		out = append(out, f)
	}
	return out
}

func (c *fakeConn) last(t *testing.T) frame {
	t.Helper()
	frames := c.decoded(t)
	require.NotEmpty(t, frames, "no frame sent")
	return frames[len(frames)-1]
}

func (c *fakeConn) ofType(t *testing.T, typ domain.Kind) []frame {
	t.Helper()
	var out []frame
	for _, f := range c.decoded(t) {
		if f.Type == string(typ) {
			out = append(out, f)
		}
	}
	return out
}

func (c *fakeConn) reset() {
	c.frames = nil
}

func newTestHub(opts Options) *Hub {
	return NewHub(opts)
}

func open(h *Hub) *fakeConn {
	c := newFakeConn()
	h.onOpen(c)
	return c
}

func deliver(h *Hub, c port.Connection, raw string) {
	h.route(c.ID(), []byte(raw))
}

func join(h *Hub, c port.Connection, tourID, userID string, role domain.Role) {
	deliver(h, c, `{"type":"join-tour","tourId":"`+tourID+`","userId":"`+userID+`","role":"`+string(role)+`"}`)
}

// requireInvariants checks the tour registry against the documented invariants.
func requireInvariants(t *testing.T, h *Hub) {
	t.Helper()
	for id, tour := range h.tours.tours {
		require.Equal(t, id, tour.ID)
		require.False(t, tour.Empty(), "empty tour %s kept in registry", id)
		if guide, ok := tour.Guide(); ok {
			_, role, found := tour.Lookup(guide.UserID)
			require.True(t, found)
			require.Equal(t, domain.RoleGuide, role)
			for _, p := range tour.Participants() {
				require.NotEqual(t, guide.UserID, p.UserID)
			}
		}
	}
}
