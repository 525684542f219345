package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{ErrGuideAlreadyPresent, CodeGuideExists},
		{ErrUserIDTaken, CodeUserIDTaken},
		{ErrNotJoined, CodeNotJoined},
		{ErrTourNotFound, CodeTourNotFound},
		{ErrRoleNotAllowed, CodeRoleNotAllowed},
		{ErrTourMismatch, CodeTourMismatch},
		{ErrInvalidTarget, CodeInvalidTarget},
		{ErrReplaced, CodeReplaced},
		{fmt.Errorf("join: %w", ErrGuideAlreadyPresent), CodeGuideExists},
		{NewProtocolError(CodeUnknownType, "unknown type %q", "x"), CodeUnknownType},
		{fmt.Errorf("boom"), CodeInternal},
	}
	for _, tc := range cases {
		require.Equal(t, tc.code, ErrorCode(tc.err), tc.err.Error())
	}
}

func TestNewRelayed_Annotates_Sender(t *testing.T) {
	req := require.New(t)
	sig := Signal{
		SignalKind:  KindOffer,
		TourID:      "alps",
		TargetID:    "p1",
		Description: &webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0"},
	}

	frame := NewRelayed(sig, Identity{UserID: "g1", TourID: "alps", Role: RoleGuide})

	data, err := json.Marshal(frame)
	req.NoError(err)

	var got map[string]any
	req.NoError(json.Unmarshal(data, &got))
	req.Equal("offer", got["type"])
	req.Equal("alps", got["tourId"])
	req.Equal("p1", got["targetId"])
	req.Equal("g1", got["fromId"])
	req.Equal("guide", got["fromRole"])
	req.Equal(map[string]any{"type": "offer", "sdp": "v=0"}, got["offer"])
	req.NotContains(got, "answer")
	req.NotContains(got, "candidate")
}

func TestNewJoinedTour_Keeps_Zero_Count(t *testing.T) {
	req := require.New(t)
	tour := NewTour("alps")
	req.NoError(tour.SetGuide("g1", NewConnID()))

	data, err := json.Marshal(NewJoinedTour(tour, RoleGuide))
	req.NoError(err)
	req.JSONEq(`{"type":"joined-tour","tourId":"alps","role":"guide","participantCount":0,"hasGuide":true}`, string(data))
}
