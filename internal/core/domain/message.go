package domain

import "github.com/pion/webrtc/v4"

type Kind string

const (
	KindJoinTour          Kind = "join-tour"
	KindJoinedTour        Kind = "joined-tour"
	KindLeaveTour         Kind = "leave-tour"
	KindOffer             Kind = "offer"
	KindAnswer            Kind = "answer"
	KindICECandidate      Kind = "ice-candidate"
	KindGuideJoined       Kind = "guide-joined"
	KindGuideLeft         Kind = "guide-left"
	KindParticipantJoined Kind = "participant-joined"
	KindParticipantLeft   Kind = "participant-left"
	KindPing              Kind = "ping"
	KindPong              Kind = "pong"
	KindError             Kind = "error"
)

// Command is an inbound client message. The set of implementations is closed:
// JoinTour, LeaveTour, Signal, Ping and Pong.
type Command interface {
	Kind() Kind
}

type JoinTour struct {
	TourID TourID `validate:"required"`
	UserID UserID `validate:"required"`
	Role   Role   `validate:"required,oneof=guide participant"`
}

func (JoinTour) Kind() Kind { return KindJoinTour }

type LeaveTour struct{}

func (LeaveTour) Kind() Kind { return KindLeaveTour }

type Ping struct{}

func (Ping) Kind() Kind { return KindPing }

type Pong struct{}

func (Pong) Kind() Kind { return KindPong }

// Signal is an offer, answer or ICE candidate to relay. Exactly one of
// Description and Candidate is set, depending on SignalKind.
type Signal struct {
	SignalKind  Kind   `validate:"required,oneof=offer answer ice-candidate"`
	TourID      TourID `validate:"required"`
	TargetID    UserID
	Description *webrtc.SessionDescription
	Candidate   *webrtc.ICECandidateInit
}

func (s Signal) Kind() Kind { return s.SignalKind }

// Outbound frames.

type JoinedTourFrame struct {
	Type             Kind   `json:"type"`
	TourID           TourID `json:"tourId"`
	Role             Role   `json:"role"`
	ParticipantCount int    `json:"participantCount"`
	HasGuide         bool   `json:"hasGuide"`
}

func NewJoinedTour(t *Tour, role Role) JoinedTourFrame {
	return JoinedTourFrame{
		Type:             KindJoinedTour,
		TourID:           t.ID,
		Role:             role,
		ParticipantCount: t.ParticipantCount(),
		HasGuide:         t.HasGuide(),
	}
}

type GuideJoinedFrame struct {
	Type    Kind   `json:"type"`
	TourID  TourID `json:"tourId"`
	GuideID UserID `json:"guideId"`
}

func NewGuideJoined(tourID TourID, guideID UserID) GuideJoinedFrame {
	return GuideJoinedFrame{Type: KindGuideJoined, TourID: tourID, GuideID: guideID}
}

type GuideLeftFrame struct {
	Type   Kind   `json:"type"`
	TourID TourID `json:"tourId"`
}

func NewGuideLeft(tourID TourID) GuideLeftFrame {
	return GuideLeftFrame{Type: KindGuideLeft, TourID: tourID}
}

type ParticipantFrame struct {
	Type              Kind   `json:"type"`
	TourID            TourID `json:"tourId"`
	ParticipantID     UserID `json:"participantId"`
	TotalParticipants int    `json:"totalParticipants"`
}

func NewParticipantJoined(t *Tour, participantID UserID) ParticipantFrame {
	return ParticipantFrame{
		Type:              KindParticipantJoined,
		TourID:            t.ID,
		ParticipantID:     participantID,
		TotalParticipants: t.ParticipantCount(),
	}
}

func NewParticipantLeft(t *Tour, participantID UserID) ParticipantFrame {
	return ParticipantFrame{
		Type:              KindParticipantLeft,
		TourID:            t.ID,
		ParticipantID:     participantID,
		TotalParticipants: t.ParticipantCount(),
	}
}

// RelayedFrame is a Signal as delivered to its recipients. FromID and FromRole
// come from the sender's bound identity, never from the client payload.
type RelayedFrame struct {
	Type      Kind                       `json:"type"`
	TourID    TourID                     `json:"tourId"`
	TargetID  UserID                     `json:"targetId,omitempty"`
	Offer     *webrtc.SessionDescription `json:"offer,omitempty"`
	Answer    *webrtc.SessionDescription `json:"answer,omitempty"`
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	FromID    UserID                     `json:"fromId"`
	FromRole  Role                       `json:"fromRole"`
}

func NewRelayed(sig Signal, from Identity) RelayedFrame {
	f := RelayedFrame{
		Type:     sig.SignalKind,
		TourID:   sig.TourID,
		TargetID: sig.TargetID,
		FromID:   from.UserID,
		FromRole: from.Role,
	}
	switch sig.SignalKind {
	case KindOffer:
		f.Offer = sig.Description
	case KindAnswer:
		f.Answer = sig.Description
	case KindICECandidate:
		f.Candidate = sig.Candidate
	}
	return f
}

type PongFrame struct {
	Type Kind `json:"type"`
}

func NewPong() PongFrame {
	return PongFrame{Type: KindPong}
}

type ErrorFrame struct {
	Type    Kind   `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorFrame(err error) ErrorFrame {
	return ErrorFrame{Type: KindError, Code: ErrorCode(err), Message: err.Error()}
}
