package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Wyydra/tourcast/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// wireFrame is the union of every inbound field. Clients may use either
// "type" or "kind" as the discriminant.
type wireFrame struct {
	Type      string          `json:"type"`
	Kind      string          `json:"kind"`
	TourID    string          `json:"tourId"`
	UserID    string          `json:"userId"`
	Role      string          `json:"role"`
	TargetID  string          `json:"targetId"`
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
}

// route is the entry point for every inbound frame. Bad frames get an error
// frame back; the connection stays open either way.
func (h *Hub) route(id domain.ConnID, frame []byte) {
	if _, ok := h.conns.Conn(id); !ok {
		log.Debug().Str("conn_id", id.String()).Msg("Frame from unknown connection dropped")
		return
	}

	cmd, err := decodeCommand(frame)
	if err == nil {
		err = h.dispatch(id, cmd)
	}
	if err != nil {
		log.Debug().Err(err).Str("conn_id", id.String()).Msg("Frame rejected")
		h.sendError(id, err)
	}
}

func (h *Hub) dispatch(id domain.ConnID, cmd domain.Command) error {
	switch c := cmd.(type) {
	case domain.JoinTour:
		return h.joinTour(id, c)
	case domain.LeaveTour:
		h.leaveTour(id)
		return nil
	case domain.Signal:
		return h.relay(id, c)
	case domain.Ping:
		h.send(id, domain.NewPong())
		return nil
	case domain.Pong:
		return nil
	default:
		return domain.NewProtocolError(domain.CodeUnknownType, "unhandled message type %q", cmd.Kind())
	}
}

func decodeCommand(data []byte) (domain.Command, error) {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, domain.NewProtocolError(domain.CodeInvalidJSON, "invalid json: %v", err)
	}

	kind := w.Type
	if kind == "" {
		kind = w.Kind
	}

	switch domain.Kind(kind) {
	case domain.KindJoinTour:
		cmd := domain.JoinTour{
			TourID: domain.TourID(w.TourID),
			UserID: domain.UserID(w.UserID),
			Role:   domain.Role(w.Role),
		}
		if err := validateStruct(cmd); err != nil {
			return nil, err
		}
		return cmd, nil

	case domain.KindLeaveTour:
		return domain.LeaveTour{}, nil

	case domain.KindPing:
		return domain.Ping{}, nil

	case domain.KindPong:
		return domain.Pong{}, nil

	case domain.KindOffer, domain.KindAnswer, domain.KindICECandidate:
		return decodeSignal(domain.Kind(kind), w)

	case "":
		return nil, domain.NewProtocolError(domain.CodeInvalidMessage, "missing message type")

	default:
		return nil, domain.NewProtocolError(domain.CodeUnknownType, "unknown message type %q", kind)
	}
}

func decodeSignal(kind domain.Kind, w wireFrame) (domain.Command, error) {
	sig := domain.Signal{
		SignalKind: kind,
		TourID:     domain.TourID(w.TourID),
		TargetID:   domain.UserID(w.TargetID),
	}
	if err := validateStruct(sig); err != nil {
		return nil, err
	}

	var err error
	switch kind {
	case domain.KindOffer:
		sig.Description, err = decodeDescription(w.Offer, webrtc.SDPTypeOffer)
	case domain.KindAnswer:
		sig.Description, err = decodeDescription(w.Answer, webrtc.SDPTypeAnswer)
	case domain.KindICECandidate:
		sig.Candidate, err = decodeCandidate(w.Candidate)
	}
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// decodeDescription accepts an RTCSessionDescriptionInit object or a bare SDP
// string. An object must carry the type matching the message.
func decodeDescription(raw json.RawMessage, want webrtc.SDPType) (*webrtc.SessionDescription, error) {
	field := want.String()
	if absent(raw) {
		return nil, domain.NewProtocolError(domain.CodeInvalidMessage, "%s is required", field)
	}

	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		if bare == "" {
			return nil, domain.NewProtocolError(domain.CodeInvalidMessage, "%s sdp is empty", field)
		}
		return &webrtc.SessionDescription{Type: want, SDP: bare}, nil
	}

	var desc webrtc.SessionDescription
	if err := json.Unmarshal(raw, &desc); err != nil {
		return nil, domain.NewProtocolError(domain.CodeInvalidMessage, "invalid %s: %v", field, err)
	}
	if desc.Type != want {
		return nil, domain.NewProtocolError(domain.CodeInvalidMessage, "%s must be a session description of type %s", field, field)
	}
	if desc.SDP == "" {
		return nil, domain.NewProtocolError(domain.CodeInvalidMessage, "%s sdp is empty", field)
	}
	return &desc, nil
}

// decodeCandidate accepts an RTCIceCandidateInit object or a bare candidate
// string. An empty candidate string is the end-of-candidates marker and is
// relayed as is.
func decodeCandidate(raw json.RawMessage) (*webrtc.ICECandidateInit, error) {
	if absent(raw) {
		return nil, domain.NewProtocolError(domain.CodeInvalidMessage, "candidate is required")
	}

	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return &webrtc.ICECandidateInit{Candidate: bare}, nil
	}

	var cand webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &cand); err != nil {
		return nil, domain.NewProtocolError(domain.CodeInvalidMessage, "invalid candidate: %v", err)
	}
	return &cand, nil
}

func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewProtocolError(domain.CodeInvalidMessage, "invalid message: %v", err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return domain.NewProtocolError(domain.CodeInvalidMessage, "invalid message: %s", strings.Join(problems, ", "))
}
