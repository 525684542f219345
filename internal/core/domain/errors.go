package domain

import (
	"errors"
	"fmt"
)

var (
	ErrGuideAlreadyPresent = errors.New("tour already has a guide")
	ErrUserIDTaken         = errors.New("user id already in use in this tour")
	ErrNotJoined           = errors.New("connection has not joined a tour")
	ErrTourNotFound        = errors.New("tour not found")
	ErrRoleNotAllowed      = errors.New("role not allowed to send this message")
	ErrTourMismatch        = errors.New("message tour does not match joined tour")
	ErrInvalidTarget       = errors.New("target id refers to the sender")
	ErrReplaced            = errors.New("user id claimed by another connection")
)

// Error codes carried by error frames.
const (
	CodeInvalidJSON    = "invalid_json"
	CodeUnknownType    = "unknown_type"
	CodeInvalidMessage = "invalid_message"
	CodeGuideExists    = "guide_exists"
	CodeUserIDTaken    = "user_id_taken"
	CodeNotJoined      = "not_joined"
	CodeTourNotFound   = "tour_not_found"
	CodeRoleNotAllowed = "role_not_allowed"
	CodeTourMismatch   = "tour_mismatch"
	CodeInvalidTarget  = "invalid_target"
	CodeReplaced       = "replaced"
	CodeInternal       = "internal"
)

// ProtocolError is a frame that could not be decoded or validated.
type ProtocolError struct {
	Code string
	Err  error
}

func NewProtocolError(code string, format string, args ...any) *ProtocolError {
	return &ProtocolError{Code: code, Err: fmt.Errorf(format, args...)}
}

func (e *ProtocolError) Error() string {
	return e.Err.Error()
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ErrorCode maps an error to the code sent back to the client.
func ErrorCode(err error) string {
	var protoErr *ProtocolError
	switch {
	case errors.As(err, &protoErr):
		return protoErr.Code
	case errors.Is(err, ErrGuideAlreadyPresent):
		return CodeGuideExists
	case errors.Is(err, ErrUserIDTaken):
		return CodeUserIDTaken
	case errors.Is(err, ErrNotJoined):
		return CodeNotJoined
	case errors.Is(err, ErrTourNotFound):
		return CodeTourNotFound
	case errors.Is(err, ErrRoleNotAllowed):
		return CodeRoleNotAllowed
	case errors.Is(err, ErrTourMismatch):
		return CodeTourMismatch
	case errors.Is(err, ErrInvalidTarget):
		return CodeInvalidTarget
	case errors.Is(err, ErrReplaced):
		return CodeReplaced
	default:
		return CodeInternal
	}
}
