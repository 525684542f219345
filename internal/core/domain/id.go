package domain

import (
	"github.com/google/uuid"
)

// ConnID is the opaque handle of a live transport connection.
type ConnID uuid.UUID

func NewConnID() ConnID {
	return ConnID(uuid.New())
}

func (id ConnID) String() string {
	return uuid.UUID(id).String()
}

// TourID and UserID are supplied by clients and never generated server side.
type TourID string

type UserID string

func (id TourID) String() string {
	return string(id)
}

func (id UserID) String() string {
	return string(id)
}
