//go:generate go run go.uber.org/mock/mockgen -source=connection.go -destination=../../../mocks/mock_connection.go -package=mocks
package port

import (
	"errors"

	"github.com/Wyydra/tourcast/internal/core/domain"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendQueueFull    = errors.New("send queue full")
	ErrUnresponsive     = errors.New("connection did not answer the last probe")
)

// Connection is the transport handle the hub talks to. None of its methods
// may block.
type Connection interface {
	ID() domain.ConnID
	// Send queues one frame for delivery and fails if the peer is gone.
	Send(frame []byte) error
	// Probe fails if the previous probe went unanswered, otherwise it issues
	// a new one.
	Probe() error
	Close() error
}
