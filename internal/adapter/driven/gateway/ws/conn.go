package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Wyydra/tourcast/internal/core/domain"
	"github.com/Wyydra/tourcast/internal/core/port"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	DefaultQueueSize = 64
	DefaultWriteWait = 10 * time.Second
)

// Conn implements port.Connection over a gorilla websocket. Frames are queued
// and written by WritePump, so Send never blocks.
type Conn struct {
	id        domain.ConnID
	ws        *websocket.Conn
	writeWait time.Duration

	send chan []byte
	ping chan struct{}
	done chan struct{}

	alive     atomic.Bool
	closeOnce sync.Once
}

func NewConn(ws *websocket.Conn, queueSize int, writeWait time.Duration) *Conn {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if writeWait <= 0 {
		writeWait = DefaultWriteWait
	}
	c := &Conn{
		id:        domain.NewConnID(),
		ws:        ws,
		writeWait: writeWait,
		send:      make(chan []byte, queueSize),
		ping:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	c.alive.Store(true)
	ws.SetPongHandler(func(string) error {
		c.MarkAlive()
		return nil
	})
	return c
}

func (c *Conn) ID() domain.ConnID {
	return c.id
}

func (c *Conn) Send(frame []byte) error {
	select {
	case <-c.done:
		return port.ErrConnectionClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return port.ErrSendQueueFull
	}
}

// Probe fails if nothing was heard from the peer since the previous probe,
// then asks the write pump for a transport ping.
func (c *Conn) Probe() error {
	select {
	case <-c.done:
		return port.ErrConnectionClosed
	default:
	}
	if !c.alive.Swap(false) {
		return port.ErrUnresponsive
	}
	select {
	case c.ping <- struct{}{}:
	default:
	}
	return nil
}

// MarkAlive records that the peer answered a ping or sent a frame.
func (c *Conn) MarkAlive() {
	c.alive.Store(true)
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// Done is closed once the connection is closed from either side.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) WritePump() {
	l := log.With().Str("conn_id", c.id.String()).Logger()
	defer c.Close()

	for {
		select {
		case <-c.done:
			return

		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				l.Debug().Err(err).Msg("Error writing frame")
				return
			}

		case <-c.ping:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait)); err != nil {
				l.Debug().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
