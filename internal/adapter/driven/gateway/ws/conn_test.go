package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Wyydra/tourcast/internal/core/port"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// pair returns the server side of a websocket wrapped in a Conn, and the
// client side as a raw gorilla connection.
func pair(t *testing.T, queueSize int) (*Conn, *websocket.Conn) {
	t.Helper()

	accepted := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- c
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	var server *websocket.Conn
	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server side never accepted")
	}

	conn := NewConn(server, queueSize, time.Second)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, client
}

func TestConn_SendDeliversThroughWritePump(t *testing.T) {
	conn, client := pair(t, 4)
	go conn.WritePump()

	require.NoError(t, conn.Send([]byte(`{"type":"pong"}`)))

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := client.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)
	require.JSONEq(t, `{"type":"pong"}`, string(data))
}

func TestConn_SendFailsWhenQueueIsFull(t *testing.T) {
	// Given a connection whose write pump is not running
	conn, _ := pair(t, 2)

	// When more frames are queued than fit
	require.NoError(t, conn.Send([]byte("a")))
	require.NoError(t, conn.Send([]byte("b")))
	err := conn.Send([]byte("c"))

	// Then the overflow is reported rather than blocking
	require.ErrorIs(t, err, port.ErrSendQueueFull)
}

func TestConn_SendAfterClose(t *testing.T) {
	conn, _ := pair(t, 2)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close(), "second close is a no-op")

	require.ErrorIs(t, conn.Send([]byte("a")), port.ErrConnectionClosed)
	require.ErrorIs(t, conn.Probe(), port.ErrConnectionClosed)

	select {
	case <-conn.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestConn_ProbeRequiresActivityBetweenProbes(t *testing.T) {
	conn, _ := pair(t, 2)

	require.NoError(t, conn.Probe(), "fresh connection counts as alive")
	require.ErrorIs(t, conn.Probe(), port.ErrUnresponsive)

	conn.MarkAlive()
	require.NoError(t, conn.Probe())
}

func TestConn_PongFromPeerKeepsConnectionAlive(t *testing.T) {
	conn, client := pair(t, 2)
	go conn.WritePump()

	// The client must be reading for gorilla to answer pings.
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()
	// The server must be reading for the pong handler to run.
	go func() {
		for {
			if _, _, err := conn.ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	require.NoError(t, conn.Probe())
	require.Eventually(t, func() bool {
		return conn.alive.Load()
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Probe())
}

func TestConn_WritePumpStopsOnClose(t *testing.T) {
	conn, client := pair(t, 2)

	stopped := make(chan struct{})
	go func() {
		conn.WritePump()
		close(stopped)
	}()

	require.NoError(t, conn.Close())

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("write pump still running after close")
	}

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client.ReadMessage()
	require.Error(t, err)
}
