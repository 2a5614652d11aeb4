package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	return hub
}

func registeredClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := NewClient(uuid.New(), nil)
	hub.RegisterClient(client)
	return client
}

func recv(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.Send:
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &out))
		return out
	case <-time.After(time.Second):
		t.Fatal("no payload received")
		return nil
	}
}

func TestJoinRoomAndRoomSize(t *testing.T) {
	hub := startHub(t)

	c1 := registeredClient(t, hub)
	c2 := registeredClient(t, hub)
	roomID := uuid.New().String()

	assert.Equal(t, 0, hub.RoomSize(roomID))

	hub.JoinRoom(c1, roomID)
	hub.JoinRoom(c2, roomID)

	assert.Equal(t, 2, hub.RoomSize(roomID))
	assert.True(t, hub.InRoom(c1, roomID))
	assert.True(t, hub.InRoom(c2, roomID))
	assert.False(t, hub.InRoom(c1, "other-room"))
}

func TestBroadcastSkipsOriginator(t *testing.T) {
	hub := startHub(t)

	sender := registeredClient(t, hub)
	peer := registeredClient(t, hub)
	outsider := registeredClient(t, hub)
	roomID := uuid.New().String()

	hub.JoinRoom(sender, roomID)
	hub.JoinRoom(peer, roomID)

	hub.BroadcastToRoom(roomID, map[string]string{"type": "message-from-user"}, sender)

	got := recv(t, peer)
	assert.Equal(t, "message-from-user", got["type"])

	select {
	case <-sender.Send:
		t.Fatal("originator must not receive its own broadcast")
	default:
	}
	select {
	case <-outsider.Send:
		t.Fatal("outsider must not receive room traffic")
	default:
	}
}

func TestSendToClientIsPrivate(t *testing.T) {
	hub := startHub(t)

	c1 := registeredClient(t, hub)
	c2 := registeredClient(t, hub)
	roomID := uuid.New().String()
	hub.JoinRoom(c1, roomID)
	hub.JoinRoom(c2, roomID)

	hub.SendToClient(c1, map[string]string{"type": "messages-updated"})

	got := recv(t, c1)
	assert.Equal(t, "messages-updated", got["type"])

	select {
	case <-c2.Send:
		t.Fatal("private send leaked to another room member")
	default:
	}
}

func TestUnregisterPrunesRooms(t *testing.T) {
	hub := startHub(t)

	c1 := registeredClient(t, hub)
	c2 := registeredClient(t, hub)
	roomID := uuid.New().String()
	hub.JoinRoom(c1, roomID)
	hub.JoinRoom(c2, roomID)

	hub.UnregisterClient(c1)

	assert.Eventually(t, func() bool {
		return hub.RoomSize(roomID) == 1
	}, time.Second, 10*time.Millisecond)

	// Send is closed so the write pump can exit
	_, open := <-c1.Send
	assert.False(t, open)

	// remaining member still reachable
	hub.BroadcastToRoom(roomID, map[string]string{"type": "message-from-user"}, nil)
	got := recv(t, c2)
	assert.Equal(t, "message-from-user", got["type"])

	hub.UnregisterClient(c2)
	assert.Eventually(t, func() bool {
		return hub.RoomSize(roomID) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestFullSendBufferDoesNotBlock(t *testing.T) {
	hub := startHub(t)

	slow := registeredClient(t, hub)
	roomID := uuid.New().String()
	hub.JoinRoom(slow, roomID)

	// fill the buffer past capacity; broadcasts must drop, not hang
	for i := 0; i < cap(slow.Send)+10; i++ {
		hub.BroadcastToRoom(roomID, map[string]int{"n": i}, nil)
	}

	assert.Equal(t, cap(slow.Send), len(slow.Send))
}
