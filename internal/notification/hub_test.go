package notification

import (
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestHubRegistry(t *testing.T) {
	hub := NewHub()

	c1 := &websocket.Conn{}
	c2 := &websocket.Conn{}

	assert.Equal(t, 0, hub.ConnectionCount(7))

	hub.Register(7, c1)
	hub.Register(7, c2)
	assert.Equal(t, 2, hub.ConnectionCount(7))

	hub.Unregister(7, c1)
	assert.Equal(t, 1, hub.ConnectionCount(7))

	// Unregistering an unknown connection is harmless.
	hub.Unregister(7, c1)
	hub.Unregister(99, c1)
	assert.Equal(t, 1, hub.ConnectionCount(7))

	hub.Unregister(7, c2)
	assert.Equal(t, 0, hub.ConnectionCount(7))
}

func TestBroadcastWithNoConnectionsIsANoOp(t *testing.T) {
	hub := NewHub()

	assert.NotPanics(t, func() {
		hub.Broadcast(&Notification{StaffID: 42, Type: TypeOrderPaid, Title: "Order paid"})
	})
}

func TestRegisterDuringBroadcast(t *testing.T) {
	// Registration races against broadcasts for other staff members; the
	// hub's lock must keep the registry consistent throughout.
	hub := NewHub()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			hub.Broadcast(&Notification{StaffID: 42, Type: TypeOrderPaid, Title: "Order paid"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c := &websocket.Conn{}
			hub.Register(7, c)
			hub.Unregister(7, c)
		}
	}()
	wg.Wait()

	assert.Equal(t, 0, hub.ConnectionCount(7))
	assert.Equal(t, 0, hub.ConnectionCount(42))
}
