package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	events  []Event
	fail    bool
	closed  bool
	writing int32
	overlap int32
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if !atomic.CompareAndSwapInt32(&c.writing, 0, 1) {
		atomic.AddInt32(&c.overlap, 1)
	}
	defer atomic.StoreInt32(&c.writing, 0)
	time.Sleep(time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.events = append(c.events, v.(Event))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	return hub
}

// attach registers a client and runs its write pump until the test ends.
func attach(t *testing.T, hub *Hub, userID uuid.UUID, conn *fakeConn) *Client {
	t.Helper()
	client := NewClient(userID, conn)
	hub.Register(client)
	go client.WritePump()
	return client
}

func TestHubDeliversOnlyToRecipients(t *testing.T) {
	hub := startHub(t)

	alice, bob := uuid.New(), uuid.New()
	aliceConn, bobConn := &fakeConn{}, &fakeConn{}
	attach(t, hub, alice, aliceConn)
	attach(t, hub, bob, bobConn)

	hub.Notify(Event{Type: EventSessionCancelled, SessionID: "s1", Message: "cancelled"}, alice)

	require.Eventually(t, func() bool { return len(aliceConn.received()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, EventSessionCancelled, aliceConn.received()[0].Type)
	assert.Empty(t, bobConn.received())
}

func TestHubDeliversToEveryConnectionOfAUser(t *testing.T) {
	hub := startHub(t)

	id := uuid.New()
	laptop, phone := &fakeConn{}, &fakeConn{}
	laptopClient := attach(t, hub, id, laptop)
	attach(t, hub, id, phone)

	hub.Notify(Event{Type: EventSessionBooked}, id)
	require.Eventually(t, func() bool {
		return len(laptop.received()) == 1 && len(phone.received()) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Unregister(laptopClient)
	assert.True(t, hub.Connected(id))

	hub.Notify(Event{Type: EventSessionRescheduled}, id)
	require.Eventually(t, func() bool { return len(phone.received()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Len(t, laptop.received(), 1)
}

func TestWritePumpSerialisesWrites(t *testing.T) {
	hub := startHub(t)

	id := uuid.New()
	conn := &fakeConn{}
	attach(t, hub, id, conn)

	const events = 20
	for i := 0; i < events; i++ {
		hub.Notify(Event{Type: EventAppointmentUpdated}, id)
	}
	require.Eventually(t, func() bool { return len(conn.received()) == events }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&conn.overlap))
}

func TestWritePumpStopsOnWriteFailure(t *testing.T) {
	hub := startHub(t)

	conn := &fakeConn{fail: true}
	client := NewClient(uuid.New(), conn)
	hub.Register(client)

	done := make(chan struct{})
	go func() {
		client.WritePump()
		close(done)
	}()

	hub.Notify(Event{Type: EventSessionBooked}, client.UserID)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop")
	}
	assert.True(t, conn.isClosed())
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := startHub(t)

	id := uuid.New()
	conn := &fakeConn{}
	hub.Register(NewClient(id, conn))

	// No write pump runs, so the queue fills up.
	for i := 0; i <= clientQueueSize; i++ {
		hub.Notify(Event{Type: EventSessionBooked}, id)
	}
	require.Eventually(t, func() bool { return !hub.Connected(id) }, time.Second, 5*time.Millisecond)
	assert.True(t, conn.isClosed())
}

func TestUnregisterTwiceIsHarmless(t *testing.T) {
	hub := startHub(t)

	id := uuid.New()
	client := attach(t, hub, id, &fakeConn{})
	hub.Unregister(client)
	hub.Unregister(client)

	assert.False(t, hub.Connected(id))
}
