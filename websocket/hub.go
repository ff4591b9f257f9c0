package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event types pushed to connected users.
const (
	EventSessionBooked      = "session.booked"
	EventBookingCancelled   = "booking.cancelled"
	EventSessionCancelled   = "session.cancelled"
	EventSessionCompleted   = "session.completed"
	EventSessionRescheduled = "session.rescheduled"
	EventRemovedFromSession = "session.removed"
	EventAppointmentUpdated = "appointment.updated"
)

type Event struct {
	Type          string `json:"type"`
	SessionID     string `json:"sessionId,omitempty"`
	AppointmentID string `json:"appointmentId,omitempty"`
	Message       string `json:"message"`
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

const clientQueueSize = 32

// Client is one open connection. A user may hold several at once.
type Client struct {
	UserID uuid.UUID
	Conn   Conn
	send   chan Event
}

func NewClient(userID uuid.UUID, conn Conn) *Client {
	return &Client{UserID: userID, Conn: conn, send: make(chan Event, clientQueueSize)}
}

// WritePump is the only writer of the client's connection. It returns once the
// hub drops the client or a write fails.
func (c *Client) WritePump() {
	for event := range c.send {
		if err := c.Conn.WriteJSON(event); err != nil {
			log.Warn().Err(err).Str("user", c.UserID.String()).Msg("websocket write failed")
			c.Conn.Close()
			return
		}
	}
}

type delivery struct {
	recipients []uuid.UUID
	event      Event
}

type Hub struct {
	clients   map[uuid.UUID]map[*Client]struct{}
	clientsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
	}
}

// Default is the process hub used by the HTTP handlers.
var Default = NewHub()

func init() {
	go Default.Run()
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Notify queues event for the recipients. It never blocks the caller; when
// the queue is full the event is dropped.
func (h *Hub) Notify(event Event, recipients ...uuid.UUID) {
	if len(recipients) == 0 {
		return
	}
	select {
	case h.deliver <- delivery{recipients: recipients, event: event}:
	default:
		log.Warn().Str("type", event.Type).Msg("websocket delivery queue full, dropping event")
	}
}

func Notify(event Event, recipients ...uuid.UUID) {
	Default.Notify(event, recipients...)
}

// Connected reports whether the user has at least one open connection.
func (h *Hub) Connected(userID uuid.UUID) bool {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			log.Debug().Str("user", client.UserID.String()).Msg("websocket client registered")
			h.clientsMu.Lock()
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			h.clientsMu.Unlock()
		case client := <-h.unregister:
			log.Debug().Str("user", client.UserID.String()).Msg("websocket client unregistered")
			h.clientsMu.Lock()
			h.drop(client)
			h.clientsMu.Unlock()
		case d := <-h.deliver:
			h.send(d)
		}
	}
}

// drop removes client and closes its queue. Callers hold clientsMu.
func (h *Hub) drop(client *Client) {
	set := h.clients[client.UserID]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.send)
}

// send hands the event to every connection of each recipient. A client whose
// queue is full is too slow to keep up and is disconnected.
func (h *Hub) send(d delivery) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for _, id := range d.recipients {
		for client := range h.clients[id] {
			select {
			case client.send <- d.event:
			default:
				log.Warn().Str("user", id.String()).Msg("websocket client too slow, disconnecting")
				h.drop(client)
				client.Conn.Close()
			}
		}
	}
}
