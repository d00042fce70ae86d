package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/logger"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second

	// must stay below pongWait
	pingPeriod = (pongWait * 9) / 10

	// subscribers only send pongs and close frames
	maxMessageSize = 512

	sendBuffer = 256
)

// EventStateUpdate is the event name of snapshot broadcasts
const EventStateUpdate = "state_update"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is one JSON frame sent to subscribers
type Message struct {
	SessionID string           `json:"session_id"`
	State     *engine.Snapshot `json:"state,omitempty"`
	Event     string           `json:"event,omitempty"`
	Data      interface{}      `json:"data,omitempty"`
}

// subscriber is one connection following one session
type subscriber struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub fans session snapshots out to the connections watching them
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}

	// filled by BroadcastEvent, drained by Run
	events chan *Message

	log *logrus.Entry
}

// NewHub returns an empty hub. Call Run to deliver queued events.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		events:      make(chan *Message, sendBuffer),
		log:         logger.WithComponent("websocket"),
	}
}

// Run delivers queued events until ctx is done, then closes every
// subscriber.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.events:
			h.deliver(msg)
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to sessionID.
// A non-nil initial snapshot is sent before any broadcast.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).WithField("session_id", sessionID).Warn("websocket upgrade failed")
		return
	}

	sub := &subscriber{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
	}
	if initial != nil {
		if frame, err := json.Marshal(stateMessage(sessionID, initial)); err == nil {
			sub.send <- frame
		}
	}

	h.subscribe(sub)
	go sub.writePump()
	go sub.readPump()
}

// BroadcastToSession pushes a snapshot to every subscriber of sessionID
func (h *Hub) BroadcastToSession(sessionID string, state *engine.Snapshot) {
	h.deliver(stateMessage(sessionID, state))
}

// BroadcastEvent queues a custom event for sessionID. It is dropped when
// the queue is full.
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	select {
	case h.events <- &Message{SessionID: sessionID, Event: event, Data: data}:
	default:
		h.log.WithFields(logrus.Fields{"session_id": sessionID, "event": event}).Warn("event queue full, event dropped")
	}
}

// ClientCount returns the number of connections following sessionID
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}

func stateMessage(sessionID string, state *engine.Snapshot) *Message {
	return &Message{SessionID: sessionID, State: state, Event: EventStateUpdate}
}

func (h *Hub) subscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.subscribers[sub.sessionID]
	if set == nil {
		set = make(map[*subscriber]struct{})
		h.subscribers[sub.sessionID] = set
	}
	set[sub] = struct{}{}

	h.log.WithFields(logrus.Fields{"session_id": sub.sessionID, "clients": len(set)}).Debug("subscriber added")
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(sub)
}

// dropLocked closes sub's send channel once. Callers hold h.mu.
func (h *Hub) dropLocked(sub *subscriber) {
	set := h.subscribers[sub.sessionID]
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.send)
	if len(set) == 0 {
		delete(h.subscribers, sub.sessionID)
	}

	h.log.WithFields(logrus.Fields{"session_id": sub.sessionID, "clients": len(set)}).Debug("subscriber removed")
}

// deliver encodes msg once and hands it to every subscriber of its
// session. A subscriber with a full buffer is dropped.
func (h *Hub) deliver(msg *Message) {
	frame, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).WithField("session_id", msg.SessionID).Error("websocket message not encodable")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers[msg.SessionID] {
		select {
		case sub.send <- frame:
		default:
			h.dropLocked(sub)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subscribers {
		for sub := range set {
			h.dropLocked(sub)
		}
	}
}

// readPump discards inbound frames; it exists to process pongs and notice
// the peer going away.
func (s *subscriber) readPump() {
	defer func() {
		s.hub.unsubscribe(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.hub.log.WithError(err).WithField("session_id", s.sessionID).Warn("websocket read error")
			}
			return
		}
	}
}

// writePump writes one JSON document per frame and pings on idle
func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
