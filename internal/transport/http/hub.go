// Package http exposes the room service over a gorilla/websocket endpoint
// and fans push notifications out to connected clients.
package http

import (
	"log"
	"sync"
	"time"

	"cipherquiz-service/internal/domain"
)

type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// client is one websocket connection. All writes to its socket go through
// the send channel; the per-connection writer goroutine owns the socket.
type client struct {
	id   string
	send chan outbound
}

// Hub is the connection registry and the service's Notifier. A connection
// watches a room either as a participant or as an admin; admin-only events
// (participant list, scoreboard, proctor log) fan out to the admin set only.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]*client
	admins  map[string]map[string]*client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]*client),
		admins:  make(map[string]map[string]*client),
	}
}

func (h *Hub) register(connectionID string) *client {
	c := &client{id: connectionID, send: make(chan outbound, 32)}
	h.mu.Lock()
	h.clients[connectionID] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connectionID]
	if !ok {
		return
	}
	delete(h.clients, connectionID)
	for _, group := range []map[string]map[string]*client{h.rooms, h.admins} {
		for code, members := range group {
			delete(members, connectionID)
			if len(members) == 0 {
				delete(group, code)
			}
		}
	}
	close(c.send)
}

func (h *Hub) watchRoom(code, connectionID string) {
	h.addTo(h.rooms, code, connectionID)
}

func (h *Hub) watchAsAdmin(code, connectionID string) {
	h.addTo(h.rooms, code, connectionID)
	h.addTo(h.admins, code, connectionID)
}

func (h *Hub) addTo(group map[string]map[string]*client, code, connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connectionID]
	if !ok {
		return
	}
	members, ok := group[code]
	if !ok {
		members = make(map[string]*client)
		group[code] = members
	}
	members[connectionID] = c
}

// deliver never blocks: the room lock is held while notifications fire, so
// a stalled consumer gets its message dropped instead of stalling the room.
func (h *Hub) deliver(c *client, msg outbound) {
	select {
	case c.send <- msg:
	default:
		log.Printf("ws %s: dropping %s, send buffer full", c.id, msg.Type)
	}
}

func (h *Hub) sendTo(connectionID string, msg outbound) {
	h.mu.RLock()
	c, ok := h.clients[connectionID]
	h.mu.RUnlock()
	if ok {
		h.deliver(c, msg)
	}
}

func (h *Hub) broadcast(group map[string]map[string]*client, code string, msg outbound) {
	h.mu.RLock()
	members := group[code]
	targets := make([]*client, 0, len(members))
	for _, c := range members {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		h.deliver(c, msg)
	}
}

// app.Notifier implementation.

func (h *Hub) JoinRequested(roomCode string, p domain.ParticipantInfo) {
	h.broadcast(h.admins, roomCode, outbound{Type: "joinRequested", Payload: p})
}

func (h *Hub) JoinApproved(connectionID string) {
	h.sendTo(connectionID, outbound{Type: "joinApproved"})
}

func (h *Hub) JoinRejected(connectionID, reason string) {
	h.sendTo(connectionID, outbound{Type: "joinRejected", Payload: map[string]string{"reason": reason}})
}

func (h *Hub) Kicked(connectionID, reason string) {
	h.sendTo(connectionID, outbound{Type: "kicked", Payload: map[string]string{"reason": reason}})
}

func (h *Hub) ConfigUpdated(roomCode string, cfg domain.QuizConfig) {
	h.broadcast(h.rooms, roomCode, outbound{Type: "configUpdated", Payload: cfg})
}

func (h *Hub) QuizStarted(roomCode string, startedAt time.Time, cfg domain.QuizConfig) {
	h.broadcast(h.rooms, roomCode, outbound{Type: "quizStarted", Payload: map[string]any{
		"startedAt": startedAt,
		"config":    cfg,
	}})
}

func (h *Hub) QuizFinished(roomCode string) {
	h.broadcast(h.rooms, roomCode, outbound{Type: "quizFinished"})
}

func (h *Hub) ParticipantListChanged(roomCode string, list []domain.ParticipantInfo) {
	h.broadcast(h.admins, roomCode, outbound{Type: "participantList", Payload: list})
}

func (h *Hub) ScoreboardUpdated(roomCode string, entries []domain.ScoreboardEntry) {
	h.broadcast(h.admins, roomCode, outbound{Type: "scoreboard", Payload: entries})
}

func (h *Hub) ProctorEvent(roomCode, participantID string, ev domain.ProctorEvent) {
	h.broadcast(h.admins, roomCode, outbound{Type: "proctorEvent", Payload: map[string]any{
		"participantId": participantID,
		"event":         ev,
	}})
}

func (h *Hub) RoomClosed(roomCode string) {
	h.broadcast(h.rooms, roomCode, outbound{Type: "roomClosed"})
}

func (h *Hub) ShowResults(roomCode string) {
	h.broadcast(h.rooms, roomCode, outbound{Type: "showResults"})
}
