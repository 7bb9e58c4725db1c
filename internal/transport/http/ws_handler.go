package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cipherquiz-service/internal/app"
	"cipherquiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.RoomService
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoomService, hub *Hub) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createRoomPayload struct {
	Name string `json:"name"`
}

type adminPayload struct {
	RoomCode      string            `json:"roomCode"`
	Token         string            `json:"token"`
	ParticipantID string            `json:"participantId,omitempty"`
	Config        domain.QuizConfig `json:"config,omitempty"`
}

type joinPayload struct {
	RoomCode      string `json:"roomCode"`
	DisplayName   string `json:"displayName"`
	ParticipantID string `json:"participantId,omitempty"`
}

type participantPayload struct {
	RoomCode      string `json:"roomCode"`
	ParticipantID string `json:"participantId"`
	QuestionID    string `json:"questionId,omitempty"`
	Answer        string `json:"answer,omitempty"`
	EventType     string `json:"eventType,omitempty"`
	Content       string `json:"content,omitempty"`
}

type archivePayload struct {
	RoomCode string `json:"roomCode"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and pumps the operation surface. Every
// connection gets a fresh connection id; the service re-binds participants
// to it on join/resume, which is how reconnects work.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connectionID := uuid.New().String()
	c := h.hub.register(connectionID)
	defer h.hub.unregister(connectionID)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws %s: write: %v", connectionID, err)
				return
			}
		}
	}()

	h.hub.deliver(c, outbound{Type: "connected", Payload: map[string]string{"connectionId": connectionID}})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		h.dispatch(r, connectionID, c, msg)
	}

	// Unregister closes c.send, which is what lets the writer drain and exit.
	h.hub.unregister(connectionID)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, connectionID string, c *client, msg inboundMessage) {
	ctx := r.Context()
	fail := func(reason string) {
		h.hub.deliver(c, outbound{Type: "error", Payload: errorPayload{Message: reason}})
	}

	switch msg.Type {
	case "createRoom":
		var p createRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		res, err := h.service.CreateRoom(ctx, p.Name)
		if err != nil {
			fail("room creation failed")
			return
		}
		h.hub.watchAsAdmin(res.RoomCode, connectionID)
		h.hub.deliver(c, outbound{Type: "roomCreated", Payload: res})

	case "updateConfig":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		h.service.UpdateConfig(ctx, p.RoomCode, p.Token, p.Config)

	case "getRoomInfo":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		info := h.service.GetRoomInfo(ctx, p.RoomCode, p.Token)
		h.hub.deliver(c, outbound{Type: "roomInfo", Payload: info})

	case "startQuiz":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		if err := h.service.StartQuiz(ctx, p.RoomCode, p.Token); err != nil {
			fail("quiz start failed")
		}

	case "finishQuiz":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		h.service.FinishQuiz(ctx, p.RoomCode, p.Token)

	case "approve":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		h.service.Approve(ctx, p.RoomCode, p.Token, p.ParticipantID)

	case "reject":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		h.service.Reject(ctx, p.RoomCode, p.Token, p.ParticipantID)

	case "approveAll":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		h.service.ApproveAll(ctx, p.RoomCode, p.Token)

	case "kick":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		h.service.KickParticipant(ctx, p.RoomCode, p.Token, p.ParticipantID)

	case "closeRoom":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		h.service.CloseRoom(ctx, p.RoomCode, p.Token)

	case "showResults":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		h.service.ShowResults(ctx, p.RoomCode, p.Token)

	case "resumeAdmin":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		info, list, board := h.service.ResumeAdmin(ctx, p.RoomCode, p.Token)
		if info == nil {
			fail("room not found")
			return
		}
		h.hub.watchAsAdmin(p.RoomCode, connectionID)
		h.hub.deliver(c, outbound{Type: "adminState", Payload: map[string]any{
			"room":         info,
			"participants": list,
			"scoreboard":   board,
		}})

	case "participantDetails":
		p, ok := decodeAdmin(msg.Payload, fail)
		if !ok {
			return
		}
		state, events := h.service.GetParticipantDetails(ctx, p.RoomCode, p.Token, p.ParticipantID)
		h.hub.deliver(c, outbound{Type: "participantDetails", Payload: map[string]any{
			"quiz":          state,
			"proctorEvents": events,
		}})

	case "checkTime":
		var p archivePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		h.service.CheckTime(ctx, p.RoomCode)

	case "requestJoin":
		var p joinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		res := h.service.RequestJoin(ctx, p.RoomCode, connectionID, p.DisplayName, p.ParticipantID)
		if res.Success {
			h.hub.watchRoom(p.RoomCode, connectionID)
		}
		h.hub.deliver(c, outbound{Type: "joinResult", Payload: res})

	case "resumeParticipant":
		var p joinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		status, state := h.service.ResumeParticipant(ctx, p.RoomCode, connectionID, p.ParticipantID)
		if status != domain.ResumeNotFound {
			h.hub.watchRoom(p.RoomCode, connectionID)
		}
		h.hub.deliver(c, outbound{Type: "resumeResult", Payload: map[string]any{
			"status": status,
			"state":  state,
		}})

	case "getState":
		var p participantPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		status, state := h.service.GetState(ctx, p.RoomCode, p.ParticipantID)
		h.hub.deliver(c, outbound{Type: "state", Payload: map[string]any{
			"status": status,
			"state":  state,
		}})

	case "getQuestions":
		var p participantPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		questions := h.service.GetQuestions(ctx, p.RoomCode, p.ParticipantID)
		h.hub.deliver(c, outbound{Type: "questions", Payload: questions})

	case "submitAnswer":
		var p participantPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		res := h.service.SubmitAnswer(ctx, p.RoomCode, p.ParticipantID, p.QuestionID, p.Answer)
		h.hub.deliver(c, outbound{Type: "answerResult", Payload: res})

	case "proctorEvent":
		var p participantPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		h.service.ReportProctorEvent(ctx, p.RoomCode, p.ParticipantID, p.EventType, p.Content)

	case "listArchived":
		rooms, err := h.service.ListArchivedRooms(ctx)
		if err != nil {
			fail("archive unavailable")
			return
		}
		h.hub.deliver(c, outbound{Type: "archivedRooms", Payload: rooms})

	case "getArchived":
		var p archivePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail("invalid payload")
			return
		}
		room, err := h.service.ArchivedRoom(ctx, p.RoomCode)
		if err != nil {
			fail("archived room not found")
			return
		}
		h.hub.deliver(c, outbound{Type: "archivedRoom", Payload: room})

	default:
		fail("unsupported message type")
	}
}

func decodeAdmin(raw json.RawMessage, fail func(string)) (adminPayload, bool) {
	var p adminPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		fail("invalid payload")
		return adminPayload{}, false
	}
	return p, true
}
