package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type answerPayload struct {
	QuestionID string        `json:"questionId"`
	Answer     domain.Answer `json:"answer"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz session per connection.
// The session is closed when the connection goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	opened, err := h.service.Open(ctx, quizID, userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := opened.ID
	// request context is done once the handler returns
	defer h.service.Close(context.Background(), sessionID)

	events, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Single writer: gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	emit(outboundMessage[any]{Type: "session", Payload: opened})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		snap, err := h.handle(ctx, sessionID, inbound)
		if err != nil {
			emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			continue
		}
		emit(outboundMessage[any]{Type: "session", Payload: snap})
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(ctx context.Context, sessionID string, msg inboundMessage) (domain.SessionSnapshot, error) {
	switch msg.Type {
	case "start":
		return h.service.Start(ctx, sessionID)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.QuestionID == "" {
			return domain.SessionSnapshot{}, errInvalidPayload("answer")
		}
		return h.service.Answer(ctx, sessionID, payload.QuestionID, payload.Answer)
	case "next":
		return h.service.Next(ctx, sessionID)
	case "previous":
		return h.service.Previous(ctx, sessionID)
	case "goto":
		var payload gotoPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return domain.SessionSnapshot{}, errInvalidPayload("goto")
		}
		return h.service.GoTo(ctx, sessionID, payload.Index)
	case "complete":
		return h.service.Complete(ctx, sessionID)
	case "reset":
		return h.service.Reset(ctx, sessionID)
	case "session":
		return h.service.Snapshot(ctx, sessionID)
	default:
		return domain.SessionSnapshot{}, errUnsupported
	}
}
