package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/logger"
	"topic-quiz-service/internal/view"
)

type WSHandler struct {
	service  *app.Service
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler serves sessions over websockets. checkOrigin may be nil to accept any origin.
func NewWSHandler(service *app.Service, log *logger.Logger, checkOrigin func(r *http.Request) bool) *WSHandler {
	if log == nil {
		log = logger.Nop()
	}
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Topic string `json:"topic"`
}

type selectPayload struct {
	Option *int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type ignoredPayload struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// ServeWS upgrades the request and attaches the connection to a session's controller.
// Every controller transition is pushed as a rendered page.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctrl, updates, cancel, err := h.service.Attach(r.Context(), r.URL.Query().Get("sessionId"))
	if err != nil {
		http.Error(w, "invalid sessionId", http.StatusBadRequest)
		return
	}
	sessionID := ctrl.ID()
	log := h.log.With("session_id", sessionID)
	// Release must see this connection's subscription gone.
	defer h.service.Release(r.Context(), sessionID)
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", "error", err)
				// Unblock the read loop, then drain so senders never stall.
				_ = conn.Close()
				for range send {
				}
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "session", Payload: sessionPayload{SessionID: sessionID}}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "page", Payload: view.Render(snap)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	log.Debug("ws connected")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.service.Touch(r.Context(), sessionID)
		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			send <- errorMessage("malformed message")
			continue
		}
		if reply, ok := h.dispatch(ctrl, inbound); ok {
			send <- reply
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	log.Debug("ws disconnected")
}

// dispatch applies one client intent. It returns a direct reply when the intent
// was malformed or rejected; accepted intents answer through the page stream.
func (h *WSHandler) dispatch(ctrl *app.Controller, msg inboundMessage) (outboundMessage[any], bool) {
	var err error
	switch msg.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errorMessage("invalid start payload"), true
		}
		err = ctrl.StartQuiz(payload.Topic)
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Option == nil {
			return errorMessage("invalid select payload"), true
		}
		err = ctrl.SelectOption(*payload.Option)
	case "next":
		err = ctrl.Next()
	case "cancel":
		err = ctrl.Cancel()
	case "restart":
		ctrl.Restart()
	default:
		return errorMessage("unsupported message type"), true
	}

	switch {
	case err == nil:
		return outboundMessage[any]{}, false
	case domain.IsInvalidAction(err):
		return outboundMessage[any]{Type: "ignored", Payload: ignoredPayload{Action: msg.Type, Reason: err.Error()}}, true
	case errors.Is(err, domain.ErrSessionNotFound):
		return errorMessage("session closed"), true
	default:
		h.log.Error("ws action failed", "session_id", ctrl.ID(), "action", msg.Type, "error", err)
		return errorMessage("something went wrong"), true
	}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
