package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// WSHandler upgrades connections and dispatches inbound commands to the
// game service. A connection's client ID is minted at upgrade time and lives
// until the socket closes; closing it is the implicit disconnect event.
type WSHandler struct {
	hub      *Hub
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub, service *app.GameService) *WSHandler {
	return &WSHandler{
		hub:     hub,
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

// Inbound command payloads, one fixed schema per command.
type createQuizPayload struct {
	Title     string            `json:"title"`
	Questions []domain.Question `json:"questions"`
}

type roomPayload struct {
	RoomCode string `json:"roomCode"`
}

type joinQuizPayload struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
}

type submitAnswerPayload struct {
	RoomCode string `json:"roomCode"`
	Answer   string `json:"answer"`
}

// ServeWS upgrades the request and runs the read loop until the client goes
// away, then feeds the disconnect into the game service.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	h.hub.register(&client{id: clientID, conn: conn, send: make(chan []byte, sendBufferSize)})
	defer h.service.Disconnect(context.Background(), clientID)
	defer h.hub.unregister(clientID)

	log.Debug().Str("client", clientID).Msg("client connected")

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			log.Debug().Str("client", clientID).Err(err).Msg("client read loop done")
			return
		}
		h.dispatch(r.Context(), clientID, inbound)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, clientID string, inbound inboundMessage) {
	switch inbound.Type {
	case "createQuiz":
		var p createQuizPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			log.Warn().Str("client", clientID).Err(err).Msg("bad createQuiz payload")
			return
		}
		if _, _, err := h.service.CreateQuiz(ctx, clientID, p.Title, p.Questions); err != nil {
			log.Error().Str("client", clientID).Err(err).Msg("createQuiz failed")
		}
	case "startQuiz":
		var p roomPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return
		}
		if err := h.service.StartQuiz(ctx, p.RoomCode, clientID); err != nil {
			log.Debug().Str("client", clientID).Str("room", p.RoomCode).Err(err).Msg("startQuiz rejected")
		}
	case "nextQuestion":
		var p roomPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return
		}
		if err := h.service.NextQuestion(ctx, p.RoomCode, clientID); err != nil {
			log.Debug().Str("client", clientID).Str("room", p.RoomCode).Err(err).Msg("nextQuestion rejected")
		}
	case "joinQuiz":
		var p joinQuizPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return
		}
		// JoinQuiz replies with joinedRoom or joinError itself.
		_ = h.service.JoinQuiz(ctx, p.RoomCode, clientID, p.Name)
	case "submitAnswer":
		var p submitAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return
		}
		if err := h.service.SubmitAnswer(ctx, p.RoomCode, clientID, p.Answer); err != nil {
			log.Warn().Str("client", clientID).Err(err).Msg("submitAnswer failed")
		}
	default:
		log.Debug().Str("client", clientID).Str("type", inbound.Type).Msg("unsupported message type")
	}
}
