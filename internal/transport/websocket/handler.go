package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/game"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/session"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager     *ConnectionManager
	SessionManager  *game.SessionManager
	AuthService     *session.AuthService
	DefaultGridSize int
	Upgrader        websocket.Upgrader
}

func NewHandler(cm *ConnectionManager, sm *game.SessionManager, as *session.AuthService, defaultGridSize int) *Handler {
	if defaultGridSize == 0 {
		defaultGridSize = domain.DefaultGridSize
	}
	return &Handler{
		ConnManager:     cm,
		SessionManager:  sm,
		AuthService:     as,
		DefaultGridSize: defaultGridSize,
		Upgrader: websocket.Upgrader{
			// origins are enforced by the CORS middleware in front of /ws
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Str("component", "ws").Err(err).Msg("upgrade error")
		return
	}

	h.handleConnection(conn)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// WriteControl may run concurrently with WriteJSON
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	// 1. Wait for Initialization (Auth)
	userID, username, ok := h.authenticate(conn)
	if !ok {
		conn.Close()
		return
	}
	h.ConnManager.AddConnection(userID, conn, username)
	log.Info().Str("component", "ws").Str("username", username).Int64("user", userID).Msg("connection initialized")
	h.ConnManager.SendMessage(userID, domain.ServerMessage{Type: "connected", Message: username})

	// 2. Cleanup on exit
	defer func() {
		log.Info().Str("component", "ws").Str("username", username).Msg("connection closed")
		// a socket replaced by a newer login must not end the user's game
		if h.ConnManager.IsCurrentConnection(userID, conn) {
			h.SessionManager.HandleDisconnect(userID)
		}
		h.ConnManager.RemoveConnectionIfMatching(userID, conn)
	}()

	// 3. Main Message Loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info().Str("component", "ws").Int64("user", userID).Err(err).Msg("user disconnected unexpectedly")
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.ConnManager.SendError(userID, "invalid message format")
			continue
		}

		// a token sent later must still be valid and belong to the same user
		if msg.JWT != "" {
			claims, err := h.AuthService.ValidateToken(msg.JWT)
			if err != nil || claims.UserID != userID {
				h.ConnManager.SendError(userID, "session invalidated")
				return
			}
		}

		h.processMessage(userID, username, msg)
	}
}

func (h *Handler) authenticate(conn *websocket.Conn) (int64, string, bool) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Debug().Str("component", "ws").Err(err).Msg("read error during init")
		return 0, "", false
	}

	var message domain.ClientMessage
	if err := json.Unmarshal(data, &message); err != nil || message.Type != "init" || message.JWT == "" {
		log.Debug().Str("component", "ws").Msg("missing initialization or token")
		conn.WriteJSON(domain.ErrorMessage{Type: "error", Message: "first message must be init with a token"})
		return 0, "", false
	}

	claims, err := h.AuthService.ValidateToken(message.JWT)
	if err != nil {
		log.Info().Str("component", "ws").Err(err).Msg("invalid token during init")
		conn.WriteJSON(domain.ErrorMessage{Type: "error", Message: "invalid token or session expired"})
		return 0, "", false
	}
	return claims.UserID, claims.Username, true
}

// processMessage routes specific actions
func (h *Handler) processMessage(userID int64, username string, msg domain.ClientMessage) {
	var err error
	switch msg.Type {
	case "create_room":
		gridSize := msg.GridSize
		if gridSize == 0 {
			gridSize = h.DefaultGridSize
		}
		_, err = h.SessionManager.CreateRoom(userID, username, gridSize)

	case "join_room":
		_, err = h.SessionManager.JoinRoom(msg.RoomCode, userID, username)

	case "play_bot":
		gridSize := msg.GridSize
		if gridSize == 0 {
			gridSize = h.DefaultGridSize
		}
		var symbol domain.Symbol
		if msg.Symbol != "" {
			if symbol, err = domain.ParseSymbol(msg.Symbol); err != nil {
				break
			}
		}
		_, err = h.SessionManager.CreateBotGame(userID, username, gridSize, symbol, msg.Difficulty)

	case "make_move":
		err = h.SessionManager.HandleMove(userID, domain.Move{Row: msg.Row, Col: msg.Col})

	case "request_restart":
		err = h.SessionManager.HandleRestartRequest(userID)

	case "leave_room":
		h.SessionManager.HandleLeave(userID)

	case "init":
		// already authenticated

	default:
		h.ConnManager.SendError(userID, "unknown message type: "+msg.Type)
	}

	if err != nil {
		h.ConnManager.SendError(userID, err.Error())
	}
}
