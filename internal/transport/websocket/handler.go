package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
	"github.com/iamasit07/5-in-a-row/backend/internal/service/room"
	"github.com/iamasit07/5-in-a-row/backend/pkg/auth"
	"github.com/iamasit07/5-in-a-row/backend/pkg/httputil"
	"github.com/iamasit07/5-in-a-row/backend/pkg/uid"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	requestLimit = 10 * time.Second
)

// RoomService is what a socket drives; *room.Coordinator implements it.
type RoomService interface {
	Join(ctx context.Context, roomID, connectionID, gameID string) (room.Seat, error)
	SubmitMove(ctx context.Context, roomID, connectionID string, x, y int) (*domain.Game, error)
	Undo(ctx context.Context, roomID, connectionID string, steps int) (*domain.Game, error)
	NewGame(ctx context.Context, roomID, connectionID string, cfg *domain.Config) (*domain.Game, error)
	Leave(roomID, connectionID string) error
}

type Options struct {
	JWTSecret      string
	RequireAuth    bool
	AllowedOrigins []string
}

// Handler manages WebSocket dependencies
type Handler struct {
	Connections *ConnectionManager
	Rooms       RoomService
	Upgrader    websocket.Upgrader
	opts        Options
}

func NewHandler(cm *ConnectionManager, rooms RoomService, opts Options) *Handler {
	h := &Handler{
		Connections: cm,
		Rooms:       rooms,
		opts:        opts,
	}
	h.Upgrader = websocket.Upgrader{
		CheckOrigin:     h.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	log.Printf("[WS] Origin '%s' not allowed", origin)
	return false
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	connectionID, name, err := h.identify(r)
	if err != nil {
		log.Printf("[WS] Rejected connection: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(conn, connectionID, name)
}

// identify resolves the connection id. A valid player token pins it to the
// player id; otherwise a random id is issued unless auth is required.
func (h *Handler) identify(r *http.Request) (string, string, error) {
	token, err := httputil.GetTokenFromRequest(r)
	if err != nil {
		if h.opts.RequireAuth {
			return "", "", err
		}
		return uid.GenerateConnectionID(), "", nil
	}

	claims, err := auth.ValidatePlayerToken(token, h.opts.JWTSecret)
	if err != nil {
		return "", "", err
	}
	return claims.PlayerID, claims.Name, nil
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(conn *websocket.Conn, connectionID, name string) {
	h.Connections.AddConnection(connectionID, conn, name)
	log.Printf("[WS] Connection opened: %s", connectionID)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if !h.Connections.IsCurrentConnection(connectionID, conn) {
					return
				}
				if err := h.Connections.Ping(connectionID); err != nil {
					return
				}
			}
		}
	}()

	defer func() {
		close(done)
		if roomID, removed := h.Connections.RemoveConnectionIfMatching(connectionID, conn); removed && roomID != "" {
			h.Rooms.Leave(roomID, connectionID)
		}
		log.Printf("[WS] Connection closed: %s", connectionID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] %s disconnected unexpectedly: %v", connectionID, err)
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format from %s: %v", connectionID, err)
			h.sendError(connectionID, "", domain.ErrBadRequest)
			continue
		}

		h.processMessage(connectionID, msg)
	}
}

// processMessage routes one client message. The current room is looked up by
// connection id, so a socket that replaced an earlier one with the same id
// keeps (and can leave) the room the earlier socket joined.
func (h *Handler) processMessage(connectionID string, msg domain.ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), requestLimit)
	defer cancel()

	roomID := h.Connections.CurrentRoom(connectionID)

	switch msg.Type {
	case domain.MessageJoin:
		if roomID != "" && roomID != msg.RoomID {
			h.Rooms.Leave(roomID, connectionID)
			h.Connections.SetRoom(connectionID, "")
		}
		if _, err := h.Rooms.Join(ctx, msg.RoomID, connectionID, msg.GameID); err != nil {
			h.sendError(connectionID, msg.RoomID, err)
			return
		}
		h.Connections.SetRoom(connectionID, msg.RoomID)

	case domain.MessageMove:
		if roomID == "" {
			h.sendError(connectionID, "", domain.ErrWrongSeat)
			return
		}
		// Rejections are reported by the room as move_rejected.
		h.Rooms.SubmitMove(ctx, roomID, connectionID, msg.X, msg.Y)

	case domain.MessageUndo:
		steps := msg.Steps
		if steps == 0 {
			steps = 1
		}
		if _, err := h.Rooms.Undo(ctx, roomID, connectionID, steps); err != nil {
			h.sendError(connectionID, roomID, err)
		}

	case domain.MessageNewGame:
		if _, err := h.Rooms.NewGame(ctx, roomID, connectionID, msg.Config); err != nil {
			h.sendError(connectionID, roomID, err)
		}

	case domain.MessageLeave:
		if roomID != "" {
			h.Rooms.Leave(roomID, connectionID)
			h.Connections.SetRoom(connectionID, "")
		}

	default:
		h.sendError(connectionID, roomID, domain.ErrBadRequest)
	}
}

func (h *Handler) sendError(connectionID, roomID string, err error) {
	h.Connections.SendMessage(connectionID, domain.ServerMessage{
		Type:    domain.EventError,
		RoomID:  roomID,
		Reason:  domain.ErrorCode(err),
		Message: err.Error(),
	})
}
