package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"giveup-backend/internal/auth"
	"giveup-backend/internal/services"
	"giveup-backend/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler serves the session stream. Each connection gets its own
// auth-state notifier and session context.
type WebSocketHandler struct {
	hub         *services.WSHub
	provider    *auth.Provider
	userService *services.UserService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, provider *auth.Provider, userService *services.UserService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		provider:    provider,
		userService: userService,
	}
}

// wsConnection is the per-connection state of the session stream
type wsConnection struct {
	id       string
	notifier *auth.Notifier
	token    string
}

// HandleWebSocket handles GET /ws. A valid token query parameter starts the
// stream signed in; without one it starts signed out.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	var initial *auth.SessionClaims
	if token != "" {
		claims, err := h.provider.Authenticate(ctx, token)
		if err != nil {
			respondError(w, err)
			return
		}
		initial = claims
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	c := &wsConnection{
		id:       uuid.NewString(),
		notifier: auth.NewNotifier(),
	}
	h.hub.Register(c.id, conn)
	defer h.hub.Unregister(c.id)

	sess := session.New(h.userService, session.WithOnChange(func(s session.Snapshot) {
		if err := h.hub.Send(c.id, services.WSMessage{Type: services.WSTypeSession, Data: s}); err != nil {
			log.Debug().Err(err).Str("conn_id", c.id).Msg("Failed to send session update")
		}
	}))
	if err := sess.Start(ctx, c.notifier); err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("Failed to start session context")
		return
	}
	defer sess.Close()

	if initial != nil {
		c.token = token
		c.notifier.Publish(initial.Identity())
	} else {
		c.notifier.Publish(nil)
	}

	log.Info().Str("conn_id", c.id).Bool("signed_in", initial != nil).Msg("Session stream established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("conn_id", c.id).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(c.id, "Invalid message format")
			continue
		}

		h.handleMessage(ctx, c, msg)
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, c *wsConnection, msg services.WSMessage) {
	switch msg.Type {
	case services.WSTypeSignIn:
		h.handleSignIn(ctx, c, msg)
	case services.WSTypeSignOut:
		h.handleSignOut(ctx, c)
	default:
		h.sendError(c.id, "Unknown message type")
	}
}

func (h *WebSocketHandler) handleSignIn(ctx context.Context, c *wsConnection, msg services.WSMessage) {
	identity, err := h.provider.SignIn(ctx, msg.IDToken)
	if err != nil {
		log.Warn().Err(err).Str("conn_id", c.id).Msg("Sign-in rejected")
		h.sendError(c.id, "Sign-in failed")
		return
	}

	token, err := h.provider.IssueSession(identity)
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.UID).Msg("Failed to issue session")
		h.sendError(c.id, "Sign-in failed")
		return
	}
	c.token = token

	if err := h.hub.Send(c.id, services.WSMessage{Type: services.WSTypeToken, Token: token}); err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("Failed to send session token")
		return
	}

	log.Info().Str("user_id", identity.UID).Str("conn_id", c.id).Msg("User signed in")
	c.notifier.Publish(identity)
}

func (h *WebSocketHandler) handleSignOut(ctx context.Context, c *wsConnection) {
	if c.token != "" {
		if err := h.provider.SignOut(ctx, c.token); err != nil {
			log.Warn().Err(err).Str("conn_id", c.id).Msg("Failed to revoke session token")
		}
		c.token = ""
	}

	log.Info().Str("conn_id", c.id).Msg("User signed out")
	c.notifier.Publish(nil)
}

// sendError sends an error message to the connection
func (h *WebSocketHandler) sendError(connID, message string) {
	msg := services.WSMessage{
		Type:    services.WSTypeError,
		Message: message,
	}
	if err := h.hub.Send(connID, msg); err != nil {
		log.Debug().Err(err).Str("conn_id", connID).Msg("Failed to send error message")
	}
}
