package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"studyhub/internal/util"
	"studyhub/pkg/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The session token in the query string is the auth boundary; the
	// Origin header is not.
	CheckOrigin: func(*http.Request) bool { return true },
}

// chatFrame is the single inbound frame shape the relay accepts.
type chatFrame struct {
	Type           string              `json:"type"`
	ConversationID string              `json:"conversationId"`
	Content        string              `json:"content"`
	Role           string              `json:"role"`
	Model          string              `json:"model"`
	Attachments    []domain.Attachment `json:"attachments"`
}

type typingFrame struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"isTyping"`
}

type messageFrame struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

type wsErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// wsConn serializes writes; gorilla connections allow only one concurrent
// writer.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// handleWS upgrades to WebSocket and relays chat turns to the AI
// providers. Browsers cannot set headers on WebSocket requests, so the
// session token rides in the query string.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	user, ok := s.userFromToken(r.URL.Query().Get("token"))
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	logger := util.LoggerFromContext(r.Context()).With("user_id", user.ID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	ws := &wsConn{conn: conn}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame chatFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// unparsable frames are dropped, nothing goes back
			logger.Debug("ignoring malformed frame", "error", err)
			continue
		}
		if frame.Type != "chat_message" {
			logger.Debug("ignoring frame", "type", frame.Type)
			continue
		}
		s.relayChatMessage(ws, logger, user, frame)
	}
}

func (s *Server) relayChatMessage(ws *wsConn, logger *slog.Logger, user domain.User, frame chatFrame) {
	role := frame.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !validRole(role) {
		logger.Debug("ignoring frame with invalid role", "role", role)
		return
	}
	// Same gate as the HTTP message route: the conversation must exist and
	// belong to the sender, or the frame is dropped like any other bad frame.
	conv, ok, err := s.store.GetConversation(frame.ConversationID)
	if err != nil {
		logger.Error("conversation lookup failed", "error", err)
		_ = ws.send(wsErrorFrame{Type: "error", Message: "Failed to get AI response: storage error"})
		return
	}
	if !ok || conv.UserID != user.ID {
		logger.Debug("ignoring frame for unknown conversation", "conversation_id", frame.ConversationID)
		return
	}
	if _, err := s.store.CreateMessage(domain.Message{
		ConversationID: frame.ConversationID,
		Role:           role,
		Content:        frame.Content,
		Attachments:    frame.Attachments,
	}); err != nil {
		logger.Error("persist user message failed", "error", err)
		_ = ws.send(wsErrorFrame{Type: "error", Message: "Failed to get AI response: storage error"})
		return
	}

	_ = ws.send(typingFrame{Type: "typing", IsTyping: true})

	// Detached from the request context: a reply that arrives after the
	// socket closed is still persisted, only the frame send is lost.
	ctx, cancel := context.WithTimeout(context.Background(), s.chatTimeout)
	defer cancel()
	reply, err := s.chat.Complete(ctx, frame.Model, "", frame.Content)
	if err != nil {
		logger.Warn("provider call failed", "model", frame.Model, "error", err)
		_ = ws.send(typingFrame{Type: "typing", IsTyping: false})
		_ = ws.send(wsErrorFrame{Type: "error", Message: "Failed to get AI response: " + err.Error()})
		return
	}

	assistant, err := s.store.CreateMessage(domain.Message{
		ConversationID: frame.ConversationID,
		Role:           domain.RoleAssistant,
		Content:        reply,
	})
	if err != nil {
		logger.Error("persist assistant message failed", "error", err)
		_ = ws.send(typingFrame{Type: "typing", IsTyping: false})
		_ = ws.send(wsErrorFrame{Type: "error", Message: "Failed to get AI response: storage error"})
		return
	}

	_ = ws.send(typingFrame{Type: "typing", IsTyping: false})
	_ = ws.send(messageFrame{Type: "message", Message: assistant})
}
