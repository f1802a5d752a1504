package server

import (
	"errors"
	"net/http"
	"strings"

	"studyhub/pkg/domain"
	"studyhub/pkg/store"
)

type conversationRequest struct {
	Title string `json:"title"`
	Model string `json:"model"`
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.store.ListConversationsByUser(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req conversationRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		conv, err := s.store.CreateConversation(domain.Conversation{
			UserID: user.ID,
			Title:  req.Title,
			Model:  req.Model,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, conv)
	default:
		methodNotAllowed(w)
	}
}

// /api/conversations/{id} and /api/conversations/{id}/messages
func (s *Server) handleConversationByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, rest := pathID(r, "/api/conversations/")
	if id == "" {
		notFound(w)
		return
	}
	if rest == "messages" {
		s.handleConversationMessages(w, r, user, id)
		return
	}
	if rest != "" {
		notFound(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		conv, ok, err := s.store.GetConversation(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok || conv.UserID != user.ID {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	case http.MethodPut:
		conv, ok, err := s.store.GetConversation(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok || conv.UserID != user.ID {
			// updates of absent targets are a 400, same as bad input
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		var req conversationRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		patch := store.ConversationPatch{}
		if req.Title != "" {
			patch.Title = &req.Title
		}
		if req.Model != "" {
			patch.Model = &req.Model
		}
		updated, err := s.store.UpdateConversation(id, patch)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "invalid request")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		conv, ok, err := s.store.GetConversation(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if ok && conv.UserID == user.ID {
			if err := s.store.DeleteConversation(id); err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		deleted(w)
	default:
		methodNotAllowed(w)
	}
}

type messageRequest struct {
	Role        string              `json:"role"`
	Content     string              `json:"content"`
	Attachments []domain.Attachment `json:"attachments"`
}

func (s *Server) handleConversationMessages(w http.ResponseWriter, r *http.Request, user domain.User, conversationID string) {
	conv, ok, err := s.store.GetConversation(conversationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok || conv.UserID != user.ID {
		notFound(w)
		return
	}
	switch r.Method {
	case http.MethodGet:
		msgs, err := s.store.ListMessagesByConversation(conversationID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	case http.MethodPost:
		var req messageRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Content == "" || !validRole(req.Role) {
			writeError(w, http.StatusBadRequest, "content and a valid role are required")
			return
		}
		msg, err := s.store.CreateMessage(domain.Message{
			ConversationID: conversationID,
			Role:           req.Role,
			Content:        req.Content,
			Attachments:    req.Attachments,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, msg)
	default:
		methodNotAllowed(w)
	}
}

func validRole(role string) bool {
	switch role {
	case domain.RoleUser, domain.RoleAssistant, domain.RoleSystem:
		return true
	}
	return false
}
