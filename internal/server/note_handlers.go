package server

import (
	"errors"
	"net/http"
	"strings"

	"studyhub/pkg/domain"
	"studyhub/pkg/store"
)

type noteRequest struct {
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Subject string    `json:"subject"`
	Tags    *[]string `json:"tags"`
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.store.ListNotesByUser(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req noteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		note := domain.Note{
			UserID:  user.ID,
			Title:   req.Title,
			Content: req.Content,
			Subject: req.Subject,
		}
		if req.Tags != nil {
			note.Tags = *req.Tags
		}
		created, err := s.store.CreateNote(note)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, created)
	default:
		methodNotAllowed(w)
	}
}

// /api/notes/{id} and /api/notes/{id}/enhance
func (s *Server) handleNoteByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, rest := pathID(r, "/api/notes/")
	if id == "" {
		notFound(w)
		return
	}
	if rest == "enhance" {
		s.handleEnhanceNote(w, r, user, id)
		return
	}
	if rest != "" {
		notFound(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		note, ok, err := s.store.GetNote(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok || note.UserID != user.ID {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, note)
	case http.MethodPut:
		note, ok, err := s.store.GetNote(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok || note.UserID != user.ID {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		var req noteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		patch := store.NotePatch{Tags: req.Tags}
		if req.Title != "" {
			patch.Title = &req.Title
		}
		if req.Content != "" {
			patch.Content = &req.Content
		}
		if req.Subject != "" {
			patch.Subject = &req.Subject
		}
		updated, err := s.store.UpdateNote(id, patch)
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
		note, ok, err := s.store.GetNote(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if ok && note.UserID == user.ID {
			if err := s.store.DeleteNote(id); err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		deleted(w)
	default:
		methodNotAllowed(w)
	}
}

// handleEnhanceNote rewrites the note body through the AI generator. A
// malformed provider reply leaves the content unchanged, so the endpoint
// still returns 200 with the original note.
func (s *Server) handleEnhanceNote(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowGenerate(user) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	note, ok, err := s.store.GetNote(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok || note.UserID != user.ID {
		notFound(w)
		return
	}
	enhanced, err := s.generator.EnhanceNote(r.Context(), note.Content)
	if err != nil {
		writeError(w, http.StatusBadGateway, "generation failed")
		return
	}
	if enhanced == note.Content {
		writeJSON(w, http.StatusOK, note)
		return
	}
	updated, err := s.store.UpdateNote(id, store.NotePatch{Content: &enhanced})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
