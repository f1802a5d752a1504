package server

import (
	"net/http"
	"strings"

	"studyhub/internal/util"
	"studyhub/pkg/domain"
)

type videoRequest struct {
	Prompt      string `json:"prompt"`
	Duration    int    `json:"duration"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspectRatio"`
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.store.ListVideoGenerationsByUser(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req videoRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		gen, err := s.store.CreateVideoGeneration(domain.VideoGeneration{
			UserID:      user.ID,
			Prompt:      req.Prompt,
			Duration:    req.Duration,
			Style:       req.Style,
			AspectRatio: req.AspectRatio,
			Status:      domain.VideoPending,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := s.videoDispatcher.Dispatch(r.Context(), gen.ID); err != nil {
			// the record stays pending; a queue worker can pick it up on
			// a later enqueue, so the create itself still succeeds
			util.LoggerFromContext(r.Context()).Error("video dispatch failed", "generation_id", gen.ID, "error", err)
		}
		writeJSON(w, http.StatusOK, gen)
	default:
		methodNotAllowed(w)
	}
}

// /api/videos/{id}
func (s *Server) handleVideoByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, rest := pathID(r, "/api/videos/")
	if id == "" || rest != "" {
		notFound(w)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	gen, ok, err := s.store.GetVideoGeneration(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok || gen.UserID != user.ID {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, gen)
}
