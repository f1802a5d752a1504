package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"studyhub/pkg/domain"
	"studyhub/pkg/store"
)

type flashcardSetRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
}

func (s *Server) handleFlashcardSets(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.store.ListFlashcardSetsByUser(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req flashcardSetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		set, err := s.store.CreateFlashcardSet(domain.FlashcardSet{
			UserID:      user.ID,
			Title:       req.Title,
			Description: req.Description,
			Subject:     req.Subject,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, set)
	default:
		methodNotAllowed(w)
	}
}

// /api/flashcard-sets/{id} and /api/flashcard-sets/{id}/cards
func (s *Server) handleFlashcardSetByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, rest := pathID(r, "/api/flashcard-sets/")
	if id == "" {
		notFound(w)
		return
	}
	if rest == "cards" {
		s.handleSetCards(w, r, user, id)
		return
	}
	if rest != "" {
		notFound(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		set, ok, err := s.store.GetFlashcardSet(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok || set.UserID != user.ID {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, set)
	case http.MethodPut:
		set, ok, err := s.store.GetFlashcardSet(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok || set.UserID != user.ID {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		var req flashcardSetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		patch := store.FlashcardSetPatch{}
		if req.Title != "" {
			patch.Title = &req.Title
		}
		if req.Description != "" {
			patch.Description = &req.Description
		}
		if req.Subject != "" {
			patch.Subject = &req.Subject
		}
		updated, err := s.store.UpdateFlashcardSet(id, patch)
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
		set, ok, err := s.store.GetFlashcardSet(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if ok && set.UserID == user.ID {
			if err := s.store.DeleteFlashcardSet(id); err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		deleted(w)
	default:
		methodNotAllowed(w)
	}
}

type flashcardRequest struct {
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	Difficulty   *int       `json:"difficulty"`
	ReviewCount  *int       `json:"reviewCount"`
	Mastery      *int       `json:"mastery"`
	LastReviewed *time.Time `json:"lastReviewed"`
}

func (s *Server) handleSetCards(w http.ResponseWriter, r *http.Request, user domain.User, setID string) {
	set, ok, err := s.store.GetFlashcardSet(setID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok || set.UserID != user.ID {
		notFound(w)
		return
	}
	switch r.Method {
	case http.MethodGet:
		cards, err := s.store.ListFlashcardsBySet(setID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, cards)
	case http.MethodPost:
		var req flashcardRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Front == "" || req.Back == "" {
			writeError(w, http.StatusBadRequest, "front and back are required")
			return
		}
		card := domain.Flashcard{SetID: setID, Front: req.Front, Back: req.Back, Difficulty: 1}
		if req.Difficulty != nil {
			card.Difficulty = clamp(*req.Difficulty, 1, 3)
		}
		created, err := s.store.CreateFlashcard(card)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, created)
	default:
		methodNotAllowed(w)
	}
}

// /api/flashcards/{id}
func (s *Server) handleFlashcardByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, rest := pathID(r, "/api/flashcards/")
	if id == "" || rest != "" {
		notFound(w)
		return
	}

	card, ok, err := s.store.GetFlashcard(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	owned := false
	if ok {
		set, setOK, err := s.store.GetFlashcardSet(card.SetID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		owned = setOK && set.UserID == user.ID
	}

	switch r.Method {
	case http.MethodGet:
		if !ok || !owned {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, card)
	case http.MethodPut:
		if !ok || !owned {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		var req flashcardRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		patch := store.FlashcardPatch{
			ReviewCount:  req.ReviewCount,
			LastReviewed: req.LastReviewed,
		}
		if req.Front != "" {
			patch.Front = &req.Front
		}
		if req.Back != "" {
			patch.Back = &req.Back
		}
		if req.Difficulty != nil {
			d := clamp(*req.Difficulty, 1, 3)
			patch.Difficulty = &d
		}
		if req.Mastery != nil {
			m := clamp(*req.Mastery, 0, 100)
			patch.Mastery = &m
		}
		updated, err := s.store.UpdateFlashcard(id, patch)
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
		if ok && owned {
			if err := s.store.DeleteFlashcard(id); err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		deleted(w)
	default:
		methodNotAllowed(w)
	}
}

type generateFlashcardsRequest struct {
	Content string `json:"content"`
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

func (s *Server) handleGenerateFlashcards(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowGenerate(user) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	var req generateFlashcardsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	cards, err := s.generator.Flashcards(r.Context(), req.Content, req.Subject, req.Count)
	if err != nil {
		writeError(w, http.StatusBadGateway, "generation failed")
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
