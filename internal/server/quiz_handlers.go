package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"studyhub/pkg/domain"
	"studyhub/pkg/store"
)

type quizRequest struct {
	Title      string            `json:"title"`
	Subject    string            `json:"subject"`
	Difficulty string            `json:"difficulty"`
	Questions  []domain.Question `json:"questions"`
}

func (s *Server) handleQuizzes(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.store.ListQuizzesByUser(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req quizRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		quiz, err := s.store.CreateQuiz(domain.Quiz{
			UserID:     user.ID,
			Title:      req.Title,
			Subject:    req.Subject,
			Difficulty: req.Difficulty,
			Questions:  req.Questions,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, quiz)
	default:
		methodNotAllowed(w)
	}
}

// /api/quizzes/{id} and /api/quizzes/{id}/attempts
func (s *Server) handleQuizByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, rest := pathID(r, "/api/quizzes/")
	if id == "" {
		notFound(w)
		return
	}
	if rest == "attempts" {
		s.handleQuizAttempts(w, r, user, id)
		return
	}
	if rest != "" {
		notFound(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		quiz, ok, err := s.store.GetQuiz(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok || quiz.UserID != user.ID {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, quiz)
	case http.MethodPut:
		quiz, ok, err := s.store.GetQuiz(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok || quiz.UserID != user.ID {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		var req quizRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		patch := store.QuizPatch{}
		if req.Title != "" {
			patch.Title = &req.Title
		}
		if req.Subject != "" {
			patch.Subject = &req.Subject
		}
		if req.Difficulty != "" {
			patch.Difficulty = &req.Difficulty
		}
		if req.Questions != nil {
			patch.Questions = &req.Questions
		}
		updated, err := s.store.UpdateQuiz(id, patch)
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
		quiz, ok, err := s.store.GetQuiz(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if ok && quiz.UserID == user.ID {
			if err := s.store.DeleteQuiz(id); err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		deleted(w)
	default:
		methodNotAllowed(w)
	}
}

type attemptRequest struct {
	Answers []any `json:"answers"`
}

func (s *Server) handleQuizAttempts(w http.ResponseWriter, r *http.Request, user domain.User, quizID string) {
	quiz, ok, err := s.store.GetQuiz(quizID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok || quiz.UserID != user.ID {
		notFound(w)
		return
	}
	switch r.Method {
	case http.MethodGet:
		attempts, err := s.store.ListQuizAttemptsByQuiz(quizID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, attempts)
	case http.MethodPost:
		var req attemptRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Answers == nil {
			writeError(w, http.StatusBadRequest, "answers are required")
			return
		}
		attempt, err := s.store.CreateQuizAttempt(domain.QuizAttempt{
			QuizID:         quizID,
			UserID:         user.ID,
			Answers:        req.Answers,
			Score:          scoreAnswers(quiz.Questions, req.Answers),
			TotalQuestions: len(quiz.Questions),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, attempt)
	default:
		methodNotAllowed(w)
	}
}

// scoreAnswers grades positionally: answer i counts only when it
// deep-equals question i's correctAnswer. The total is the question count
// at grading time.
func scoreAnswers(questions []domain.Question, answers []any) int {
	score := 0
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if answerEqual(answers[i], q.CorrectAnswer) {
			score++
		}
	}
	return score
}

// answerEqual compares two values in their JSON shape, so 1 submitted over
// the wire (float64) matches a stored correctAnswer of int 1.
func answerEqual(a, b any) bool {
	return reflect.DeepEqual(jsonNormalize(a), jsonNormalize(b))
}

func jsonNormalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

type generateQuizRequest struct {
	Subject       string   `json:"subject"`
	Difficulty    string   `json:"difficulty"`
	QuestionCount int      `json:"questionCount"`
	QuestionTypes []string `json:"questionTypes"`
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowGenerate(user) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	var req generateQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}
	questions, err := s.generator.QuizQuestions(r.Context(), req.Subject, req.Difficulty, req.QuestionCount, req.QuestionTypes)
	if err != nil {
		writeError(w, http.StatusBadGateway, "generation failed")
		return
	}
	quiz, err := s.store.CreateQuiz(domain.Quiz{
		UserID:     user.ID,
		Title:      req.Subject + " Quiz",
		Subject:    req.Subject,
		Difficulty: req.Difficulty,
		Questions:  questions,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}
