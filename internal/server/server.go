// Package server exposes the HTTP and WebSocket surface of the study app:
// auth, the CRUD resource families, the AI generation helpers, uploads,
// video generations, and the chat relay.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"studyhub/internal/ratelimit"
	"studyhub/internal/util"
	"studyhub/internal/video"
	"studyhub/pkg/ai"
	"studyhub/pkg/domain"
	"studyhub/pkg/storage"
	"studyhub/pkg/store"
)

const defaultMaxUploadBytes = 25 * 1024 * 1024

// Config wires required dependencies for the HTTP server.
type Config struct {
	Store           store.Store
	Sessions        store.SessionStore
	Chat            *ai.Router
	Generator       *ai.Generator
	Uploads         storage.ObjectStore
	VideoDispatcher video.Dispatcher

	// AuthLimiter and GenerateLimiter are optional; nil disables limiting.
	AuthLimiter     *ratelimit.FixedWindowLimiter
	GenerateLimiter *ratelimit.FixedWindowLimiter
	TrustedProxies  *util.TrustedProxies

	MaxUploadBytes int64
	ChatTimeout    time.Duration
}

// Server routes requests to the record store and the AI providers.
type Server struct {
	store           store.Store
	sessions        store.SessionStore
	chat            *ai.Router
	generator       *ai.Generator
	uploads         storage.ObjectStore
	videoDispatcher video.Dispatcher
	authLimiter     *ratelimit.FixedWindowLimiter
	generateLimiter *ratelimit.FixedWindowLimiter
	trustedProxies  *util.TrustedProxies
	maxUploadBytes  int64
	chatTimeout     time.Duration
	mux             *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	chatTimeout := cfg.ChatTimeout
	if chatTimeout <= 0 {
		chatTimeout = 60 * time.Second
	}
	s := &Server{
		store:           cfg.Store,
		sessions:        cfg.Sessions,
		chat:            cfg.Chat,
		generator:       cfg.Generator,
		uploads:         cfg.Uploads,
		videoDispatcher: cfg.VideoDispatcher,
		authLimiter:     cfg.AuthLimiter,
		generateLimiter: cfg.GenerateLimiter,
		trustedProxies:  cfg.TrustedProxies,
		maxUploadBytes:  maxUploadBytes,
		chatTimeout:     chatTimeout,
		mux:             http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.Handle("/api/users/me", s.withUser(s.handleMe))

	s.mux.Handle("/api/conversations", s.withUser(s.handleConversations))
	s.mux.Handle("/api/conversations/", s.withUser(s.handleConversationByID))

	s.mux.Handle("/api/flashcard-sets", s.withUser(s.handleFlashcardSets))
	s.mux.Handle("/api/flashcard-sets/", s.withUser(s.handleFlashcardSetByID))
	s.mux.Handle("/api/flashcards/generate", s.withUser(s.handleGenerateFlashcards))
	s.mux.Handle("/api/flashcards/", s.withUser(s.handleFlashcardByID))

	s.mux.Handle("/api/notes", s.withUser(s.handleNotes))
	s.mux.Handle("/api/notes/", s.withUser(s.handleNoteByID))

	s.mux.Handle("/api/quizzes", s.withUser(s.handleQuizzes))
	s.mux.Handle("/api/quizzes/generate", s.withUser(s.handleGenerateQuiz))
	s.mux.Handle("/api/quizzes/", s.withUser(s.handleQuizByID))

	s.mux.Handle("/api/videos", s.withUser(s.handleVideos))
	s.mux.Handle("/api/videos/", s.withUser(s.handleVideoByID))

	s.mux.Handle("/api/uploads", s.withUser(s.handleUpload))

	s.mux.HandleFunc("/ws", s.handleWS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) withUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		user, ok := s.userFromToken(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) userFromToken(token string) (domain.User, bool) {
	userID, ok, err := s.sessions.UserIDFromToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, ok, err := s.store.GetUserByID(userID)
	if err != nil || !ok {
		return domain.User{}, false
	}
	return user, true
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

// allowAuth rate-limits the unauthenticated auth endpoints by client IP.
func (s *Server) allowAuth(r *http.Request) bool {
	if s.authLimiter == nil {
		return true
	}
	return s.authLimiter.Allow(util.ClientIP(r, s.trustedProxies))
}

// allowGenerate rate-limits the AI generation endpoints per user.
func (s *Server) allowGenerate(user domain.User) bool {
	if s.generateLimiter == nil {
		return true
	}
	return s.generateLimiter.Allow(user.ID)
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out)
}

// pathID extracts the id segment after prefix; the trailing rest (if any)
// comes back separately, e.g. /api/quizzes/{id}/attempts -> id, "attempts".
func pathID(r *http.Request, prefix string) (id, rest string) {
	path := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(path, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		rest = parts[1]
	}
	return id, rest
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// deleted is the confirmation body of every DELETE endpoint.
func deleted(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
