package store

import (
	"errors"
	"time"

	"studyhub/pkg/domain"
)

var (
	// ErrNotFound is returned by Update* operations when the target id is
	// absent. Get* operations report absence via their ok result instead.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken is returned by CreateUser on a username collision.
	ErrUsernameTaken = errors.New("username already taken")
)

// Patch types carry partial updates. Nil fields are left untouched.

type UserPatch struct {
	Email    *string
	Avatar   *string
	Password *string // already hashed by the caller
}

type ConversationPatch struct {
	Title *string
	Model *string
}

type FlashcardSetPatch struct {
	Title       *string
	Description *string
	Subject     *string
}

type FlashcardPatch struct {
	Front        *string
	Back         *string
	Difficulty   *int
	ReviewCount  *int
	Mastery      *int
	LastReviewed *time.Time
}

type NotePatch struct {
	Title   *string
	Content *string
	Subject *string
	Tags    *[]string
}

type QuizPatch struct {
	Title      *string
	Subject    *string
	Difficulty *string
	Questions  *[]domain.Question
}

type VideoGenerationPatch struct {
	Status       *domain.VideoStatus
	VideoURL     *string
	ThumbnailURL *string
	CompletedAt  *time.Time
}

// Store defines persistence for every entity family. Create operations
// assign a fresh id and creation timestamp and return the stored record.
// List-by-owner results are ordered most-recently-updated-or-created first,
// ties broken by insertion order. Deletes are idempotent and cascade to
// child collections (messages, flashcards, quiz attempts).
type Store interface {
	// users
	CreateUser(domain.User) (domain.User, error)
	GetUserByID(id string) (domain.User, bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	UpdateUser(id string, patch UserPatch) (domain.User, error)

	// conversations
	CreateConversation(domain.Conversation) (domain.Conversation, error)
	GetConversation(id string) (domain.Conversation, bool, error)
	ListConversationsByUser(userID string) ([]domain.Conversation, error)
	UpdateConversation(id string, patch ConversationPatch) (domain.Conversation, error)
	DeleteConversation(id string) error

	// messages
	CreateMessage(domain.Message) (domain.Message, error)
	ListMessagesByConversation(conversationID string) ([]domain.Message, error)

	// flashcard sets
	CreateFlashcardSet(domain.FlashcardSet) (domain.FlashcardSet, error)
	GetFlashcardSet(id string) (domain.FlashcardSet, bool, error)
	ListFlashcardSetsByUser(userID string) ([]domain.FlashcardSet, error)
	UpdateFlashcardSet(id string, patch FlashcardSetPatch) (domain.FlashcardSet, error)
	DeleteFlashcardSet(id string) error

	// flashcards
	CreateFlashcard(domain.Flashcard) (domain.Flashcard, error)
	GetFlashcard(id string) (domain.Flashcard, bool, error)
	ListFlashcardsBySet(setID string) ([]domain.Flashcard, error)
	UpdateFlashcard(id string, patch FlashcardPatch) (domain.Flashcard, error)
	DeleteFlashcard(id string) error

	// notes
	CreateNote(domain.Note) (domain.Note, error)
	GetNote(id string) (domain.Note, bool, error)
	ListNotesByUser(userID string) ([]domain.Note, error)
	UpdateNote(id string, patch NotePatch) (domain.Note, error)
	DeleteNote(id string) error

	// quizzes
	CreateQuiz(domain.Quiz) (domain.Quiz, error)
	GetQuiz(id string) (domain.Quiz, bool, error)
	ListQuizzesByUser(userID string) ([]domain.Quiz, error)
	UpdateQuiz(id string, patch QuizPatch) (domain.Quiz, error)
	DeleteQuiz(id string) error

	// quiz attempts
	CreateQuizAttempt(domain.QuizAttempt) (domain.QuizAttempt, error)
	ListQuizAttemptsByQuiz(quizID string) ([]domain.QuizAttempt, error)

	// video generations
	CreateVideoGeneration(domain.VideoGeneration) (domain.VideoGeneration, error)
	GetVideoGeneration(id string) (domain.VideoGeneration, bool, error)
	ListVideoGenerationsByUser(userID string) ([]domain.VideoGeneration, error)
	UpdateVideoGeneration(id string, patch VideoGenerationPatch) (domain.VideoGeneration, error)
}

// SessionStore issues and validates session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	UserIDFromToken(token string) (string, bool, error)
}
