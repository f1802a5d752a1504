package domain

import "time"

type VideoStatus string

const (
	VideoPending    VideoStatus = "pending"
	VideoProcessing VideoStatus = "processing"
	VideoCompleted  VideoStatus = "completed"
	VideoFailed     VideoStatus = "failed"
)

// Message roles carried over the chat relay.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Attachment is opaque upload metadata carried on a message. The relay
// stores it verbatim and never interprets it.
type Attachment struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName,omitempty"`
	Mimetype     string `json:"mimetype,omitempty"`
	Size         int64  `json:"size,omitempty"`
	Path         string `json:"path,omitempty"`
}

type Message struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversationId"`
	Role           string       `json:"role"`
	Content        string       `json:"content"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
}

type FlashcardSet struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Flashcard struct {
	ID           string     `json:"id"`
	SetID        string     `json:"setId"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	Difficulty   int        `json:"difficulty"` // 1..3
	ReviewCount  int        `json:"reviewCount"`
	Mastery      int        `json:"mastery"` // 0..100
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Subject   string    `json:"subject,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Question struct {
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer any      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Title      string     `json:"title"`
	Subject    string     `json:"subject,omitempty"`
	Difficulty string     `json:"difficulty,omitempty"`
	Questions  []Question `json:"questions"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type QuizAttempt struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quizId"`
	UserID         string    `json:"userId"`
	Answers        []any     `json:"answers"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
}

type VideoGeneration struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	Prompt       string      `json:"prompt"`
	Duration     int         `json:"duration,omitempty"`
	Style        string      `json:"style,omitempty"`
	AspectRatio  string      `json:"aspectRatio,omitempty"`
	Status       VideoStatus `json:"status"`
	VideoURL     string      `json:"videoUrl,omitempty"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Upload is the response body of the file upload endpoint. The file is
// stored as-is; nothing downstream consumes it yet.
type Upload struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Mimetype     string `json:"mimetype"`
	Size         int64  `json:"size"`
	Path         string `json:"path"`
}
