package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Email        string
	Avatar       string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type ConversationModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index"`
	Title     string    `gorm:"not null"`
	Model     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type MessageModel struct {
	ID             string         `gorm:"primaryKey"`
	ConversationID string         `gorm:"not null;index"`
	Role           string         `gorm:"not null"`
	Content        string         `gorm:"type:text;not null"`
	Attachments    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null;index"`
}

type FlashcardSetModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Subject     string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type FlashcardModel struct {
	ID           string `gorm:"primaryKey"`
	SetID        string `gorm:"not null;index"`
	Front        string `gorm:"type:text;not null"`
	Back         string `gorm:"type:text;not null"`
	Difficulty   int    `gorm:"not null"`
	ReviewCount  int    `gorm:"not null"`
	Mastery      int    `gorm:"not null"`
	LastReviewed *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type NoteModel struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"not null;index"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"type:text"`
	Subject   string
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

type QuizModel struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"not null;index"`
	Title      string `gorm:"not null"`
	Subject    string
	Difficulty string
	Questions  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
}

type QuizAttemptModel struct {
	ID             string         `gorm:"primaryKey"`
	QuizID         string         `gorm:"not null;index"`
	UserID         string         `gorm:"not null;index"`
	Answers        datatypes.JSON `gorm:"type:jsonb"`
	Score          int            `gorm:"not null"`
	TotalQuestions int            `gorm:"not null"`
	CompletedAt    time.Time      `gorm:"not null"`
}

type VideoGenerationModel struct {
	ID           string `gorm:"primaryKey"`
	UserID       string `gorm:"not null;index"`
	Prompt       string `gorm:"type:text;not null"`
	Duration     int
	Style        string
	AspectRatio  string
	Status       string `gorm:"not null"`
	VideoURL     string
	ThumbnailURL string
	CompletedAt  *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
