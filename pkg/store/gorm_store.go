package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"studyhub/pkg/domain"
)

const migrateLockID int64 = 52905290

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB, runs auto-migrations, and ensures the cascade
// foreign keys the delete contract relies on.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&UserModel{},
			&ConversationModel{},
			&MessageModel{},
			&FlashcardSetModel{},
			&FlashcardModel{},
			&NoteModel{},
			&QuizModel{},
			&QuizAttemptModel{},
			&VideoGenerationModel{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		if err := tx.Exec(`
			DO $$
			BEGIN
				DELETE FROM message_models m
				WHERE NOT EXISTS (SELECT 1 FROM conversation_models c WHERE c.id = m.conversation_id);
				DELETE FROM flashcard_models f
				WHERE NOT EXISTS (SELECT 1 FROM flashcard_set_models s WHERE s.id = f.set_id);
				DELETE FROM quiz_attempt_models a
				WHERE NOT EXISTS (SELECT 1 FROM quiz_models q WHERE q.id = a.quiz_id);
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'message_models'
					AND constraint_name = 'message_models_conversation_id_fkey'
				) THEN
					ALTER TABLE message_models
					ADD CONSTRAINT message_models_conversation_id_fkey
					FOREIGN KEY (conversation_id) REFERENCES conversation_models(id) ON DELETE CASCADE;
				END IF;
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'flashcard_models'
					AND constraint_name = 'flashcard_models_set_id_fkey'
				) THEN
					ALTER TABLE flashcard_models
					ADD CONSTRAINT flashcard_models_set_id_fkey
					FOREIGN KEY (set_id) REFERENCES flashcard_set_models(id) ON DELETE CASCADE;
				END IF;
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'quiz_attempt_models'
					AND constraint_name = 'quiz_attempt_models_quiz_id_fkey'
				) THEN
					ALTER TABLE quiz_attempt_models
					ADD CONSTRAINT quiz_attempt_models_quiz_id_fkey
					FOREIGN KEY (quiz_id) REFERENCES quiz_models(id) ON DELETE CASCADE;
				END IF;
			END $$;
		`).Error; err != nil {
			return fmt.Errorf("ensure cascade foreign keys: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// ownerOrder lists newest-updated first; equal instants fall back to
// creation order, approximating insertion order.
func ownerOrder(tx *gorm.DB) *gorm.DB {
	return tx.Order("updated_at DESC").Order("created_at ASC")
}

// users

func (s *GormStore) CreateUser(u domain.User) (domain.User, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
		return domain.User{}, err
	}
	if count > 0 {
		return domain.User{}, ErrUsernameTaken
	}
	u.ID = newID()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	model := userToModel(u)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("username = ?", username).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) UpdateUser(id string, patch UserPatch) (domain.User, error) {
	updates := map[string]any{"updated_at": now()}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Avatar != nil {
		updates["avatar"] = *patch.Avatar
	}
	if patch.Password != nil {
		updates["password_hash"] = *patch.Password
	}
	if err := s.applyUpdate(&UserModel{}, id, updates); err != nil {
		return domain.User{}, err
	}
	u, _, err := s.GetUserByID(id)
	return u, err
}

// conversations

func (s *GormStore) CreateConversation(c domain.Conversation) (domain.Conversation, error) {
	c.ID = newID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	model := conversationToModel(c)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Conversation{}, err
	}
	return c, nil
}

func (s *GormStore) GetConversation(id string) (domain.Conversation, bool, error) {
	var model ConversationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Conversation{}, false, nil
		}
		return domain.Conversation{}, false, err
	}
	return conversationFromModel(model), true, nil
}

func (s *GormStore) ListConversationsByUser(userID string) ([]domain.Conversation, error) {
	var models []ConversationModel
	if err := ownerOrder(s.db.Where("user_id = ?", userID)).Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Conversation, 0, len(models))
	for _, m := range models {
		items = append(items, conversationFromModel(m))
	}
	return items, nil
}

func (s *GormStore) UpdateConversation(id string, patch ConversationPatch) (domain.Conversation, error) {
	updates := map[string]any{"updated_at": now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Model != nil {
		updates["model"] = *patch.Model
	}
	if err := s.applyUpdate(&ConversationModel{}, id, updates); err != nil {
		return domain.Conversation{}, err
	}
	c, _, err := s.GetConversation(id)
	return c, err
}

// DeleteConversation removes the conversation; messages go with it via the
// FK cascade.
func (s *GormStore) DeleteConversation(id string) error {
	return s.db.Delete(&ConversationModel{}, "id = ?", id).Error
}

// messages

func (s *GormStore) CreateMessage(m domain.Message) (domain.Message, error) {
	m.ID = newID()
	m.CreatedAt = now()
	model := messageToModel(m)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Message{}, err
	}
	return m, nil
}

func (s *GormStore) ListMessagesByConversation(conversationID string) ([]domain.Message, error) {
	var models []MessageModel
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(models))
	for _, m := range models {
		msgs = append(msgs, messageFromModel(m))
	}
	return msgs, nil
}

// flashcard sets

func (s *GormStore) CreateFlashcardSet(set domain.FlashcardSet) (domain.FlashcardSet, error) {
	set.ID = newID()
	set.CreatedAt = now()
	set.UpdatedAt = set.CreatedAt
	model := flashcardSetToModel(set)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.FlashcardSet{}, err
	}
	return set, nil
}

func (s *GormStore) GetFlashcardSet(id string) (domain.FlashcardSet, bool, error) {
	var model FlashcardSetModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.FlashcardSet{}, false, nil
		}
		return domain.FlashcardSet{}, false, err
	}
	return flashcardSetFromModel(model), true, nil
}

func (s *GormStore) ListFlashcardSetsByUser(userID string) ([]domain.FlashcardSet, error) {
	var models []FlashcardSetModel
	if err := ownerOrder(s.db.Where("user_id = ?", userID)).Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.FlashcardSet, 0, len(models))
	for _, m := range models {
		items = append(items, flashcardSetFromModel(m))
	}
	return items, nil
}

func (s *GormStore) UpdateFlashcardSet(id string, patch FlashcardSetPatch) (domain.FlashcardSet, error) {
	updates := map[string]any{"updated_at": now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Subject != nil {
		updates["subject"] = *patch.Subject
	}
	if err := s.applyUpdate(&FlashcardSetModel{}, id, updates); err != nil {
		return domain.FlashcardSet{}, err
	}
	set, _, err := s.GetFlashcardSet(id)
	return set, err
}

func (s *GormStore) DeleteFlashcardSet(id string) error {
	return s.db.Delete(&FlashcardSetModel{}, "id = ?", id).Error
}

// flashcards

func (s *GormStore) CreateFlashcard(card domain.Flashcard) (domain.Flashcard, error) {
	card.ID = newID()
	card.CreatedAt = now()
	card.UpdatedAt = card.CreatedAt
	if card.Difficulty == 0 {
		card.Difficulty = 1
	}
	model := flashcardToModel(card)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Flashcard{}, err
	}
	return card, nil
}

func (s *GormStore) GetFlashcard(id string) (domain.Flashcard, bool, error) {
	var model FlashcardModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Flashcard{}, false, nil
		}
		return domain.Flashcard{}, false, err
	}
	return flashcardFromModel(model), true, nil
}

func (s *GormStore) ListFlashcardsBySet(setID string) ([]domain.Flashcard, error) {
	var models []FlashcardModel
	if err := s.db.Where("set_id = ?", setID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Flashcard, 0, len(models))
	for _, m := range models {
		items = append(items, flashcardFromModel(m))
	}
	return items, nil
}

func (s *GormStore) UpdateFlashcard(id string, patch FlashcardPatch) (domain.Flashcard, error) {
	updates := map[string]any{"updated_at": now()}
	if patch.Front != nil {
		updates["front"] = *patch.Front
	}
	if patch.Back != nil {
		updates["back"] = *patch.Back
	}
	if patch.Difficulty != nil {
		updates["difficulty"] = *patch.Difficulty
	}
	if patch.ReviewCount != nil {
		updates["review_count"] = *patch.ReviewCount
	}
	if patch.Mastery != nil {
		updates["mastery"] = *patch.Mastery
	}
	if patch.LastReviewed != nil {
		updates["last_reviewed"] = patch.LastReviewed.UTC()
	}
	if err := s.applyUpdate(&FlashcardModel{}, id, updates); err != nil {
		return domain.Flashcard{}, err
	}
	card, _, err := s.GetFlashcard(id)
	return card, err
}

func (s *GormStore) DeleteFlashcard(id string) error {
	return s.db.Delete(&FlashcardModel{}, "id = ?", id).Error
}

// notes

func (s *GormStore) CreateNote(n domain.Note) (domain.Note, error) {
	n.ID = newID()
	n.CreatedAt = now()
	n.UpdatedAt = n.CreatedAt
	model := noteToModel(n)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

func (s *GormStore) GetNote(id string) (domain.Note, bool, error) {
	var model NoteModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Note{}, false, nil
		}
		return domain.Note{}, false, err
	}
	return noteFromModel(model), true, nil
}

func (s *GormStore) ListNotesByUser(userID string) ([]domain.Note, error) {
	var models []NoteModel
	if err := ownerOrder(s.db.Where("user_id = ?", userID)).Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Note, 0, len(models))
	for _, m := range models {
		items = append(items, noteFromModel(m))
	}
	return items, nil
}

func (s *GormStore) UpdateNote(id string, patch NotePatch) (domain.Note, error) {
	updates := map[string]any{"updated_at": now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Subject != nil {
		updates["subject"] = *patch.Subject
	}
	if patch.Tags != nil {
		raw, _ := json.Marshal(*patch.Tags)
		updates["tags"] = raw
	}
	if err := s.applyUpdate(&NoteModel{}, id, updates); err != nil {
		return domain.Note{}, err
	}
	n, _, err := s.GetNote(id)
	return n, err
}

func (s *GormStore) DeleteNote(id string) error {
	return s.db.Delete(&NoteModel{}, "id = ?", id).Error
}

// quizzes

func (s *GormStore) CreateQuiz(q domain.Quiz) (domain.Quiz, error) {
	q.ID = newID()
	q.CreatedAt = now()
	q.UpdatedAt = q.CreatedAt
	model := quizToModel(q)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Quiz{}, err
	}
	return q, nil
}

func (s *GormStore) GetQuiz(id string) (domain.Quiz, bool, error) {
	var model QuizModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Quiz{}, false, nil
		}
		return domain.Quiz{}, false, err
	}
	return quizFromModel(model), true, nil
}

func (s *GormStore) ListQuizzesByUser(userID string) ([]domain.Quiz, error) {
	var models []QuizModel
	if err := ownerOrder(s.db.Where("user_id = ?", userID)).Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Quiz, 0, len(models))
	for _, m := range models {
		items = append(items, quizFromModel(m))
	}
	return items, nil
}

func (s *GormStore) UpdateQuiz(id string, patch QuizPatch) (domain.Quiz, error) {
	updates := map[string]any{"updated_at": now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Subject != nil {
		updates["subject"] = *patch.Subject
	}
	if patch.Difficulty != nil {
		updates["difficulty"] = *patch.Difficulty
	}
	if patch.Questions != nil {
		raw, _ := json.Marshal(*patch.Questions)
		updates["questions"] = raw
	}
	if err := s.applyUpdate(&QuizModel{}, id, updates); err != nil {
		return domain.Quiz{}, err
	}
	q, _, err := s.GetQuiz(id)
	return q, err
}

func (s *GormStore) DeleteQuiz(id string) error {
	return s.db.Delete(&QuizModel{}, "id = ?", id).Error
}

// quiz attempts

func (s *GormStore) CreateQuizAttempt(a domain.QuizAttempt) (domain.QuizAttempt, error) {
	a.ID = newID()
	if a.CompletedAt.IsZero() {
		a.CompletedAt = now()
	}
	model := quizAttemptToModel(a)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.QuizAttempt{}, err
	}
	return a, nil
}

func (s *GormStore) ListQuizAttemptsByQuiz(quizID string) ([]domain.QuizAttempt, error) {
	var models []QuizAttemptModel
	if err := s.db.Where("quiz_id = ?", quizID).Order("completed_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.QuizAttempt, 0, len(models))
	for _, m := range models {
		items = append(items, quizAttemptFromModel(m))
	}
	return items, nil
}

// video generations

func (s *GormStore) CreateVideoGeneration(v domain.VideoGeneration) (domain.VideoGeneration, error) {
	v.ID = newID()
	v.CreatedAt = now()
	v.UpdatedAt = v.CreatedAt
	if v.Status == "" {
		v.Status = domain.VideoPending
	}
	model := videoGenerationToModel(v)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.VideoGeneration{}, err
	}
	return v, nil
}

func (s *GormStore) GetVideoGeneration(id string) (domain.VideoGeneration, bool, error) {
	var model VideoGenerationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.VideoGeneration{}, false, nil
		}
		return domain.VideoGeneration{}, false, err
	}
	return videoGenerationFromModel(model), true, nil
}

func (s *GormStore) ListVideoGenerationsByUser(userID string) ([]domain.VideoGeneration, error) {
	var models []VideoGenerationModel
	if err := ownerOrder(s.db.Where("user_id = ?", userID)).Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.VideoGeneration, 0, len(models))
	for _, m := range models {
		items = append(items, videoGenerationFromModel(m))
	}
	return items, nil
}

func (s *GormStore) UpdateVideoGeneration(id string, patch VideoGenerationPatch) (domain.VideoGeneration, error) {
	updates := map[string]any{"updated_at": now()}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.VideoURL != nil {
		updates["video_url"] = *patch.VideoURL
	}
	if patch.ThumbnailURL != nil {
		updates["thumbnail_url"] = *patch.ThumbnailURL
	}
	if patch.CompletedAt != nil {
		updates["completed_at"] = patch.CompletedAt.UTC()
	}
	if err := s.applyUpdate(&VideoGenerationModel{}, id, updates); err != nil {
		return domain.VideoGeneration{}, err
	}
	v, _, err := s.GetVideoGeneration(id)
	return v, err
}

// applyUpdate runs a partial update and maps "no rows" to ErrNotFound.
func (s *GormStore) applyUpdate(model any, id string, updates map[string]any) error {
	res := s.db.Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// model conversions

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		Avatar:       u.Avatar,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Email:        m.Email,
		Avatar:       m.Avatar,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func conversationToModel(c domain.Conversation) ConversationModel {
	return ConversationModel{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		Model:     c.Model,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func conversationFromModel(m ConversationModel) domain.Conversation {
	return domain.Conversation{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Model:     m.Model,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func messageToModel(msg domain.Message) MessageModel {
	var attachments []byte
	if len(msg.Attachments) > 0 {
		attachments, _ = json.Marshal(msg.Attachments)
	}
	return MessageModel{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           msg.Role,
		Content:        msg.Content,
		Attachments:    attachments,
		CreatedAt:      msg.CreatedAt,
	}
}

func messageFromModel(m MessageModel) domain.Message {
	var attachments []domain.Attachment
	if len(m.Attachments) > 0 {
		_ = json.Unmarshal(m.Attachments, &attachments)
	}
	return domain.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		Attachments:    attachments,
		CreatedAt:      m.CreatedAt,
	}
}

func flashcardSetToModel(s domain.FlashcardSet) FlashcardSetModel {
	return FlashcardSetModel{
		ID:          s.ID,
		UserID:      s.UserID,
		Title:       s.Title,
		Description: s.Description,
		Subject:     s.Subject,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func flashcardSetFromModel(m FlashcardSetModel) domain.FlashcardSet {
	return domain.FlashcardSet{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Subject:     m.Subject,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func flashcardToModel(c domain.Flashcard) FlashcardModel {
	return FlashcardModel{
		ID:           c.ID,
		SetID:        c.SetID,
		Front:        c.Front,
		Back:         c.Back,
		Difficulty:   c.Difficulty,
		ReviewCount:  c.ReviewCount,
		Mastery:      c.Mastery,
		LastReviewed: c.LastReviewed,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func flashcardFromModel(m FlashcardModel) domain.Flashcard {
	return domain.Flashcard{
		ID:           m.ID,
		SetID:        m.SetID,
		Front:        m.Front,
		Back:         m.Back,
		Difficulty:   m.Difficulty,
		ReviewCount:  m.ReviewCount,
		Mastery:      m.Mastery,
		LastReviewed: m.LastReviewed,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func noteToModel(n domain.Note) NoteModel {
	var tags []byte
	if len(n.Tags) > 0 {
		tags, _ = json.Marshal(n.Tags)
	}
	return NoteModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		Subject:   n.Subject,
		Tags:      tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func noteFromModel(m NoteModel) domain.Note {
	var tags []string
	if len(m.Tags) > 0 {
		_ = json.Unmarshal(m.Tags, &tags)
	}
	return domain.Note{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Content:   m.Content,
		Subject:   m.Subject,
		Tags:      tags,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func quizToModel(q domain.Quiz) QuizModel {
	var questions []byte
	if len(q.Questions) > 0 {
		questions, _ = json.Marshal(q.Questions)
	}
	return QuizModel{
		ID:         q.ID,
		UserID:     q.UserID,
		Title:      q.Title,
		Subject:    q.Subject,
		Difficulty: q.Difficulty,
		Questions:  questions,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

func quizFromModel(m QuizModel) domain.Quiz {
	var questions []domain.Question
	if len(m.Questions) > 0 {
		_ = json.Unmarshal(m.Questions, &questions)
	}
	return domain.Quiz{
		ID:         m.ID,
		UserID:     m.UserID,
		Title:      m.Title,
		Subject:    m.Subject,
		Difficulty: m.Difficulty,
		Questions:  questions,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func quizAttemptToModel(a domain.QuizAttempt) QuizAttemptModel {
	var answers []byte
	if len(a.Answers) > 0 {
		answers, _ = json.Marshal(a.Answers)
	}
	return QuizAttemptModel{
		ID:             a.ID,
		QuizID:         a.QuizID,
		UserID:         a.UserID,
		Answers:        answers,
		Score:          a.Score,
		TotalQuestions: a.TotalQuestions,
		CompletedAt:    a.CompletedAt,
	}
}

func quizAttemptFromModel(m QuizAttemptModel) domain.QuizAttempt {
	var answers []any
	if len(m.Answers) > 0 {
		_ = json.Unmarshal(m.Answers, &answers)
	}
	return domain.QuizAttempt{
		ID:             m.ID,
		QuizID:         m.QuizID,
		UserID:         m.UserID,
		Answers:        answers,
		Score:          m.Score,
		TotalQuestions: m.TotalQuestions,
		CompletedAt:    m.CompletedAt,
	}
}

func videoGenerationToModel(v domain.VideoGeneration) VideoGenerationModel {
	return VideoGenerationModel{
		ID:           v.ID,
		UserID:       v.UserID,
		Prompt:       v.Prompt,
		Duration:     v.Duration,
		Style:        v.Style,
		AspectRatio:  v.AspectRatio,
		Status:       string(v.Status),
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		CompletedAt:  v.CompletedAt,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func videoGenerationFromModel(m VideoGenerationModel) domain.VideoGeneration {
	return domain.VideoGeneration{
		ID:           m.ID,
		UserID:       m.UserID,
		Prompt:       m.Prompt,
		Duration:     m.Duration,
		Style:        m.Style,
		AspectRatio:  m.AspectRatio,
		Status:       domain.VideoStatus(m.Status),
		VideoURL:     m.VideoURL,
		ThumbnailURL: m.ThumbnailURL,
		CompletedAt:  m.CompletedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
