package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyhub/pkg/auth"
	"studyhub/pkg/domain"
)

// Demo credentials seeded into every fresh MemoryStore.
const (
	DemoUsername = "demo"
	DemoPassword = "demo123"
)

// collection is one entity family: a map guarded by its own lock, with a
// per-record insertion sequence used to break ordering ties. Locking is
// partitioned per family; no operation spans two families under lock.
type collection[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	seq   map[string]uint64
	next  uint64
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{
		items: make(map[string]T),
		seq:   make(map[string]uint64),
	}
}

func (c *collection[T]) insert(id string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertLocked(id, v)
}

// insertLocked is insert for callers already holding c.mu, so a uniqueness
// check and the insert can share one critical section.
func (c *collection[T]) insertLocked(id string, v T) {
	if _, exists := c.seq[id]; !exists {
		c.next++
		c.seq[id] = c.next
	}
	c.items[id] = v
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	return v, ok
}

// replace overwrites an existing record without disturbing its sequence.
func (c *collection[T]) replace(id string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = v
}

func (c *collection[T]) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	delete(c.seq, id)
}

type entry[T any] struct {
	seq   uint64
	value T
}

// snapshot returns all records in insertion order.
func (c *collection[T]) snapshot() []entry[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entry[T], 0, len(c.items))
	for id, v := range c.items {
		out = append(out, entry[T]{seq: c.seq[id], value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// MemoryStore keeps every entity family in process. It satisfies the same
// ordering and cascade contract as the database-backed store and exists for
// demo and test use.
type MemoryStore struct {
	users         *collection[domain.User]
	conversations *collection[domain.Conversation]
	messages      *collection[domain.Message]
	sets          *collection[domain.FlashcardSet]
	cards         *collection[domain.Flashcard]
	notes         *collection[domain.Note]
	quizzes       *collection[domain.Quiz]
	attempts      *collection[domain.QuizAttempt]
	videos        *collection[domain.VideoGeneration]
}

// NewMemoryStore initializes an empty store with the demo user seeded.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		users:         newCollection[domain.User](),
		conversations: newCollection[domain.Conversation](),
		messages:      newCollection[domain.Message](),
		sets:          newCollection[domain.FlashcardSet](),
		cards:         newCollection[domain.Flashcard](),
		notes:         newCollection[domain.Note](),
		quizzes:       newCollection[domain.Quiz](),
		attempts:      newCollection[domain.QuizAttempt](),
		videos:        newCollection[domain.VideoGeneration](),
	}
	_, _ = s.CreateUser(domain.User{
		Username:     DemoUsername,
		PasswordHash: auth.HashPassword(DemoPassword),
		Email:        "demo@example.com",
	})
	return s
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

// users

func (s *MemoryStore) CreateUser(u domain.User) (domain.User, error) {
	// Check and insert under one lock; two concurrent signups of the same
	// name must not both pass the uniqueness check.
	s.users.mu.Lock()
	defer s.users.mu.Unlock()
	for _, existing := range s.users.items {
		if existing.Username == u.Username {
			return domain.User{}, ErrUsernameTaken
		}
	}
	u.ID = newID()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	s.users.insertLocked(u.ID, u)
	return u, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	u, ok := s.users.get(id)
	return u, ok, nil
}

func (s *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	for _, e := range s.users.snapshot() {
		if e.value.Username == username {
			return e.value, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) UpdateUser(id string, patch UserPatch) (domain.User, error) {
	u, ok := s.users.get(id)
	if !ok {
		return domain.User{}, ErrNotFound
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if patch.Password != nil {
		u.PasswordHash = *patch.Password
	}
	u.UpdatedAt = now()
	s.users.replace(id, u)
	return u, nil
}

// conversations

func (s *MemoryStore) CreateConversation(c domain.Conversation) (domain.Conversation, error) {
	c.ID = newID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	s.conversations.insert(c.ID, c)
	return c, nil
}

func (s *MemoryStore) GetConversation(id string) (domain.Conversation, bool, error) {
	c, ok := s.conversations.get(id)
	return c, ok, nil
}

func (s *MemoryStore) ListConversationsByUser(userID string) ([]domain.Conversation, error) {
	items := make([]domain.Conversation, 0)
	for _, e := range s.conversations.snapshot() {
		if e.value.UserID == userID {
			items = append(items, e.value)
		}
	}
	sortByRecency(items, func(c domain.Conversation) time.Time { return latest(c.UpdatedAt, c.CreatedAt) })
	return items, nil
}

func (s *MemoryStore) UpdateConversation(id string, patch ConversationPatch) (domain.Conversation, error) {
	c, ok := s.conversations.get(id)
	if !ok {
		return domain.Conversation{}, ErrNotFound
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Model != nil {
		c.Model = *patch.Model
	}
	c.UpdatedAt = now()
	s.conversations.replace(id, c)
	return c, nil
}

func (s *MemoryStore) DeleteConversation(id string) error {
	s.conversations.remove(id)
	for _, e := range s.messages.snapshot() {
		if e.value.ConversationID == id {
			s.messages.remove(e.value.ID)
		}
	}
	return nil
}

// messages
//
// Appending a message does not touch the parent conversation's UpdatedAt.
// That mirrors the reference behavior; see DESIGN.md.

func (s *MemoryStore) CreateMessage(m domain.Message) (domain.Message, error) {
	m.ID = newID()
	m.CreatedAt = now()
	s.messages.insert(m.ID, m)
	return m, nil
}

func (s *MemoryStore) ListMessagesByConversation(conversationID string) ([]domain.Message, error) {
	items := make([]domain.Message, 0)
	for _, e := range s.messages.snapshot() {
		if e.value.ConversationID == conversationID {
			items = append(items, e.value)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

// flashcard sets

func (s *MemoryStore) CreateFlashcardSet(set domain.FlashcardSet) (domain.FlashcardSet, error) {
	set.ID = newID()
	set.CreatedAt = now()
	set.UpdatedAt = set.CreatedAt
	s.sets.insert(set.ID, set)
	return set, nil
}

func (s *MemoryStore) GetFlashcardSet(id string) (domain.FlashcardSet, bool, error) {
	set, ok := s.sets.get(id)
	return set, ok, nil
}

func (s *MemoryStore) ListFlashcardSetsByUser(userID string) ([]domain.FlashcardSet, error) {
	items := make([]domain.FlashcardSet, 0)
	for _, e := range s.sets.snapshot() {
		if e.value.UserID == userID {
			items = append(items, e.value)
		}
	}
	sortByRecency(items, func(v domain.FlashcardSet) time.Time { return latest(v.UpdatedAt, v.CreatedAt) })
	return items, nil
}

func (s *MemoryStore) UpdateFlashcardSet(id string, patch FlashcardSetPatch) (domain.FlashcardSet, error) {
	set, ok := s.sets.get(id)
	if !ok {
		return domain.FlashcardSet{}, ErrNotFound
	}
	if patch.Title != nil {
		set.Title = *patch.Title
	}
	if patch.Description != nil {
		set.Description = *patch.Description
	}
	if patch.Subject != nil {
		set.Subject = *patch.Subject
	}
	set.UpdatedAt = now()
	s.sets.replace(id, set)
	return set, nil
}

func (s *MemoryStore) DeleteFlashcardSet(id string) error {
	s.sets.remove(id)
	for _, e := range s.cards.snapshot() {
		if e.value.SetID == id {
			s.cards.remove(e.value.ID)
		}
	}
	return nil
}

// flashcards

func (s *MemoryStore) CreateFlashcard(card domain.Flashcard) (domain.Flashcard, error) {
	card.ID = newID()
	card.CreatedAt = now()
	card.UpdatedAt = card.CreatedAt
	if card.Difficulty == 0 {
		card.Difficulty = 1
	}
	s.cards.insert(card.ID, card)
	return card, nil
}

func (s *MemoryStore) GetFlashcard(id string) (domain.Flashcard, bool, error) {
	card, ok := s.cards.get(id)
	return card, ok, nil
}

func (s *MemoryStore) ListFlashcardsBySet(setID string) ([]domain.Flashcard, error) {
	items := make([]domain.Flashcard, 0)
	for _, e := range s.cards.snapshot() {
		if e.value.SetID == setID {
			items = append(items, e.value)
		}
	}
	return items, nil
}

func (s *MemoryStore) UpdateFlashcard(id string, patch FlashcardPatch) (domain.Flashcard, error) {
	card, ok := s.cards.get(id)
	if !ok {
		return domain.Flashcard{}, ErrNotFound
	}
	if patch.Front != nil {
		card.Front = *patch.Front
	}
	if patch.Back != nil {
		card.Back = *patch.Back
	}
	if patch.Difficulty != nil {
		card.Difficulty = *patch.Difficulty
	}
	if patch.ReviewCount != nil {
		card.ReviewCount = *patch.ReviewCount
	}
	if patch.Mastery != nil {
		card.Mastery = *patch.Mastery
	}
	if patch.LastReviewed != nil {
		t := *patch.LastReviewed
		card.LastReviewed = &t
	}
	card.UpdatedAt = now()
	s.cards.replace(id, card)
	return card, nil
}

func (s *MemoryStore) DeleteFlashcard(id string) error {
	s.cards.remove(id)
	return nil
}

// notes

func (s *MemoryStore) CreateNote(n domain.Note) (domain.Note, error) {
	n.ID = newID()
	n.CreatedAt = now()
	n.UpdatedAt = n.CreatedAt
	s.notes.insert(n.ID, n)
	return n, nil
}

func (s *MemoryStore) GetNote(id string) (domain.Note, bool, error) {
	n, ok := s.notes.get(id)
	return n, ok, nil
}

func (s *MemoryStore) ListNotesByUser(userID string) ([]domain.Note, error) {
	items := make([]domain.Note, 0)
	for _, e := range s.notes.snapshot() {
		if e.value.UserID == userID {
			items = append(items, e.value)
		}
	}
	sortByRecency(items, func(v domain.Note) time.Time { return latest(v.UpdatedAt, v.CreatedAt) })
	return items, nil
}

func (s *MemoryStore) UpdateNote(id string, patch NotePatch) (domain.Note, error) {
	n, ok := s.notes.get(id)
	if !ok {
		return domain.Note{}, ErrNotFound
	}
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.Subject != nil {
		n.Subject = *patch.Subject
	}
	if patch.Tags != nil {
		n.Tags = append([]string(nil), (*patch.Tags)...)
	}
	n.UpdatedAt = now()
	s.notes.replace(id, n)
	return n, nil
}

func (s *MemoryStore) DeleteNote(id string) error {
	s.notes.remove(id)
	return nil
}

// quizzes

func (s *MemoryStore) CreateQuiz(q domain.Quiz) (domain.Quiz, error) {
	q.ID = newID()
	q.CreatedAt = now()
	q.UpdatedAt = q.CreatedAt
	s.quizzes.insert(q.ID, q)
	return q, nil
}

func (s *MemoryStore) GetQuiz(id string) (domain.Quiz, bool, error) {
	q, ok := s.quizzes.get(id)
	return q, ok, nil
}

func (s *MemoryStore) ListQuizzesByUser(userID string) ([]domain.Quiz, error) {
	items := make([]domain.Quiz, 0)
	for _, e := range s.quizzes.snapshot() {
		if e.value.UserID == userID {
			items = append(items, e.value)
		}
	}
	sortByRecency(items, func(v domain.Quiz) time.Time { return latest(v.UpdatedAt, v.CreatedAt) })
	return items, nil
}

func (s *MemoryStore) UpdateQuiz(id string, patch QuizPatch) (domain.Quiz, error) {
	q, ok := s.quizzes.get(id)
	if !ok {
		return domain.Quiz{}, ErrNotFound
	}
	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Subject != nil {
		q.Subject = *patch.Subject
	}
	if patch.Difficulty != nil {
		q.Difficulty = *patch.Difficulty
	}
	if patch.Questions != nil {
		q.Questions = append([]domain.Question(nil), (*patch.Questions)...)
	}
	q.UpdatedAt = now()
	s.quizzes.replace(id, q)
	return q, nil
}

func (s *MemoryStore) DeleteQuiz(id string) error {
	s.quizzes.remove(id)
	for _, e := range s.attempts.snapshot() {
		if e.value.QuizID == id {
			s.attempts.remove(e.value.ID)
		}
	}
	return nil
}

// quiz attempts

func (s *MemoryStore) CreateQuizAttempt(a domain.QuizAttempt) (domain.QuizAttempt, error) {
	a.ID = newID()
	if a.CompletedAt.IsZero() {
		a.CompletedAt = now()
	}
	s.attempts.insert(a.ID, a)
	return a, nil
}

func (s *MemoryStore) ListQuizAttemptsByQuiz(quizID string) ([]domain.QuizAttempt, error) {
	items := make([]domain.QuizAttempt, 0)
	for _, e := range s.attempts.snapshot() {
		if e.value.QuizID == quizID {
			items = append(items, e.value)
		}
	}
	return items, nil
}

// video generations

func (s *MemoryStore) CreateVideoGeneration(v domain.VideoGeneration) (domain.VideoGeneration, error) {
	v.ID = newID()
	v.CreatedAt = now()
	v.UpdatedAt = v.CreatedAt
	if v.Status == "" {
		v.Status = domain.VideoPending
	}
	s.videos.insert(v.ID, v)
	return v, nil
}

func (s *MemoryStore) GetVideoGeneration(id string) (domain.VideoGeneration, bool, error) {
	v, ok := s.videos.get(id)
	return v, ok, nil
}

func (s *MemoryStore) ListVideoGenerationsByUser(userID string) ([]domain.VideoGeneration, error) {
	items := make([]domain.VideoGeneration, 0)
	for _, e := range s.videos.snapshot() {
		if e.value.UserID == userID {
			items = append(items, e.value)
		}
	}
	sortByRecency(items, func(v domain.VideoGeneration) time.Time { return latest(v.UpdatedAt, v.CreatedAt) })
	return items, nil
}

func (s *MemoryStore) UpdateVideoGeneration(id string, patch VideoGenerationPatch) (domain.VideoGeneration, error) {
	v, ok := s.videos.get(id)
	if !ok {
		return domain.VideoGeneration{}, ErrNotFound
	}
	if patch.Status != nil {
		v.Status = *patch.Status
	}
	if patch.VideoURL != nil {
		v.VideoURL = *patch.VideoURL
	}
	if patch.ThumbnailURL != nil {
		v.ThumbnailURL = *patch.ThumbnailURL
	}
	if patch.CompletedAt != nil {
		t := *patch.CompletedAt
		v.CompletedAt = &t
	}
	v.UpdatedAt = now()
	s.videos.replace(id, v)
	return v, nil
}

// sortByRecency orders newest-first. The input arrives in insertion order
// and the sort is stable, so equal instants keep insertion order.
func sortByRecency[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).After(at(items[j])) })
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
