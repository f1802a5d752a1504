package server

import (
	"net/http"
	"testing"

	"studyhub/pkg/domain"
)

func (e *testEnv) createConversation(t *testing.T, title string) domain.Conversation {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/conversations", e.token, map[string]string{
		"title": title, "model": "gpt-5",
	})
	if status != http.StatusOK {
		t.Fatalf("create conversation status = %d body %s", status, body)
	}
	return decodeAs[domain.Conversation](t, body)
}

func TestConversationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	conv := env.createConversation(t, "Biology questions")

	status, body := env.do(t, http.MethodGet, conversationPath(conv.ID), env.token, nil)
	if status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	if got := decodeAs[domain.Conversation](t, body); got.Title != "Biology questions" {
		t.Fatalf("title = %q", got.Title)
	}

	status, body = env.do(t, http.MethodPut, conversationPath(conv.ID), env.token, map[string]string{
		"title": "Renamed",
	})
	if status != http.StatusOK {
		t.Fatalf("put status = %d body %s", status, body)
	}
	updated := decodeAs[domain.Conversation](t, body)
	if updated.Title != "Renamed" || updated.ID != conv.ID {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.UpdatedAt.After(conv.UpdatedAt) {
		t.Fatal("updatedAt should advance on update")
	}

	status, body = env.do(t, http.MethodDelete, conversationPath(conv.ID), env.token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	if got := decodeAs[map[string]string](t, body)["status"]; got != "deleted" {
		t.Fatalf("delete body = %q", got)
	}

	// idempotent: deleting again still confirms
	status, body = env.do(t, http.MethodDelete, conversationPath(conv.ID), env.token, nil)
	if status != http.StatusOK || decodeAs[map[string]string](t, body)["status"] != "deleted" {
		t.Fatalf("repeat delete: status = %d body %s", status, body)
	}

	if status, _ = env.do(t, http.MethodGet, conversationPath(conv.ID), env.token, nil); status != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", status)
	}
}

func TestPutAbsentTargetIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{
		"/api/conversations/no-such-id",
		"/api/notes/no-such-id",
		"/api/quizzes/no-such-id",
		"/api/flashcard-sets/no-such-id",
		"/api/flashcards/no-such-id",
	} {
		status, _ := env.do(t, http.MethodPut, path, env.token, map[string]string{"title": "x"})
		if status != http.StatusBadRequest {
			t.Errorf("PUT %s: status = %d, want 400", path, status)
		}
	}
}

func TestOwnershipIsEnforced(t *testing.T) {
	env := newTestEnv(t)
	conv := env.createConversation(t, "Private")

	_, otherToken := env.signup(t, "mallory", "password2")

	if status, _ := env.do(t, http.MethodGet, conversationPath(conv.ID), otherToken, nil); status != http.StatusNotFound {
		t.Fatalf("foreign get status = %d, want 404", status)
	}
	if status, _ := env.do(t, http.MethodPut, conversationPath(conv.ID), otherToken, map[string]string{"title": "stolen"}); status != http.StatusBadRequest {
		t.Fatalf("foreign put status = %d, want 400", status)
	}
	// foreign delete confirms but must not remove the record
	if status, _ := env.do(t, http.MethodDelete, conversationPath(conv.ID), otherToken, nil); status != http.StatusOK {
		t.Fatalf("foreign delete status = %d", status)
	}
	if status, _ := env.do(t, http.MethodGet, conversationPath(conv.ID), env.token, nil); status != http.StatusOK {
		t.Fatal("record should survive a foreign delete")
	}

	// listing is owner-scoped
	status, body := env.do(t, http.MethodGet, "/api/conversations", otherToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if items := decodeAs[[]domain.Conversation](t, body); len(items) != 0 {
		t.Fatalf("foreign listing returned %d items", len(items))
	}
}

func TestMessagesAppendWithoutBumpingConversation(t *testing.T) {
	env := newTestEnv(t)
	conv := env.createConversation(t, "Chat")

	status, body := env.do(t, http.MethodPost, conversationPath(conv.ID)+"/messages", env.token, map[string]any{
		"role": "user", "content": "hello",
	})
	if status != http.StatusOK {
		t.Fatalf("post message status = %d body %s", status, body)
	}
	msg := decodeAs[domain.Message](t, body)
	if msg.ConversationID != conv.ID || msg.Role != domain.RoleUser {
		t.Fatalf("unexpected message %+v", msg)
	}

	status, body = env.do(t, http.MethodGet, conversationPath(conv.ID), env.token, nil)
	if status != http.StatusOK {
		t.Fatalf("get conversation status = %d", status)
	}
	if got := decodeAs[domain.Conversation](t, body); !got.UpdatedAt.Equal(conv.UpdatedAt) {
		t.Fatal("message append must not bump the conversation updatedAt")
	}

	status, body = env.do(t, http.MethodGet, conversationPath(conv.ID)+"/messages", env.token, nil)
	if status != http.StatusOK {
		t.Fatalf("list messages status = %d", status)
	}
	if msgs := decodeAs[[]domain.Message](t, body); len(msgs) != 1 {
		t.Fatalf("message count = %d", len(msgs))
	}

	if status, _ = env.do(t, http.MethodPost, conversationPath(conv.ID)+"/messages", env.token, map[string]any{
		"role": "wizard", "content": "hello",
	}); status != http.StatusBadRequest {
		t.Fatalf("invalid role status = %d", status)
	}
}

func TestFlashcardSetAndCards(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/flashcard-sets", env.token, map[string]string{
		"title": "Spanish vocab", "subject": "Spanish",
	})
	if status != http.StatusOK {
		t.Fatalf("create set status = %d", status)
	}
	set := decodeAs[domain.FlashcardSet](t, body)

	status, body = env.do(t, http.MethodPost, "/api/flashcard-sets/"+set.ID+"/cards", env.token, map[string]any{
		"front": "perro", "back": "dog", "difficulty": 2,
	})
	if status != http.StatusOK {
		t.Fatalf("create card status = %d body %s", status, body)
	}
	card := decodeAs[domain.Flashcard](t, body)
	if card.SetID != set.ID || card.Difficulty != 2 {
		t.Fatalf("unexpected card %+v", card)
	}

	// difficulty outside 1..3 is clamped
	status, body = env.do(t, http.MethodPut, "/api/flashcards/"+card.ID, env.token, map[string]any{
		"difficulty": 9, "mastery": 150,
	})
	if status != http.StatusOK {
		t.Fatalf("update card status = %d body %s", status, body)
	}
	updated := decodeAs[domain.Flashcard](t, body)
	if updated.Difficulty != 3 || updated.Mastery != 100 {
		t.Fatalf("clamping failed: %+v", updated)
	}

	// deleting the set cascades to its cards
	if status, _ = env.do(t, http.MethodDelete, "/api/flashcard-sets/"+set.ID, env.token, nil); status != http.StatusOK {
		t.Fatalf("delete set status = %d", status)
	}
	if status, _ = env.do(t, http.MethodGet, "/api/flashcards/"+card.ID, env.token, nil); status != http.StatusNotFound {
		t.Fatalf("card should be gone after set delete, status = %d", status)
	}
}

func TestNoteLifecycle(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/notes", env.token, map[string]any{
		"title": "Mitosis", "content": "cells divide", "tags": []string{"bio"},
	})
	if status != http.StatusOK {
		t.Fatalf("create note status = %d", status)
	}
	note := decodeAs[domain.Note](t, body)
	if len(note.Tags) != 1 || note.Tags[0] != "bio" {
		t.Fatalf("tags = %v", note.Tags)
	}

	status, body = env.do(t, http.MethodPut, "/api/notes/"+note.ID, env.token, map[string]any{
		"content": "cells divide in phases", "tags": []string{"bio", "exam"},
	})
	if status != http.StatusOK {
		t.Fatalf("update note status = %d body %s", status, body)
	}
	updated := decodeAs[domain.Note](t, body)
	if updated.Content != "cells divide in phases" || len(updated.Tags) != 2 {
		t.Fatalf("unexpected note %+v", updated)
	}
	if updated.Title != "Mitosis" {
		t.Fatal("omitted fields must be preserved")
	}
}
