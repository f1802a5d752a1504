package ai

import (
	"context"
	"strings"
	"testing"
)

// scriptedGenerator returns a fixed reply for every call.
type scriptedGenerator struct {
	reply string
	err   error

	lastModel      string
	lastSystem     string
	lastUserPrompt string
}

func (s *scriptedGenerator) GenerateText(_ context.Context, model, systemPrompt, userPrompt string) (string, error) {
	s.lastModel = model
	s.lastSystem = systemPrompt
	s.lastUserPrompt = userPrompt
	return s.reply, s.err
}

func newTestGenerator(reply string) (*Generator, *scriptedGenerator) {
	scripted := &scriptedGenerator{reply: reply}
	router := NewRouter(NewRegistry(), scripted, nil)
	return NewGenerator(router, "gpt-4o-mini"), scripted
}

func TestFlashcardsParsesReply(t *testing.T) {
	g, scripted := newTestGenerator(`[{"front":"CPU","back":"Central Processing Unit"},{"front":"RAM","back":"Random Access Memory"}]`)
	cards, err := g.Flashcards(context.Background(), "computer hardware basics", "computing", 2)
	if err != nil {
		t.Fatalf("flashcards: %v", err)
	}
	if len(cards) != 2 || cards[0].Front != "CPU" || cards[1].Back != "Random Access Memory" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
	if !strings.Contains(scripted.lastUserPrompt, "computer hardware basics") {
		t.Fatal("content missing from prompt")
	}
	if !strings.Contains(scripted.lastSystem, "JSON only") {
		t.Fatal("missing JSON-only framing")
	}
}

func TestFlashcardsToleratesCodeFences(t *testing.T) {
	g, _ := newTestGenerator("```json\n[{\"front\":\"a\",\"back\":\"b\"}]\n```")
	cards, err := g.Flashcards(context.Background(), "x", "", 1)
	if err != nil {
		t.Fatalf("flashcards: %v", err)
	}
	if len(cards) != 1 || cards[0].Front != "a" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}

func TestFlashcardsMalformedReplyDegradesToEmpty(t *testing.T) {
	for _, reply := range []string{"", "I cannot do that", "{not json"} {
		g, _ := newTestGenerator(reply)
		cards, err := g.Flashcards(context.Background(), "x", "", 3)
		if err != nil {
			t.Fatalf("reply %q: %v", reply, err)
		}
		if len(cards) != 0 {
			t.Fatalf("reply %q: want empty, got %+v", reply, cards)
		}
	}
}

func TestQuizQuestionsParsesReply(t *testing.T) {
	g, scripted := newTestGenerator(`[{"type":"multiple_choice","question":"2+2?","options":["3","4"],"correctAnswer":1,"explanation":"basic sum"}]`)
	questions, err := g.QuizQuestions(context.Background(), "math", "easy", 1, []string{"multiple_choice"})
	if err != nil {
		t.Fatalf("quiz questions: %v", err)
	}
	if len(questions) != 1 || questions[0].Question != "2+2?" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
	if !strings.Contains(scripted.lastUserPrompt, "math") || !strings.Contains(scripted.lastUserPrompt, "easy") {
		t.Fatal("subject or difficulty missing from prompt")
	}
}

func TestQuizQuestionsMalformedReplyDegradesToEmpty(t *testing.T) {
	g, _ := newTestGenerator("sorry, no")
	questions, err := g.QuizQuestions(context.Background(), "math", "easy", 3, nil)
	if err != nil {
		t.Fatalf("quiz questions: %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("want empty, got %+v", questions)
	}
}

func TestEnhanceNoteParsesReply(t *testing.T) {
	g, _ := newTestGenerator(`{"content":"A clearer version of the note."}`)
	enhanced, err := g.EnhanceNote(context.Background(), "orig note")
	if err != nil {
		t.Fatalf("enhance: %v", err)
	}
	if enhanced != "A clearer version of the note." {
		t.Fatalf("unexpected content: %q", enhanced)
	}
}

func TestEnhanceNoteMalformedReplyKeepsOriginal(t *testing.T) {
	for _, reply := range []string{"", "nope", `{"content":""}`} {
		g, _ := newTestGenerator(reply)
		enhanced, err := g.EnhanceNote(context.Background(), "orig note")
		if err != nil {
			t.Fatalf("reply %q: %v", reply, err)
		}
		if enhanced != "orig note" {
			t.Fatalf("reply %q: want original back, got %q", reply, enhanced)
		}
	}
}
