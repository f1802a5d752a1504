package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"studyhub/pkg/domain"
)

const jsonOnlyFraming = "Respond with JSON only. No prose, no code fences, no explanation."

// Generator builds fixed natural-language prompts for the study tools and
// parses the provider's JSON replies. Malformed or empty replies degrade to
// an empty result instead of failing the caller.
type Generator struct {
	router *Router
	model  string
}

// NewGenerator binds a router and the model used for generation calls.
func NewGenerator(router *Router, model string) *Generator {
	return &Generator{router: router, model: strings.TrimSpace(model)}
}

// CardDraft is one generated flashcard before it is attached to a set.
type CardDraft struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Flashcards generates up to count cards from study content.
func (g *Generator) Flashcards(ctx context.Context, content, subject string, count int) ([]CardDraft, error) {
	if count <= 0 {
		count = 10
	}
	userPrompt := fmt.Sprintf(
		"Generate %d flashcards from the following %s study material. "+
			"Return a JSON array of objects with \"front\" and \"back\" string fields.\n\n%s",
		count, orGeneral(subject), content,
	)
	reply, err := g.router.Complete(ctx, g.model, jsonOnlyFraming, userPrompt)
	if err != nil {
		return nil, err
	}
	var cards []CardDraft
	if !decodeJSONReply(reply, &cards) {
		slog.Warn("flashcard generation reply unparsable, returning empty set", "model", g.model)
		return []CardDraft{}, nil
	}
	return cards, nil
}

// QuizQuestions generates a question list for a new quiz.
func (g *Generator) QuizQuestions(ctx context.Context, subject, difficulty string, questionCount int, questionTypes []string) ([]domain.Question, error) {
	if questionCount <= 0 {
		questionCount = 5
	}
	types := strings.Join(questionTypes, ", ")
	if types == "" {
		types = "multiple_choice"
	}
	userPrompt := fmt.Sprintf(
		"Generate a %s quiz about %s with %d questions of types: %s. "+
			"Return a JSON array of objects with fields \"type\", \"question\", "+
			"\"options\" (array of strings), \"correctAnswer\" (index into options), "+
			"and \"explanation\".",
		orGeneral(difficulty), orGeneral(subject), questionCount, types,
	)
	reply, err := g.router.Complete(ctx, g.model, jsonOnlyFraming, userPrompt)
	if err != nil {
		return nil, err
	}
	var questions []domain.Question
	if !decodeJSONReply(reply, &questions) {
		slog.Warn("quiz generation reply unparsable, returning empty question list", "model", g.model)
		return []domain.Question{}, nil
	}
	return questions, nil
}

// EnhanceNote asks the provider to improve a note body. On a malformed or
// empty reply the original content comes back unchanged.
func (g *Generator) EnhanceNote(ctx context.Context, content string) (string, error) {
	userPrompt := fmt.Sprintf(
		"Improve the following study note: fix structure, expand abbreviations, "+
			"and clarify without changing meaning. "+
			"Return a JSON object with a single \"content\" string field.\n\n%s",
		content,
	)
	reply, err := g.router.Complete(ctx, g.model, jsonOnlyFraming, userPrompt)
	if err != nil {
		return "", err
	}
	var enhanced struct {
		Content string `json:"content"`
	}
	if !decodeJSONReply(reply, &enhanced) || strings.TrimSpace(enhanced.Content) == "" {
		slog.Warn("note enhancement reply unparsable, keeping original content", "model", g.model)
		return content, nil
	}
	return enhanced.Content, nil
}

// decodeJSONReply parses a provider reply as JSON, tolerating the code
// fences models wrap JSON in despite the framing instruction.
func decodeJSONReply(reply string, out any) bool {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```json")
		reply = strings.TrimPrefix(reply, "```")
		reply = strings.TrimSuffix(strings.TrimSpace(reply), "```")
		reply = strings.TrimSpace(reply)
	}
	if reply == "" {
		return false
	}
	return json.Unmarshal([]byte(reply), out) == nil
}

func orGeneral(s string) string {
	if strings.TrimSpace(s) == "" {
		return "general"
	}
	return s
}
