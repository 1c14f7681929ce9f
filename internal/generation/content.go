package generation

import (
	"context"
	"fmt"

	"github.com/youruser/therapydeck/internal/cards"
)

// TextGenerator returns a JSON reply for a prompt.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) ([]byte, error)
}

// GenerateContent asks text for a card game draft and resolves it. Only the
// provider call and a non-object reply fail; everything else degrades.
func GenerateContent(ctx context.Context, text TextGenerator, resolver *cards.Resolver, description string, cardTarget int) (cards.Content, error) {
	raw, err := text.GenerateJSON(ctx, BuildContentPrompt(description, cardTarget))
	if err != nil {
		return cards.Content{}, Classify(err)
	}
	draft, err := cards.ParseDraft(raw)
	if err != nil {
		return cards.Content{}, Classify(fmt.Errorf("parse draft: %w", err))
	}
	return resolver.PostProcess(draft), nil
}
