package domain

import "context"

// Generator defines the capability to produce free-text completions from a
// system prompt and a user prompt.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error)
	Version() string
}

// Completion carries the generated text together with the model identity and
// token accounting reported by the generation service.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}
