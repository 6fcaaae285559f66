package usecase

import (
	"fmt"
	"strings"

	"docqa-orchestrator/internal/domain"
)

// UnknownAnswer is the fixed response returned whenever no usable context
// exists. The system prompt pins the model to the same string so the
// empty-context contract holds on both paths.
const UnknownAnswer = "I don't know. The indexed documents do not contain enough information to answer this question."

// Prompt is the deterministic pair of messages sent to the generation service.
type Prompt struct {
	System string
	User   string
}

// PromptBuilder assembles the grounded-generation prompt. Building has zero
// side effects and performs no network calls; this is the only place the
// textual contract strings live.
type PromptBuilder interface {
	Build(passages []domain.RankedPassage, subQueries []string) (Prompt, error)
}

// GroundedPromptBuilder labels each passage with a stable ordinal and
// enumerates the sub-questions separately.
type GroundedPromptBuilder struct {
	additionalInstructions []string
}

// NewGroundedPromptBuilder creates a prompt builder with optional extra
// instruction lines appended to the system prompt.
func NewGroundedPromptBuilder(additionalInstructions ...string) PromptBuilder {
	return &GroundedPromptBuilder{additionalInstructions: additionalInstructions}
}

// Build renders the system and user messages for one generation call.
func (b *GroundedPromptBuilder) Build(passages []domain.RankedPassage, subQueries []string) (Prompt, error) {
	if len(passages) == 0 {
		return Prompt{}, fmt.Errorf("no passages to ground the answer in")
	}
	if len(subQueries) == 0 {
		return Prompt{}, fmt.Errorf("no questions to answer")
	}

	var sysSb strings.Builder
	sysSb.WriteString("You are an assistant that answers questions using ONLY the numbered passages supplied by the user.\n")
	sysSb.WriteString("Rules:\n")
	sysSb.WriteString("1. Never use knowledge that is not present in the passages.\n")
	sysSb.WriteString("2. Answer each question independently.\n")
	sysSb.WriteString("3. If a question cannot be answered from the passages, answer \"I don't know\" for that question.\n")
	sysSb.WriteString("4. If no passages are supplied at all, reply exactly: ")
	sysSb.WriteString(UnknownAnswer)
	sysSb.WriteString("\n")
	sysSb.WriteString("5. Do not mention passage numbers unless it clarifies the answer.\n")
	for _, inst := range b.additionalInstructions {
		sysSb.WriteString(inst)
		sysSb.WriteString("\n")
	}

	var userSb strings.Builder
	for i, rp := range passages {
		fmt.Fprintf(&userSb, "Passage %d:\n", i+1)
		userSb.WriteString(strings.TrimSpace(rp.Passage.Content))
		userSb.WriteString("\n\n")
	}
	userSb.WriteString("Answer the following questions, each part independently:\n")
	for i, sq := range subQueries {
		fmt.Fprintf(&userSb, "Question %d: %s\n", i+1, sq)
	}

	return Prompt{
		System: sysSb.String(),
		User:   userSb.String(),
	}, nil
}
