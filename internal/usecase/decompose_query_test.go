package usecase_test

import (
	"testing"

	"docqa-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestDecomposeQuery_EmptyInput(t *testing.T) {
	assert.Empty(t, usecase.DecomposeQuery(""))
	assert.Empty(t, usecase.DecomposeQuery("   \t\n"))
}

func TestDecomposeQuery_SingleQuestionPassesThrough(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain question", "What is a vector database?", "What is a vector database?"},
		{"trims whitespace", "  What is a vector database?  ", "What is a vector database?"},
		{"no question mark", "Explain vector databases", "Explain vector databases"},
		{"and inside a word survives", "What is sandboxing?", "What is sandboxing?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.DecomposeQuery(tt.query)
			assert.Equal(t, []string{tt.want}, got)
		})
	}
}

func TestDecomposeQuery_MultipleQuestionMarks(t *testing.T) {
	got := usecase.DecomposeQuery("What is RAG? How does it work? Why is it useful?")
	assert.Equal(t, []string{
		"What is RAG?",
		"How does it work?",
		"Why is it useful?",
	}, got)
}

func TestDecomposeQuery_MultipleQuestionMarksDropsEmptySegments(t *testing.T) {
	got := usecase.DecomposeQuery("First?? Second?")
	assert.Equal(t, []string{"First?", "Second?"}, got)
}

func TestDecomposeQuery_ConjunctionSplit(t *testing.T) {
	got := usecase.DecomposeQuery("What is X and why use it?")
	assert.Equal(t, []string{"What is X?", "Why use it?"}, got)
}

func TestDecomposeQuery_ConjunctionSplitCaseInsensitive(t *testing.T) {
	got := usecase.DecomposeQuery("What is LangChain AND what are its features and how to install it?")
	assert.Equal(t, []string{
		"What is LangChain?",
		"What are its features?",
		"How to install it?",
	}, got)
}

func TestDecomposeQuery_ConjunctionFragmentsGainQuestionMark(t *testing.T) {
	got := usecase.DecomposeQuery("explain vector databases and how do they store embeddings")
	assert.Equal(t, []string{
		"Explain vector databases?",
		"How do they store embeddings?",
	}, got)
}

func TestDecomposeQuery_LoneFragmentFallsThrough(t *testing.T) {
	// " and " at the edge leaves a single fragment after trimming, which must
	// fall through to the original query unchanged.
	got := usecase.DecomposeQuery("Tooling and ")
	assert.Equal(t, []string{"Tooling and"}, got)
}
