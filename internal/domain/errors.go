package domain

import "fmt"

// EmbeddingError wraps a failure of the embedding service.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding service: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError wraps a failure of the generation service.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation service: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PassageStoreError wraps a transport or storage failure of the passage store.
type PassageStoreError struct {
	Err error
}

func (e *PassageStoreError) Error() string {
	return fmt.Sprintf("passage store: %v", e.Err)
}

func (e *PassageStoreError) Unwrap() error { return e.Err }
