package domain

import "fmt"

// ChunkerVersion identifies the chunking algorithm so stored passages can be
// traced back to the window parameters that produced them.
type ChunkerVersion string

const (
	// ChunkerVersionFixedV1 is the fixed-size sliding window chunker.
	ChunkerVersionFixedV1 ChunkerVersion = "fixed-v1"

	// DefaultChunkSize is the window length in runes.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is how many runes consecutive windows share.
	DefaultChunkOverlap = 50
)

// Chunk is a single piece of a document, ordered by its 0-indexed position.
type Chunk struct {
	Index   int
	Content string
}

// Chunker splits document text into retrievable chunks.
type Chunker interface {
	Chunk(text string) ([]Chunk, error)
	Version() ChunkerVersion
}

type fixedWindowChunker struct {
	size    int
	overlap int
}

// NewChunker creates a fixed-size chunker with the given window size and
// overlap. Zero or negative values fall back to the defaults.
func NewChunker(size, overlap int) (Chunker, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		return nil, fmt.Errorf("overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return &fixedWindowChunker{size: size, overlap: overlap}, nil
}

func (c *fixedWindowChunker) Version() ChunkerVersion {
	return ChunkerVersionFixedV1
}

// Chunk slides a fixed window over the text, stepping size-overlap runes at a
// time. Indexing is rune-based so multi-byte text never splits mid-character.
func (c *fixedWindowChunker) Chunk(text string) ([]Chunk, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := c.size - c.overlap
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Content: string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
