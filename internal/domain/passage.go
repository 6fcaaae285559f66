package domain

// Passage is a stored unit of source text with provenance. Immutable once
// retrieved; (Source, ChunkIndex) identifies it within the corpus.
type Passage struct {
	Content    string
	Source     string
	ChunkIndex int
	Metadata   map[string]string
}

// Key returns the dedup identity for the passage.
func (p Passage) Key() PassageKey {
	return PassageKey{Source: p.Source, ChunkIndex: p.ChunkIndex}
}

// PassageKey is the (source, chunk_index) pair used for deduplication and
// citations.
type PassageKey struct {
	Source     string
	ChunkIndex int
}

// RankedPassage pairs a passage with its similarity-search distance.
// Smaller distance means more relevant. Ordering over ranked passages is
// ascending distance with ties broken by encounter order.
type RankedPassage struct {
	Passage  Passage
	Distance float64
}

// Citation points a reader back to the passage an answer was grounded in.
type Citation struct {
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
}

// Confidence is the coarse three-level reliability label derived from the
// final retrieval distances.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)
