package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_EmptyText(t *testing.T) {
	c, err := NewChunker(100, 10)
	require.NoError(t, err)

	chunks, err := c.Chunk("")
	assert.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunker_SingleChunkWhenShort(t *testing.T) {
	c, err := NewChunker(100, 10)
	require.NoError(t, err)

	chunks, err := c.Chunk("short text")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "short text", chunks[0].Content)
}

func TestChunker_WindowsOverlap(t *testing.T) {
	c, err := NewChunker(10, 3)
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks, err := c.Chunk(text)
	require.NoError(t, err)

	// step = 7: [0:10], [7:17], [14:24], [21:26]
	require.Len(t, chunks, 4)
	assert.Equal(t, "abcdefghij", chunks[0].Content)
	assert.Equal(t, "hijklmnopq", chunks[1].Content)
	assert.Equal(t, "opqrstuvwx", chunks[2].Content)
	assert.Equal(t, "vwxyz", chunks[3].Content)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
}

func TestChunker_RuneSafety(t *testing.T) {
	c, err := NewChunker(4, 1)
	require.NoError(t, err)

	text := strings.Repeat("あいうえお", 3)
	chunks, err := c.Chunk(text)
	require.NoError(t, err)

	for _, chunk := range chunks {
		assert.True(t, len([]rune(chunk.Content)) <= 4)
		assert.NotContains(t, chunk.Content, "�")
	}
}

func TestChunker_RejectsOverlapNotSmallerThanSize(t *testing.T) {
	_, err := NewChunker(10, 10)
	assert.Error(t, err)
}

func TestChunker_DefaultsApplied(t *testing.T) {
	c, err := NewChunker(0, -1)
	require.NoError(t, err)
	assert.Equal(t, ChunkerVersionFixedV1, c.Version())

	text := strings.Repeat("x", DefaultChunkSize+100)
	chunks, err := c.Chunk(text)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0].Content, DefaultChunkSize)
}
