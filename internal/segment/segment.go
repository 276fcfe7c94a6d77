// Package segment splits raw policy text into bounded, overlapping chunks
// for per-section analysis.
package segment

import (
	"fmt"
	"strings"

	"github.com/policylens/policylens/internal/policy"
)

// Config controls segmentation behavior.
type Config struct {
	MaxChunkSize int // Maximum chunk size in characters.
	OverlapSize  int // Characters carried over between consecutive chunks.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize: 4000,
		OverlapSize:  200,
	}
}

// Split breaks content into ordered chunks. Paragraphs (blank-line
// delimited) are accumulated until adding the next one would exceed
// MaxChunkSize; the buffer is then emitted and the next buffer is seeded
// with the last OverlapSize characters for continuity. The final non-empty
// buffer is always emitted regardless of size. Whitespace-only input
// yields zero chunks.
func Split(content string, cfg Config) []policy.Chunk {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 4000
	}
	if cfg.OverlapSize < 0 {
		cfg.OverlapSize = 0
	}

	var chunks []policy.Chunk
	var current string
	position := 0

	emit := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		chunks = append(chunks, policy.Chunk{
			ID:       fmt.Sprintf("chunk_%d", position),
			Text:     text,
			Title:    InferTitle(text),
			Position: position,
			Tokens:   EstimateTokens(text),
		})
		position++
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		if len(current)+len(paragraph) > cfg.MaxChunkSize && current != "" {
			emit(current)

			overlap := current
			if len(current) > cfg.OverlapSize {
				overlap = current[len(current)-cfg.OverlapSize:]
			}
			current = overlap + "\n\n" + paragraph
			continue
		}
		if current != "" {
			current += "\n\n" + paragraph
		} else {
			current = paragraph
		}
	}

	if strings.TrimSpace(current) != "" {
		emit(current)
	}

	return chunks
}

// InferTitle scans the first 3 lines of a chunk and returns the first line
// under 100 characters that does not end in a period. Empty string means no
// title could be inferred.
func InferTitle(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && len(line) < 100 && !strings.HasSuffix(line, ".") {
			return line
		}
	}
	return ""
}

// EstimateTokens gives a rough token count from the word count. This is a
// display-only proxy, never used for truncation decisions.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}
