// Package chunker splits transcript text into overlapping fixed-size windows,
// the unit of embedding and retrieval.
package chunker

import "strings"

// DefaultSize is the default number of characters per chunk.
const DefaultSize = 1500

// DefaultOverlap is the default number of overlapping characters between
// consecutive chunks.
const DefaultOverlap = 200

// Chunk is one window of transcript text.
type Chunk struct {
	Text string
}

// Result carries the chunks plus a diagnostic flag set when the window
// advance stalled and chunking had to stop early.
type Result struct {
	Chunks    []Chunk
	Truncated bool
}

// Split cuts text into windows of at most size characters, each overlapping
// the previous by overlap characters. Whitespace-only windows are dropped.
// Split is pure and deterministic; an empty input yields no chunks.
//
// When overlap is close enough to size that the normal advance would stall or
// regress, the start jumps to end - overlap/2 to force progress; if even that
// does not advance, chunking stops and Truncated is set rather than looping.
func Split(text string, size, overlap int) Result {
	var res Result
	if text == "" || size <= 0 {
		return res
	}
	if overlap < 0 {
		overlap = 0
	}

	start := 0
	for start < len(text) {
		end := start + size
		if end > len(text) {
			end = len(text)
		}

		window := text[start:end]
		if strings.TrimSpace(window) != "" {
			res.Chunks = append(res.Chunks, Chunk{Text: window})
		}

		if end == len(text) {
			break
		}

		next := start + size - overlap
		if next <= start {
			next = end - overlap/2
		}
		if next <= start {
			res.Truncated = true
			break
		}
		start = next
	}

	return res
}
