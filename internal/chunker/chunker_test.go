package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmpty(t *testing.T) {
	res := Split("", 1500, 200)
	assert.Empty(t, res.Chunks)
	assert.False(t, res.Truncated)
}

func TestSplitSingleWindow(t *testing.T) {
	res := Split("short text", 1500, 200)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, "short text", res.Chunks[0].Text)
}

func TestSplitOverlap(t *testing.T) {
	text := "abcdefghij" // 10 chars
	res := Split(text, 6, 2)

	require.Len(t, res.Chunks, 2)
	assert.Equal(t, "abcdef", res.Chunks[0].Text)
	assert.Equal(t, "efghij", res.Chunks[1].Text)
}

func TestSplitCoversWholeInput(t *testing.T) {
	text := strings.Repeat("0123456789", 50)
	res := Split(text, 120, 30)

	// Each chunk's non-overlapping prefix, concatenated in order and followed
	// by the final chunk, must reconstruct the whole input.
	advance := 120 - 30
	var rebuilt strings.Builder
	for i, c := range res.Chunks {
		if i == len(res.Chunks)-1 {
			rebuilt.WriteString(c.Text)
			break
		}
		rebuilt.WriteString(c.Text[:advance])
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplitDropsWhitespaceWindows(t *testing.T) {
	text := "abc" + strings.Repeat(" ", 20) + "xyz"
	res := Split(text, 5, 0)
	for _, c := range res.Chunks {
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
	}
}

func TestSplitPathologicalOverlapTerminates(t *testing.T) {
	text := strings.Repeat("x", 400)

	// overlap == size-1 stalls the normal advance; the forced jump must keep
	// it moving and the call must still terminate.
	res := Split(text, 10, 9)
	assert.NotEmpty(t, res.Chunks)

	// overlap > size would regress without the jump.
	res = Split(text, 10, 50)
	assert.NotEmpty(t, res.Chunks)
}

func TestSplitExpectedChunkCount(t *testing.T) {
	// 30/5 over a ~90-char transcript must yield at least 2 chunks.
	transcript := "00:00:05 intro text. 00:01:10 detail about order blocks."
	res := Split(transcript, 30, 5)
	assert.GreaterOrEqual(t, len(res.Chunks), 2)
}
