package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirpickle/index-server/internal/models"
)

func video(title, transcript string) models.Video {
	return models.Video{
		Title:      title,
		Transcript: transcript,
		VideoURL:   "https://youtu.be/abc123",
		Category:   "education",
		Tags:       []string{"trading"},
	}
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"order", "blocks"}, Terms("Order Blocks"))
	assert.Equal(t, []string{"what", "order", "block"}, Terms("what is an order block"))
	assert.Nil(t, Terms("a an is"))
}

func TestExactPhraseTakesPrecedence(t *testing.T) {
	// Scattered single terms appear early, the exact phrase appears late; the
	// snippet must be anchored at the phrase.
	transcript := "order talk here, blocks mentioned there. " +
		strings.Repeat("filler text ", 30) +
		"now the full order blocks concept is explained in depth"

	e := &Engine{Channel: "Test"}
	results := e.Run("order blocks", []models.Video{video("Lesson", transcript)})

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Snippet, "full order blocks concept")
}

func TestWindowScoringFindsDensestRegion(t *testing.T) {
	transcript := "market mentioned alone. " +
		strings.Repeat("padding words go here ", 30) +
		"market structure and liquidity together in one place " +
		strings.Repeat("more padding ", 30)

	e := &Engine{Channel: "Test"}
	results := e.Run("market structure liquidity", []models.Video{video("Lesson", transcript)})

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Snippet, "structure and liquidity")
}

func TestTitleMatchFallsBackToTranscriptStart(t *testing.T) {
	transcript := "nothing relevant in the body of this transcript at all, just chatter"

	e := &Engine{Channel: "Test"}
	results := e.Run("chatter-free breakouts", []models.Video{video("Breakouts Masterclass", transcript)})

	require.Len(t, results, 1)
	assert.True(t, strings.HasPrefix(results[0].Snippet, "nothing relevant"))
}

func TestIrrelevantResultsFiltered(t *testing.T) {
	// The full-text index can surface fuzzy matches sharing no literal term
	// with the query; those must be dropped.
	e := &Engine{Channel: "Test"}
	results := e.Run("candlestick", []models.Video{video("Unrelated", "totally different content here")})
	assert.Empty(t, results)
}

func TestSnippetEllipses(t *testing.T) {
	transcript := strings.Repeat("x", 300) + " target phrase here " + strings.Repeat("y", 300)

	e := &Engine{Channel: "Test"}
	results := e.Run("target phrase", []models.Video{video("Lesson", transcript)})

	require.Len(t, results, 1)
	assert.True(t, strings.HasPrefix(results[0].Snippet, "..."))
	assert.True(t, strings.HasSuffix(results[0].Snippet, "..."))
}

func TestTimestampFromSnippet(t *testing.T) {
	transcript := "00:00:05 intro text. 00:01:10 detail about order blocks."

	e := &Engine{Channel: "Test"}
	results := e.Run("order blocks", []models.Video{video("Lesson", transcript)})

	require.Len(t, results, 1)
	// The snippet window reaches back 50 chars, so the nearest preceding
	// timestamp 00:01:10 is inside it.
	assert.Equal(t, "00:01:10", results[0].TimestampLink)
	assert.Contains(t, results[0].TimestampURL, "t=70s")
}

func TestNearestPrecedingTimestamp(t *testing.T) {
	transcript := "00:00:05 opening remarks " + strings.Repeat("filler ", 40) +
		"00:02:30 middle section " + strings.Repeat("filler ", 40) +
		"the breakout strategy appears here"

	e := &Engine{Channel: "Test"}
	results := e.Run("breakout strategy", []models.Video{video("Lesson", transcript)})

	require.Len(t, results, 1)
	assert.Equal(t, "00:02:30", results[0].TimestampLink)
}

func TestNoTimestampFallsBackToWatchVideo(t *testing.T) {
	e := &Engine{Channel: "Test"}
	results := e.Run("order blocks", []models.Video{video("Lesson", "plain talk about order blocks with no timing marks")})

	require.Len(t, results, 1)
	assert.Equal(t, "Watch video", results[0].TimestampLink)
	assert.Equal(t, "https://youtu.be/abc123", results[0].TimestampURL)
}

func TestOrderPreserved(t *testing.T) {
	videos := []models.Video{
		video("First ranked", "order blocks discussed first"),
		video("Second ranked", "order blocks discussed second"),
	}

	e := &Engine{Channel: "Test"}
	results := e.Run("order blocks", videos)

	require.Len(t, results, 2)
	assert.Equal(t, "First ranked", results[0].VideoTitle)
	assert.Equal(t, "Second ranked", results[1].VideoTitle)
}
