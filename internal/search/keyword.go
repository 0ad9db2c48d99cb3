// Package search re-ranks full-text keyword matches into timestamped
// best-snippet results. The store's full-text index does the candidate
// filtering and relevance ordering; this package localizes where in each
// transcript the match actually sits.
package search

import (
	"strings"

	"github.com/sirpickle/index-server/internal/models"
	"github.com/sirpickle/index-server/internal/timestamp"
)

const (
	windowSize     = 200 // chars scanned per candidate window
	snippetContext = 50  // leading context kept before the match
	snippetTotal   = 250 // target snippet length
	minTermLength  = 3   // shorter terms are stopword-like noise
)

// Engine localizes snippets and filters keyword results.
type Engine struct {
	Channel string // channel name stamped on every result
}

// Terms splits a keyword into lowercased query terms, dropping stopword-like
// short tokens.
func Terms(keyword string) []string {
	var terms []string
	for _, tok := range strings.Fields(strings.ToLower(keyword)) {
		if len(tok) >= minTermLength {
			terms = append(terms, tok)
		}
	}
	return terms
}

// matchPosition finds where in text the keyword best matches. An exact
// case-insensitive phrase match wins outright; otherwise the fixed-size
// window containing the most distinct query terms is chosen, earliest
// position breaking ties; as a last resort any single term's first
// occurrence is used.
func matchPosition(text, keyword string, terms []string) (int, bool) {
	textLower := strings.ToLower(text)

	if idx := strings.Index(textLower, strings.ToLower(keyword)); idx != -1 {
		return idx, true
	}

	bestPos := -1
	bestScore := 0
	for i := 0; i < len(textLower)-snippetContext; i++ {
		end := i + windowSize
		if end > len(textLower) {
			end = len(textLower)
		}
		window := textLower[i:end]

		score := 0
		for _, term := range terms {
			if strings.Contains(window, term) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestPos = i
		}
	}
	if bestScore > 0 {
		return bestPos, true
	}

	for _, term := range terms {
		if idx := strings.Index(textLower, term); idx != -1 {
			return idx, true
		}
	}

	return -1, false
}

// snippetAt cuts a snippet of about snippetTotal characters around pos, with
// snippetContext characters of leading context and boundary ellipses. The
// returned bounds are the cut positions in the original text.
func snippetAt(text string, pos int) (snippet string, start, end int) {
	start = pos - snippetContext
	if start < 0 {
		start = 0
	}
	end = pos + snippetTotal - snippetContext
	if end > len(text) {
		end = len(text)
	}

	snippet = text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return snippet, start, end
}

// leadingSnippet is the fallback snippet: the first snippetTotal characters
// of the transcript.
func leadingSnippet(text string) string {
	if len(text) <= snippetTotal {
		return text
	}
	return text[:snippetTotal] + "..."
}

// resolveTimestamp picks the timestamp link for a matched snippet. Within
// the snippet window the nearest timestamp preceding the match wins, so a
// match deep in the window links to its own section rather than an earlier
// one that happens to open the snippet; failing that, any timestamp inside
// the window, then the nearest one preceding the match anywhere in the
// transcript, then the start-of-video fallback.
func resolveTimestamp(transcript string, snipStart, snipEnd, pos int, videoURL string) (label, url string) {
	var inWindow, beforeMatch []timestamp.Position
	for _, p := range timestamp.Positions(transcript) {
		if p.Offset >= snipStart && p.Offset < snipEnd {
			inWindow = append(inWindow, p)
		}
		if p.Offset < pos {
			beforeMatch = append(beforeMatch, p)
		}
	}

	for i := len(inWindow) - 1; i >= 0; i-- {
		if inWindow[i].Offset <= pos {
			return inWindow[i].Value, timestamp.DeepLink(videoURL, inWindow[i].Value)
		}
	}
	if len(inWindow) > 0 {
		return inWindow[0].Value, timestamp.DeepLink(videoURL, inWindow[0].Value)
	}
	if len(beforeMatch) > 0 {
		ts := beforeMatch[len(beforeMatch)-1].Value
		return ts, timestamp.DeepLink(videoURL, ts)
	}
	return timestamp.LinkInfo("", videoURL)
}

// Run maps the ranked full-text candidates to snippet-localized results and
// applies the post-hoc relevance filter. Candidate order is preserved; only
// removals happen here. The filter defends against the full-text index
// matching stemmed or fuzzy variants that share no literal term with the
// query.
func (e *Engine) Run(keyword string, videos []models.Video) []models.KeywordResult {
	terms := Terms(keyword)

	results := make([]models.KeywordResult, 0, len(videos))
	for _, video := range videos {
		var snippet string
		label, url := timestamp.FallbackLabel, video.VideoURL

		pos, matched := matchPosition(video.Transcript, keyword, terms)
		switch {
		case matched:
			var start, end int
			snippet, start, end = snippetAt(video.Transcript, pos)
			label, url = resolveTimestamp(video.Transcript, start, end, pos, video.VideoURL)
		default:
			// Title-only matches, and index matches with no literal term at
			// all, both fall back to the opening of the transcript. The
			// latter get dropped by the relevance filter below.
			snippet = leadingSnippet(video.Transcript)
		}

		r := models.KeywordResult{
			VideoTitle:    video.Title,
			TimestampLink: label,
			TimestampURL:  url,
			Snippet:       snippet,
			PublishedDate: video.PublicationDate,
			Tags:          video.Tags,
			Channel:       e.Channel,
			Category:      video.Category,
			VideoURL:      video.VideoURL,
		}

		if e.relevant(r, terms) {
			results = append(results, r)
		}
	}

	return results
}

// relevant requires at least one literal query term in the title or snippet.
func (e *Engine) relevant(r models.KeywordResult, terms []string) bool {
	title := strings.ToLower(r.VideoTitle)
	snippet := strings.ToLower(r.Snippet)
	for _, term := range terms {
		if strings.Contains(title, term) || strings.Contains(snippet, term) {
			return true
		}
	}
	return false
}
