// Package timestamp turns transcript timestamps into deep-linked video URLs.
package timestamp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FallbackLabel is the link label used when no timestamp can be derived.
const FallbackLabel = "Watch video"

var (
	tsPattern = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)

	// First matching URL shape wins.
	idPatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtu\.be/([^?&\n#]+)`),
		regexp.MustCompile(`youtube\.com/watch\?v=([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
	}
)

// Extract returns the first HH:MM:SS occurrence in text.
func Extract(text string) (string, bool) {
	m := tsPattern.FindString(text)
	return m, m != ""
}

// ExtractAll returns every HH:MM:SS occurrence in text, in order.
func ExtractAll(text string) []string {
	return tsPattern.FindAllString(text, -1)
}

// Position is one timestamp occurrence and its byte offset in the text.
type Position struct {
	Value  string
	Offset int
}

// Positions returns every HH:MM:SS occurrence with its byte offset, in order.
func Positions(text string) []Position {
	idxs := tsPattern.FindAllStringIndex(text, -1)
	out := make([]Position, 0, len(idxs))
	for _, ix := range idxs {
		out = append(out, Position{Value: text[ix[0]:ix[1]], Offset: ix[0]})
	}
	return out
}

// ToSeconds converts HH:MM:SS or MM:SS to a seconds offset. Any other token
// count yields 0, which callers treat as "no usable timestamp".
func ToSeconds(ts string) int {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	switch len(parts) {
	case 3:
		return atoi(parts[0])*3600 + atoi(parts[1])*60 + atoi(parts[2])
	case 2:
		return atoi(parts[0])*60 + atoi(parts[1])
	default:
		return 0
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// VideoID extracts the video id from the supported YouTube URL shapes.
func VideoID(url string) (string, bool) {
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// DeepLink builds a URL that opens videoURL at the given timestamp. It falls
// back to the plain videoURL when the video id or a non-zero seconds offset
// cannot be derived.
func DeepLink(videoURL, ts string) string {
	id, ok := VideoID(videoURL)
	if !ok {
		return videoURL
	}
	seconds := ToSeconds(ts)
	if seconds == 0 {
		return videoURL
	}
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", id, seconds)
}

// LinkInfo derives a timestamp link label and URL for a chunk of transcript
// text. Without a usable timestamp it links to the start of the video.
func LinkInfo(text, videoURL string) (label, url string) {
	if ts, ok := Extract(text); ok && videoURL != "" {
		return ts, DeepLink(videoURL, ts)
	}
	if videoURL == "" {
		videoURL = "#"
	}
	return FallbackLabel, videoURL
}
