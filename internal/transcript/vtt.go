// Package transcript normalizes uploaded transcript payloads. Admin uploads
// are usually plain text with inline HH:MM:SS marks, but WebVTT exports show
// up too; those are flattened into the same timestamped plain-text shape so
// the chunker and keyword engine see one format.
package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// IsVTT reports whether the payload looks like a WebVTT document.
func IsVTT(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(strings.Trim(content, "\"")), "WEBVTT")
}

// Normalize returns the transcript in timestamped plain-text form. WebVTT
// input is flattened to "HH:MM:SS cue text" lines; anything else passes
// through unchanged.
func Normalize(content string) (string, error) {
	if !IsVTT(content) {
		return content, nil
	}
	return flattenVTT(content)
}

func flattenVTT(content string) (string, error) {
	content = strings.Trim(content, "\"")
	if strings.Contains(content, `\n`) {
		content = strings.ReplaceAll(content, `\n`, "\n")
	}
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "WEBVTT")

	var lines []string
	for _, block := range strings.Split(content, "\n\n") {
		rows := strings.Split(strings.TrimSpace(block), "\n")
		if len(rows) < 2 {
			continue
		}

		// Cue identifiers are optional; the timing row is the one with "-->".
		timingRow := -1
		for i, row := range rows {
			if strings.Contains(row, "-->") {
				timingRow = i
				break
			}
		}
		if timingRow == -1 || timingRow == len(rows)-1 {
			continue
		}

		startRaw := strings.TrimSpace(strings.Split(rows[timingRow], "-->")[0])
		start, err := cueSeconds(startRaw)
		if err != nil {
			return "", fmt.Errorf("invalid cue timestamp %q: %w", startRaw, err)
		}

		text := strings.TrimSpace(strings.Join(rows[timingRow+1:], " "))
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", formatTimestamp(start), text))
	}

	if len(lines) == 0 {
		return "", fmt.Errorf("vtt document contained no cues")
	}
	return strings.Join(lines, "\n"), nil
}

// cueSeconds parses a VTT cue time (HH:MM:SS.mmm or MM:SS.mmm) into whole
// seconds, truncating the millisecond part.
func cueSeconds(ts string) (int, error) {
	base := ts
	if dot := strings.Index(ts, "."); dot != -1 {
		base = ts[:dot]
	}

	parts := strings.Split(base, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("expected HH:MM:SS or MM:SS")
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("non-numeric component %q", p)
		}
		total = total*60 + n
	}
	return total, nil
}

func formatTimestamp(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
